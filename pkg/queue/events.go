package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishFileStored 发布 fv.file.stored 事件。
// 分片合并且校验通过后调用，通知下游（审计、同步等）。
func PublishFileStored(pub message.Publisher, payload FileStoredPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileStored, payload, opts...)
}

// PublishFileDeleted 发布 fv.file.deleted 事件。
func PublishFileDeleted(pub message.Publisher, payload FileDeletedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileDeleted, payload, opts...)
}

// PublishFileRestored 发布 fv.file.restored 事件。
func PublishFileRestored(pub message.Publisher, payload FileRestoredPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileRestored, payload, opts...)
}

// PublishFilePurged 发布 fv.file.purged 事件。
func PublishFilePurged(pub message.Publisher, payload FilePurgedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFilePurged, payload, opts...)
}

// PublishFileRenamed 发布 fv.file.renamed 事件。
func PublishFileRenamed(pub message.Publisher, payload FileRenamedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileRenamed, payload, opts...)
}

// PublishUploadCancelled 发布 fv.upload.cancelled 事件。
func PublishUploadCancelled(pub message.Publisher, payload UploadCancelledPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicUploadCancelled, payload, opts...)
}

// PublishStorageAlert 发布 fv.storage.alert 事件。
func PublishStorageAlert(pub message.Publisher, payload StorageAlertPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicStorageAlert, payload, opts...)
}

// ParseFileStored 将 Watermill 消息解析为强类型 Envelope（FileStoredPayload）。
func ParseFileStored(msg *message.Message) (Message[FileStoredPayload], error) {
	return ParseWatermillMessage[FileStoredPayload](msg)
}

func publish[T any](pub message.Publisher, topic string, payload T, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}
