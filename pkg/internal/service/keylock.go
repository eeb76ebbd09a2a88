package service

import "sync"

// keyLock 按键串行化操作：同一 upload_id 或 file_id 的变更互斥，
// 不同键之间互不阻塞.锁条目用引用计数回收，避免 map 无限增长.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*lockEntry)}
}

// Lock 获取 key 对应的互斥锁.
func (k *keyLock) Lock(key string) {
	k.mu.Lock()

	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}

	e.refs++

	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock 释放 key 对应的互斥锁，无引用时回收条目.
func (k *keyLock) Unlock(key string) {
	k.mu.Lock()

	e, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()

		panic("keylock: unlock of unheld key " + key)
	}

	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}

	k.mu.Unlock()

	e.mu.Unlock()
}

// 进程级锁表：上传会话与文件各一张.
var (
	uploadLocks = newKeyLock()
	fileLocks   = newKeyLock()
)
