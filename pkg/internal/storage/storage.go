// Package storage 聚合存储资源：元数据库、本地磁盘树、KV 缓存与消息队列.
//
// Example:
//
// 初始化
//
//	 ctx := context.Background()
//	 mgr, err := storage.Init(ctx)
//
//		if err != nil {
//		    // 处理错误
//		}
//
// 获取存储客户端
//
//	dbClient := mgr.GetDBClient()
//	disk := mgr.GetDisk()
package storage

import (
	"context"
	"sync"

	"github.com/yeisme/filevault/pkg/configs"
	dbc "github.com/yeisme/filevault/pkg/internal/storage/db"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
	"github.com/yeisme/filevault/pkg/internal/storage/local"
	mqc "github.com/yeisme/filevault/pkg/internal/storage/mq"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB   *dbc.Client
	Disk *local.Store
	KV   *kv.Client
	MQ   *mqc.Client // 未启用 MQ 时为 nil
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置.重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		// DB
		dbi, e := dbc.New(ctx)
		if e != nil {
			err = e

			return
		}

		m.DB = dbi

		// 本地磁盘树
		disk, e := local.New(&cfg.Storage)
		if e != nil {
			err = e

			return
		}

		m.Disk = disk

		// KV 缓存
		kvi, e := kv.NewKVClient(ctx)
		if e != nil {
			err = e

			return
		}

		m.KV = kvi

		// MQ 旁路，未启用时跳过
		if cfg.MQ.Enabled {
			mqi, e := mqc.New(ctx)
			if e != nil {
				err = e

				return
			}

			m.MQ = mqi
		}

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetDisk 获取本地磁盘存储.
func (m *Manager) GetDisk() *local.Store {
	return m.Disk
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kv.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端，未启用时返回 nil.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 释放持有的连接资源.
func (m *Manager) Close() error {
	var err error

	if m.KV != nil {
		if e := m.KV.Close(); e != nil {
			err = e
		}
	}

	if m.MQ != nil {
		if e := m.MQ.Close(); e != nil {
			err = e
		}
	}

	return err
}
