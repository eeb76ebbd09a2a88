package storage

import (
	"context"

	dbc "github.com/yeisme/filevault/pkg/internal/storage/db"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
	"github.com/yeisme/filevault/pkg/internal/storage/local"
)

type contextKey string

const managerKey contextKey = "storageManager"

// WithManager 将 Manager 存储到 context 中.
func WithManager(ctx context.Context, mgr *Manager) context.Context {
	return context.WithValue(ctx, managerKey, mgr)
}

// GetManagerFromContext 从 context 中获取 Manager.
func GetManagerFromContext(ctx context.Context) *Manager {
	if mgr, ok := ctx.Value(managerKey).(*Manager); ok {
		return mgr
	}

	return nil
}

// GetDBClientFromContext 从 context 中获取 DB 客户端.
func GetDBClientFromContext(ctx context.Context) *dbc.Client {
	if mgr := GetManagerFromContext(ctx); mgr != nil {
		return mgr.DB
	}

	return nil
}

// GetDiskFromContext 从 context 中获取本地磁盘存储.
func GetDiskFromContext(ctx context.Context) *local.Store {
	if mgr := GetManagerFromContext(ctx); mgr != nil {
		return mgr.Disk
	}

	return nil
}

// GetKVClientFromContext 从 context 中获取 KV 客户端.
func GetKVClientFromContext(ctx context.Context) *kv.Client {
	if mgr := GetManagerFromContext(ctx); mgr != nil {
		return mgr.KV
	}

	return nil
}
