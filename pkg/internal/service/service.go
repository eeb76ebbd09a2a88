// Package service 实现核心业务语义：分片上传会话、文件生命周期、
// 维护清理操作与存储统计.HTTP 层只做参数绑定，规则都在这里.
package service

import (
	"context"

	"github.com/yeisme/filevault/pkg/configs"
	ctxPkg "github.com/yeisme/filevault/pkg/context"
	"github.com/yeisme/filevault/pkg/internal/storage/db"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
	"github.com/yeisme/filevault/pkg/internal/storage/local"
	"github.com/yeisme/filevault/pkg/internal/storage/mq"
)

// VaultService 聚合存储依赖，是各业务子服务的公共底座.
type VaultService struct {
	dbClient *db.Client
	disk     *local.Store
	kvClient *kv.Client
	mqClient *mq.Client
	cfg      *configs.StorageConfig
}

// NewVaultService 从 context 中解析存储管理器构造服务.
func NewVaultService(c context.Context) *VaultService {
	return &VaultService{
		dbClient: ctxPkg.GetDBClient(c),
		disk:     ctxPkg.GetDisk(c),
		kvClient: ctxPkg.GetKVClient(c),
		mqClient: ctxPkg.GetMQClient(c),
		cfg:      &configs.GetConfig().Storage,
	}
}
