package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/filevault/pkg/checksum"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/db"
	"github.com/yeisme/filevault/pkg/internal/storage/local"
)

// newTestService 构造使用临时目录和 sqlite 文件库的服务底座.
func newTestService(t *testing.T) *VaultService {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "vault.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = gdb.AutoMigrate(&model.File{}, &model.UploadChunk{}, &model.ScheduledTask{}, &model.TaskExecution{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &configs.StorageConfig{
		Root:            t.TempDir(),
		ChunkSizeBytes:  1 << 20,
		MaxUploadBytes:  1 << 30,
		ChunkTTLHours:   24,
		RetentionDays:   90,
		UsageAlertRatio: 0.8,
	}

	store, err := local.New(cfg)
	if err != nil {
		t.Fatalf("init disk store: %v", err)
	}

	return &VaultService{
		dbClient: &db.Client{DB: gdb},
		disk:     store,
		cfg:      cfg,
	}
}

// seedFile 直接写入一个在用文件（磁盘 + 记录），返回其模型.
func seedFile(t *testing.T, svc *VaultService, filename string, content []byte, uploadDate time.Time) *model.File {
	t.Helper()

	fileID := uuid.NewString()
	rel := svc.disk.ActiveRel(uploadDate, fileID+filepath.Ext(filename))

	abs := svc.disk.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(abs, content, 0o640); err != nil {
		t.Fatalf("write file: %v", err)
	}

	f := &model.File{
		ID:         fileID,
		Filename:   filename,
		FilePath:   rel,
		Size:       int64(len(content)),
		Checksum:   checksum.Sum(content),
		UploadedBy: "tester",
		UploadDate: uploadDate,
		SyncStatus: model.SyncPending,
	}

	if err := svc.dbClient.GetDB().Create(f).Error; err != nil {
		t.Fatalf("create file row: %v", err)
	}

	return f
}

func countChunks(t *testing.T, svc *VaultService, uploadID string) int64 {
	t.Helper()

	var n int64
	if err := svc.dbClient.GetDB().Model(&model.UploadChunk{}).Where("upload_id = ?", uploadID).Count(&n).Error; err != nil {
		t.Fatalf("count chunks: %v", err)
	}

	return n
}

func testCtx(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	return ctx
}
