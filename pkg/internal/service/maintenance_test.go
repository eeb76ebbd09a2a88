package service

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/yeisme/filevault/pkg/checksum"
	"github.com/yeisme/filevault/pkg/internal/model"
)

func TestCleanupExpiredChunks(t *testing.T) {
	base := newTestService(t)
	up := &UploadService{base}
	mnt := &MaintenanceService{&FileService{base}}
	ctx := testCtx(t)

	for _, i := range []int{0, 1} {
		if _, err := up.UploadChunk(ctx, "stale", i, 3, checksum.Sum([]byte("x")), bytes.NewReader([]byte("x"))); err != nil {
			t.Fatalf("upload chunk %d: %v", i, err)
		}
	}

	if _, err := up.UploadChunk(ctx, "fresh", 0, 1, checksum.Sum([]byte("y")), bytes.NewReader([]byte("y"))); err != nil {
		t.Fatalf("upload fresh chunk: %v", err)
	}

	// 把 stale 会话的分片改为已过期
	past := time.Now().UTC().Add(-time.Hour)

	err := base.dbClient.GetDB().Model(&model.UploadChunk{}).
		Where("upload_id = ?", "stale").
		Update("expires_at", past).Error
	if err != nil {
		t.Fatalf("age chunks: %v", err)
	}

	result, err := mnt.CleanupExpiredChunks(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if result.ChunksRemoved != 2 || result.UploadsRemoved != 1 {
		t.Errorf("removed %d chunks / %d uploads, want 2/1", result.ChunksRemoved, result.UploadsRemoved)
	}

	if n := countChunks(t, base, "stale"); n != 0 {
		t.Errorf("stale chunks left: %d", n)
	}

	if n := countChunks(t, base, "fresh"); n != 1 {
		t.Errorf("fresh session touched: %d chunks left", n)
	}

	if base.disk.Exists("temp/stale/chunk_0") {
		t.Error("stale chunk file still on disk")
	}
}

func TestCleanupExpiredChunksOrphanDirs(t *testing.T) {
	base := newTestService(t)
	mnt := &MaintenanceService{&FileService{base}}
	ctx := testCtx(t)

	// 磁盘有目录但 DB 无记录：模拟进程中断的残留
	if _, _, err := base.disk.WriteChunk("orphan", 0, "", bytes.NewReader([]byte("z"))); err != nil {
		t.Fatalf("write orphan chunk: %v", err)
	}

	// TTL 内的目录豁免回收，把目录改老
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(base.disk.UploadDir("orphan"), past, past); err != nil {
		t.Fatalf("age orphan dir: %v", err)
	}

	result, err := mnt.CleanupExpiredChunks(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if result.OrphanDirs != 1 {
		t.Errorf("orphan dirs = %d, want 1", result.OrphanDirs)
	}

	dirs, err := base.disk.ListUploadDirs()
	if err != nil {
		t.Fatalf("list upload dirs: %v", err)
	}

	if len(dirs) != 0 {
		t.Errorf("upload dirs left: %v", dirs)
	}
}

func TestCleanupDeletedFilesRetentionBoundary(t *testing.T) {
	base := newTestService(t)
	fs := &FileService{base}
	mnt := &MaintenanceService{fs}
	ctx := testCtx(t)

	now := time.Now().UTC()

	old := seedFile(t, base, "old.txt", []byte("stale data"), now.AddDate(0, -6, 0))
	recent := seedFile(t, base, "recent.txt", []byte("x"), now)

	for _, f := range []*model.File{old, recent} {
		if _, err := fs.SoftDelete(ctx, f.ID, ""); err != nil {
			t.Fatalf("delete %s: %v", f.Filename, err)
		}
	}

	// old 删除于 91 天前（过保留期），recent 删除于 89 天前（未过）
	age := func(id string, d time.Duration) {
		t.Helper()

		when := now.Add(-d)
		if err := base.dbClient.GetDB().Model(&model.File{}).Where("id = ?", id).Update("deleted_at", when).Error; err != nil {
			t.Fatalf("age file: %v", err)
		}
	}

	age(old.ID, 91*24*time.Hour)
	age(recent.ID, 89*24*time.Hour)

	result, err := mnt.CleanupDeletedFiles(ctx)
	if err != nil {
		t.Fatalf("retention cleanup: %v", err)
	}

	if result.FilesPurged != 1 {
		t.Errorf("purged = %d, want 1", result.FilesPurged)
	}

	if result.BytesReleased != int64(len("stale data")) {
		t.Errorf("bytes released = %d", result.BytesReleased)
	}

	if _, err := fs.GetFile(ctx, old.ID); err == nil {
		t.Error("expired file should be gone")
	}

	if _, err := fs.GetFile(ctx, recent.ID); err != nil {
		t.Errorf("recent file should survive: %v", err)
	}
}

func TestCheckStorage(t *testing.T) {
	base := newTestService(t)
	mnt := &MaintenanceService{&FileService{base}}
	ctx := testCtx(t)

	seedFile(t, base, "a.txt", []byte("x"), time.Now().UTC())

	result, err := mnt.CheckStorage(ctx)
	if err != nil {
		t.Fatalf("check storage: %v", err)
	}

	if result.TotalBytes == 0 {
		t.Error("total bytes should be positive")
	}

	if result.UsedRatio < 0 || result.UsedRatio > 1 {
		t.Errorf("used ratio out of range: %f", result.UsedRatio)
	}
}

func TestVerifyFiles(t *testing.T) {
	base := newTestService(t)
	mnt := &MaintenanceService{&FileService{base}}
	ctx := testCtx(t)

	now := time.Now().UTC()

	seedFile(t, base, "ok.txt", []byte("intact"), now)
	corrupted := seedFile(t, base, "bad.txt", []byte("original"), now)
	missing := seedFile(t, base, "gone.txt", []byte("vanishes"), now)

	if err := os.WriteFile(base.disk.Abs(corrupted.FilePath), []byte("tampered"), 0o640); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}

	if err := os.Remove(base.disk.Abs(missing.FilePath)); err != nil {
		t.Fatalf("remove file: %v", err)
	}

	result, err := mnt.VerifyFiles(ctx, 0)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if result.FilesChecked != 3 {
		t.Errorf("checked = %d, want 3", result.FilesChecked)
	}

	if len(result.Corrupted) != 1 || result.Corrupted[0] != corrupted.ID {
		t.Errorf("corrupted = %v, want [%s]", result.Corrupted, corrupted.ID)
	}

	if len(result.MissingDisk) != 1 || result.MissingDisk[0] != missing.ID {
		t.Errorf("missing = %v, want [%s]", result.MissingDisk, missing.ID)
	}
}
