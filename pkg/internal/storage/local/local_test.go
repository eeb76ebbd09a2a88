package local_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yeisme/filevault/pkg/checksum"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/storage/local"
)

func newStore(t *testing.T) *local.Store {
	t.Helper()

	cfg := &configs.StorageConfig{Root: t.TempDir()}

	s, err := local.New(cfg)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	return s
}

// TestPartition 测试 yyyy/mm 分区格式.
func TestPartition(t *testing.T) {
	ts := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	if got := local.Partition(ts); got != "2026/08" {
		t.Errorf("Partition = %s, want 2026/08", got)
	}
}

// TestWriteChunkAndAssemble 测试分片落盘和按序拼接.
func TestWriteChunkAndAssemble(t *testing.T) {
	s := newStore(t)

	parts := [][]byte{
		bytes.Repeat([]byte("a"), 100),
		bytes.Repeat([]byte("b"), 50),
		[]byte("tail"),
	}

	var whole []byte

	for n, p := range parts {
		size, sum, err := s.WriteChunk("upload-1", n, checksum.Sum(p), bytes.NewReader(p))
		if err != nil {
			t.Fatalf("write chunk %d: %v", n, err)
		}

		if size != int64(len(p)) {
			t.Errorf("chunk %d size = %d, want %d", n, size, len(p))
		}

		if sum != checksum.Sum(p) {
			t.Errorf("chunk %d checksum mismatch", n)
		}

		whole = append(whole, p...)
	}

	dstRel := s.ActiveRel(time.Now(), "file-1.bin")

	size, sum, err := s.Assemble("upload-1", len(parts), dstRel)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if size != int64(len(whole)) {
		t.Errorf("assembled size = %d, want %d", size, len(whole))
	}

	if sum != checksum.Sum(whole) {
		t.Error("assembled checksum mismatch")
	}

	data, err := os.ReadFile(s.Abs(dstRel))
	if err != nil {
		t.Fatalf("read assembled: %v", err)
	}

	if !bytes.Equal(data, whole) {
		t.Error("assembled content mismatch")
	}
}

// TestWriteChunkMismatchKeepsExisting 测试摘要不符时不提交，已有分片不被破坏.
func TestWriteChunkMismatchKeepsExisting(t *testing.T) {
	s := newStore(t)

	good := []byte("the committed chunk")

	if _, _, err := s.WriteChunk("upload-4", 0, checksum.Sum(good), bytes.NewReader(good)); err != nil {
		t.Fatalf("write chunk: %v", err)
	}

	_, _, err := s.WriteChunk("upload-4", 0, checksum.Sum([]byte("declared")), bytes.NewReader([]byte("actual")))
	if !errors.Is(err, local.ErrChecksumMismatch) {
		t.Fatalf("want ErrChecksumMismatch, got %v", err)
	}

	data, err := os.ReadFile(s.ChunkPath("upload-4", 0))
	if err != nil {
		t.Fatalf("read chunk: %v", err)
	}

	if !bytes.Equal(data, good) {
		t.Errorf("chunk bytes = %q, want %q", data, good)
	}

	// 被拒写入不留临时文件
	entries, err := os.ReadDir(s.UploadDir("upload-4"))
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}

	if len(entries) != 1 {
		t.Errorf("upload dir has %d entries, want 1", len(entries))
	}
}

// TestAssembleMissingChunk 测试缺片时不产生半成品文件.
func TestAssembleMissingChunk(t *testing.T) {
	s := newStore(t)

	if _, _, err := s.WriteChunk("upload-2", 0, "", strings.NewReader("first")); err != nil {
		t.Fatalf("write chunk: %v", err)
	}

	dstRel := s.ActiveRel(time.Now(), "file-2.bin")

	if _, _, err := s.Assemble("upload-2", 2, dstRel); err == nil {
		t.Fatal("Expected error for missing chunk, got nil")
	}

	if s.Exists(dstRel) {
		t.Error("Assemble must not leave a partial file on error")
	}
}

// TestMove 测试 active 与 deleted 树之间的移动.
func TestMove(t *testing.T) {
	s := newStore(t)

	now := time.Now()
	activeRel := s.ActiveRel(now, "doc.txt")

	if err := os.MkdirAll(filepath.Dir(s.Abs(activeRel)), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(s.Abs(activeRel), []byte("content"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	deletedRel := s.DeletedRel(now, "doc.txt")

	if err := s.Move(activeRel, deletedRel); err != nil {
		t.Fatalf("move to deleted: %v", err)
	}

	if s.Exists(activeRel) {
		t.Error("source should be gone after move")
	}

	if !s.Exists(deletedRel) {
		t.Error("dest should exist after move")
	}

	// 恢复回 active
	if err := s.Move(deletedRel, activeRel); err != nil {
		t.Fatalf("restore move: %v", err)
	}

	if !s.Exists(activeRel) {
		t.Error("file should be back in active tree")
	}
}

// TestRemoveUpload 测试会话目录整体回收.
func TestRemoveUpload(t *testing.T) {
	s := newStore(t)

	if _, _, err := s.WriteChunk("upload-3", 0, "", strings.NewReader("x")); err != nil {
		t.Fatalf("write chunk: %v", err)
	}

	ids, err := s.ListUploadDirs()
	if err != nil {
		t.Fatalf("list uploads: %v", err)
	}

	if len(ids) != 1 || ids[0] != "upload-3" {
		t.Errorf("ListUploadDirs = %v, want [upload-3]", ids)
	}

	if err := s.RemoveUpload("upload-3"); err != nil {
		t.Fatalf("remove upload: %v", err)
	}

	ids, _ = s.ListUploadDirs()
	if len(ids) != 0 {
		t.Errorf("upload dir should be gone, got %v", ids)
	}

	// 幂等
	if err := s.RemoveUpload("upload-3"); err != nil {
		t.Errorf("RemoveUpload should be idempotent, got %v", err)
	}
}

// TestRemoveMissingFile 测试删除不存在的文件不算错误.
func TestRemoveMissingFile(t *testing.T) {
	s := newStore(t)

	if err := s.Remove("active/2026/01/nothing.bin"); err != nil {
		t.Errorf("Remove of missing file should be nil, got %v", err)
	}
}

// TestUsage 测试磁盘容量统计.
func TestUsage(t *testing.T) {
	s := newStore(t)

	u, err := s.Usage()
	if err != nil {
		t.Fatalf("usage: %v", err)
	}

	if u.TotalBytes == 0 {
		t.Error("TotalBytes should be non-zero")
	}

	if u.UsedRatio < 0 || u.UsedRatio > 1 {
		t.Errorf("UsedRatio = %f, want within [0,1]", u.UsedRatio)
	}
}
