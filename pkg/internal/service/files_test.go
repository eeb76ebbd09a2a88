package service

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yeisme/filevault/pkg/internal/types"
)

func TestSoftDeleteRestoreRoundTrip(t *testing.T) {
	base := newTestService(t)
	svc := &FileService{base}
	ctx := testCtx(t)

	uploaded := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := seedFile(t, base, "report.pdf", []byte("pdf bytes"), uploaded)

	info, err := svc.SoftDelete(ctx, f.ID, "alice")
	if err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if !info.IsDeleted || info.DeletedAt == nil || info.DeletedBy != "alice" {
		t.Errorf("delete metadata not set: %+v", info)
	}

	// 磁盘文件移入 deleted 树，分区按删除日期
	got, err := svc.GetFile(ctx, f.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if !got.IsDeleted {
		t.Error("file should be marked deleted")
	}

	if _, _, err := svc.DownloadPath(ctx, f.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("download of deleted file: want ErrConflict, got %v", err)
	}

	restored, err := svc.Restore(ctx, f.ID, "alice")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if restored.IsDeleted || restored.DeletedAt != nil || restored.DeletedBy != "" {
		t.Errorf("restore did not clear delete metadata: %+v", restored)
	}

	// 恢复后进入按恢复时刻分区的 active 树
	path, _, err := svc.DownloadPath(ctx, f.ID)
	if err != nil {
		t.Fatalf("download after restore: %v", err)
	}

	wantPartition := fmt.Sprintf("active/%04d/%02d", time.Now().UTC().Year(), time.Now().UTC().Month())
	if !strings.Contains(path, wantPartition) {
		t.Errorf("restored path = %s, want %s partition", path, wantPartition)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read restored file: %v", err)
	}

	if string(data) != "pdf bytes" {
		t.Errorf("restored content = %q, want original bytes", data)
	}
}

func TestSoftDeleteTwiceConflicts(t *testing.T) {
	base := newTestService(t)
	svc := &FileService{base}
	ctx := testCtx(t)

	f := seedFile(t, base, "a.txt", []byte("x"), time.Now().UTC())

	if _, err := svc.SoftDelete(ctx, f.ID, ""); err != nil {
		t.Fatalf("first delete: %v", err)
	}

	if _, err := svc.SoftDelete(ctx, f.ID, ""); !errors.Is(err, ErrConflict) {
		t.Errorf("second delete: want ErrConflict, got %v", err)
	}
}

func TestRestoreActiveFileConflicts(t *testing.T) {
	base := newTestService(t)
	svc := &FileService{base}
	ctx := testCtx(t)

	f := seedFile(t, base, "a.txt", []byte("x"), time.Now().UTC())

	if _, err := svc.Restore(ctx, f.ID, ""); !errors.Is(err, ErrConflict) {
		t.Errorf("restore of active file: want ErrConflict, got %v", err)
	}
}

func TestFileNotFound(t *testing.T) {
	base := newTestService(t)
	svc := &FileService{base}
	ctx := testCtx(t)

	if _, err := svc.GetFile(ctx, "missing-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get: want ErrNotFound, got %v", err)
	}

	if _, err := svc.SoftDelete(ctx, "missing-id", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: want ErrNotFound, got %v", err)
	}
}

func TestRenameLogicalOnly(t *testing.T) {
	base := newTestService(t)
	svc := &FileService{base}
	ctx := testCtx(t)

	f := seedFile(t, base, "draft.md", []byte("text"), time.Now().UTC())

	info, err := svc.Rename(ctx, f.ID, "alice", types.RenameFileRequest{Filename: "final.md"})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}

	if info.Filename != "final.md" {
		t.Errorf("filename = %q, want final.md", info.Filename)
	}

	// 磁盘路径不变：文件名以 file_id 为准
	path, _, err := svc.DownloadPath(ctx, f.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}

	if !strings.Contains(path, f.ID) {
		t.Errorf("disk path should keep file id: %s", path)
	}

	if _, err := svc.Rename(ctx, f.ID, "", types.RenameFileRequest{Filename: "../evil"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad name: want ErrValidation, got %v", err)
	}
}

func TestRenameDeletedFileConflicts(t *testing.T) {
	base := newTestService(t)
	svc := &FileService{base}
	ctx := testCtx(t)

	f := seedFile(t, base, "a.txt", []byte("x"), time.Now().UTC())

	if _, err := svc.SoftDelete(ctx, f.ID, ""); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Rename(ctx, f.ID, "", types.RenameFileRequest{Filename: "b.txt"}); !errors.Is(err, ErrConflict) {
		t.Errorf("rename deleted: want ErrConflict, got %v", err)
	}
}

func TestPurgeRequiresSoftDelete(t *testing.T) {
	base := newTestService(t)
	svc := &FileService{base}
	ctx := testCtx(t)

	f := seedFile(t, base, "a.txt", []byte("x"), time.Now().UTC())

	if err := svc.Purge(ctx, f.ID, "manual"); !errors.Is(err, ErrConflict) {
		t.Fatalf("purge active file: want ErrConflict, got %v", err)
	}

	if _, err := svc.SoftDelete(ctx, f.ID, ""); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := svc.Purge(ctx, f.ID, "manual"); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if _, err := svc.GetFile(ctx, f.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("record after purge: want ErrNotFound, got %v", err)
	}
}

func TestListFiles(t *testing.T) {
	base := newTestService(t)
	svc := &FileService{base}
	ctx := testCtx(t)

	now := time.Now().UTC()
	for i := range 5 {
		seedFile(t, base, fmt.Sprintf("doc_%d.txt", i), []byte("x"), now.Add(time.Duration(i)*time.Minute))
	}

	trashed := seedFile(t, base, "trashed.txt", []byte("x"), now)
	if _, err := svc.SoftDelete(ctx, trashed.ID, ""); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// 默认不含回收站
	resp, err := svc.ListFiles(ctx, types.FileListRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if resp.Total != 5 {
		t.Errorf("total = %d, want 5", resp.Total)
	}

	// 按上传时间倒序
	if resp.Files[0].Filename != "doc_4.txt" {
		t.Errorf("first = %q, want doc_4.txt", resp.Files[0].Filename)
	}

	// 分页
	resp, err = svc.ListFiles(ctx, types.FileListRequest{Page: 2, Size: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}

	if len(resp.Files) != 2 || resp.Total != 5 {
		t.Errorf("page 2: got %d files total %d", len(resp.Files), resp.Total)
	}

	// 只看回收站
	resp, err = svc.ListFiles(ctx, types.FileListRequest{DeletedOnly: true})
	if err != nil {
		t.Fatalf("list deleted: %v", err)
	}

	if resp.Total != 1 || resp.Files[0].Filename != "trashed.txt" {
		t.Errorf("deleted only: %+v", resp)
	}

	// 文件名模糊匹配
	resp, err = svc.ListFiles(ctx, types.FileListRequest{Search: "doc_3"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if resp.Total != 1 {
		t.Errorf("search total = %d, want 1", resp.Total)
	}

	// 指定排序字段
	resp, err = svc.ListFiles(ctx, types.FileListRequest{SortBy: "filename", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("sort: %v", err)
	}

	if resp.Files[0].Filename != "doc_0.txt" {
		t.Errorf("sorted first = %q, want doc_0.txt", resp.Files[0].Filename)
	}

	if resp.TotalPages != 1 {
		t.Errorf("total_pages = %d, want 1", resp.TotalPages)
	}
}
