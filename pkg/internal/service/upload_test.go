package service

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/yeisme/filevault/pkg/checksum"
	"github.com/yeisme/filevault/pkg/internal/types"
)

func TestInitUploadValidation(t *testing.T) {
	svc := &UploadService{newTestService(t)}
	ctx := testCtx(t)

	cases := []struct {
		name string
		req  types.InitUploadRequest
	}{
		{"empty filename", types.InitUploadRequest{Filename: "", Size: 10, TotalChunks: 1}},
		{"path separator", types.InitUploadRequest{Filename: "a/b.txt", Size: 10, TotalChunks: 1}},
		{"dot dot", types.InitUploadRequest{Filename: "..", Size: 10, TotalChunks: 1}},
		{"zero size", types.InitUploadRequest{Filename: "a.txt", Size: 0, TotalChunks: 1}},
		{"oversize", types.InitUploadRequest{Filename: "a.txt", Size: svc.cfg.MaxUploadBytes + 1, TotalChunks: 1}},
		{"zero chunks", types.InitUploadRequest{Filename: "a.txt", Size: 10}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.InitUpload(ctx, tc.req); !errors.Is(err, ErrValidation) {
				t.Errorf("want ErrValidation, got %v", err)
			}
		})
	}
}

func TestInitUploadIssuesSession(t *testing.T) {
	svc := &UploadService{newTestService(t)}
	ctx := testCtx(t)

	resp, err := svc.InitUpload(ctx, types.InitUploadRequest{Filename: "report.pdf", Size: 1024, TotalChunks: 2})
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	if resp.UploadID == "" {
		t.Error("upload id should not be empty")
	}

	if resp.ChunkSize != svc.cfg.ChunkSizeBytes {
		t.Errorf("chunk size = %d, want %d", resp.ChunkSize, svc.cfg.ChunkSizeBytes)
	}

	if resp.TotalChunks != 2 {
		t.Errorf("total_chunks = %d, want 2", resp.TotalChunks)
	}

	if resp.ExpiresAt.IsZero() {
		t.Error("expires_at should be set")
	}

	// init 即创建暂存目录
	dirs, err := svc.disk.ListUploadDirs()
	if err != nil {
		t.Fatalf("list upload dirs: %v", err)
	}

	if len(dirs) != 1 || dirs[0] != resp.UploadID {
		t.Errorf("upload dirs = %v, want [%s]", dirs, resp.UploadID)
	}
}

func TestUploadHappyPath(t *testing.T) {
	svc := &UploadService{newTestService(t)}
	ctx := testCtx(t)

	parts := [][]byte{
		[]byte("first chunk of the file|"),
		[]byte("second chunk|"),
		[]byte("third and last"),
	}
	whole := bytes.Join(parts, nil)

	init, err := svc.InitUpload(ctx, types.InitUploadRequest{Filename: "notes.txt", Size: int64(len(whole)), TotalChunks: len(parts)})
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	for i, p := range parts {
		resp, err := svc.UploadChunk(ctx, init.UploadID, i, len(parts), checksum.Sum(p), bytes.NewReader(p))
		if err != nil {
			t.Fatalf("upload chunk %d: %v", i, err)
		}

		if resp.Size != int64(len(p)) {
			t.Errorf("chunk %d size = %d, want %d", i, resp.Size, len(p))
		}
	}

	info, err := svc.CompleteUpload(ctx, init.UploadID, "alice", types.CompleteUploadRequest{
		Filename: "notes.txt",
		Checksum: checksum.Sum(whole),
		MimeType: "text/plain",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if info.Size != int64(len(whole)) {
		t.Errorf("size = %d, want %d", info.Size, len(whole))
	}

	if info.Checksum != checksum.Sum(whole) {
		t.Errorf("checksum mismatch: %s", info.Checksum)
	}

	if info.UploadedBy != "alice" {
		t.Errorf("uploaded_by = %q", info.UploadedBy)
	}

	// 分片清理完毕，正式文件在 active 树上
	if n := countChunks(t, svc.VaultService, init.UploadID); n != 0 {
		t.Errorf("%d chunk rows left after complete", n)
	}

	fs := &FileService{svc.VaultService}

	path, _, err := fs.DownloadPath(ctx, info.FileID)
	if err != nil {
		t.Fatalf("download path: %v", err)
	}

	if !strings.Contains(path, "active") {
		t.Errorf("assembled file not under active tree: %s", path)
	}
}

func TestUploadChunkValidation(t *testing.T) {
	svc := &UploadService{newTestService(t)}
	ctx := testCtx(t)

	data := []byte("payload")
	good := checksum.Sum(data)

	cases := []struct {
		name     string
		uploadID string
		number   int
		total    int
		sum      string
	}{
		{"empty upload id", "", 0, 1, good},
		{"negative chunk number", "sess-v", -1, 1, good},
		{"number beyond total", "sess-v", 2, 2, good},
		{"missing checksum", "sess-v", 0, 1, ""},
		{"malformed checksum", "sess-v", 0, 1, "xyz"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UploadChunk(ctx, tc.uploadID, tc.number, tc.total, tc.sum, bytes.NewReader(data))
			if !errors.Is(err, ErrValidation) {
				t.Errorf("want ErrValidation, got %v", err)
			}
		})
	}
}

func TestUploadChunkChecksumMismatch(t *testing.T) {
	svc := &UploadService{newTestService(t)}
	ctx := testCtx(t)

	data := []byte("payload")
	wrong := checksum.Sum([]byte("other"))

	_, err := svc.UploadChunk(ctx, "sess-1", 0, 1, wrong, bytes.NewReader(data))
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("want ErrIntegrity, got %v", err)
	}

	// 损坏分片不留记录，可直接重传
	if n := countChunks(t, svc.VaultService, "sess-1"); n != 0 {
		t.Errorf("%d chunk rows left after rejected chunk", n)
	}

	if _, err := svc.UploadChunk(ctx, "sess-1", 0, 1, checksum.Sum(data), bytes.NewReader(data)); err != nil {
		t.Fatalf("retry after mismatch: %v", err)
	}
}

func TestUploadChunkRejectedReuploadKeepsCommitted(t *testing.T) {
	svc := &UploadService{newTestService(t)}
	ctx := testCtx(t)

	committed := []byte("good bytes")
	finalSum := checksum.Sum(committed)

	if _, err := svc.UploadChunk(ctx, "sess-6", 0, 1, finalSum, bytes.NewReader(committed)); err != nil {
		t.Fatalf("first upload: %v", err)
	}

	// 重传被摘要校验拒绝：已提交的分片必须原样保留
	_, err := svc.UploadChunk(ctx, "sess-6", 0, 1, checksum.Sum([]byte("lie")), bytes.NewReader([]byte("garbage")))
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("want ErrIntegrity, got %v", err)
	}

	onDisk, err := os.ReadFile(svc.disk.Abs("temp/sess-6/chunk_0"))
	if err != nil {
		t.Fatalf("read committed chunk: %v", err)
	}

	if !bytes.Equal(onDisk, committed) {
		t.Errorf("committed chunk bytes = %q, want %q", onDisk, committed)
	}

	if n := countChunks(t, svc.VaultService, "sess-6"); n != 1 {
		t.Errorf("chunk rows = %d, want 1", n)
	}

	// 会话仍可正常完成
	info, err := svc.CompleteUpload(ctx, "sess-6", "", types.CompleteUploadRequest{Filename: "a.bin", Checksum: finalSum})
	if err != nil {
		t.Fatalf("complete after rejected re-upload: %v", err)
	}

	if info.Size != int64(len(committed)) {
		t.Errorf("size = %d, want %d", info.Size, len(committed))
	}
}

func TestUploadChunkReuploadOverwrites(t *testing.T) {
	svc := &UploadService{newTestService(t)}
	ctx := testCtx(t)

	if _, err := svc.UploadChunk(ctx, "sess-2", 0, 1, checksum.Sum([]byte("old")), bytes.NewReader([]byte("old"))); err != nil {
		t.Fatalf("first upload: %v", err)
	}

	resp, err := svc.UploadChunk(ctx, "sess-2", 0, 1, checksum.Sum([]byte("newer")), bytes.NewReader([]byte("newer")))
	if err != nil {
		t.Fatalf("re-upload: %v", err)
	}

	if resp.Size != 5 {
		t.Errorf("size = %d, want 5", resp.Size)
	}

	if n := countChunks(t, svc.VaultService, "sess-2"); n != 1 {
		t.Errorf("chunk rows = %d, want 1", n)
	}
}

func TestCompleteUploadChunkCountMismatch(t *testing.T) {
	svc := &UploadService{newTestService(t)}
	ctx := testCtx(t)

	// 声明 3 片只传了 2 片
	for _, i := range []int{0, 1} {
		if _, err := svc.UploadChunk(ctx, "sess-3", i, 3, checksum.Sum([]byte("x")), bytes.NewReader([]byte("x"))); err != nil {
			t.Fatalf("upload chunk %d: %v", i, err)
		}
	}

	_, err := svc.CompleteUpload(ctx, "sess-3", "", types.CompleteUploadRequest{Filename: "a.bin", Checksum: checksum.Sum([]byte("xxx"))})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}

	// 分片保留，补传后可完成
	if n := countChunks(t, svc.VaultService, "sess-3"); n != 2 {
		t.Errorf("chunk rows = %d, want 2", n)
	}
}

func TestCompleteUploadChecksumMismatchKeepsChunks(t *testing.T) {
	svc := &UploadService{newTestService(t)}
	ctx := testCtx(t)

	data := []byte("the real content")

	if _, err := svc.UploadChunk(ctx, "sess-4", 0, 1, checksum.Sum(data), bytes.NewReader(data)); err != nil {
		t.Fatalf("upload chunk: %v", err)
	}

	wrong := checksum.Sum([]byte("something else"))

	_, err := svc.CompleteUpload(ctx, "sess-4", "", types.CompleteUploadRequest{Filename: "a.bin", Checksum: wrong})
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("want ErrIntegrity, got %v", err)
	}

	// 合并产物作废但分片保留，重试应成功
	if n := countChunks(t, svc.VaultService, "sess-4"); n != 1 {
		t.Fatalf("chunk rows = %d, want 1", n)
	}

	info, err := svc.CompleteUpload(ctx, "sess-4", "", types.CompleteUploadRequest{Filename: "a.bin", Checksum: checksum.Sum(data)})
	if err != nil {
		t.Fatalf("retry complete: %v", err)
	}

	if info.Size != int64(len(data)) {
		t.Errorf("size = %d, want %d", info.Size, len(data))
	}
}

func TestCompleteUploadUnknownSession(t *testing.T) {
	svc := &UploadService{newTestService(t)}
	ctx := testCtx(t)

	_, err := svc.CompleteUpload(ctx, "no-such-session", "", types.CompleteUploadRequest{Filename: "a.bin", Checksum: checksum.Sum([]byte("a"))})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCancelUploadIdempotent(t *testing.T) {
	svc := &UploadService{newTestService(t)}
	ctx := testCtx(t)

	if _, err := svc.UploadChunk(ctx, "sess-5", 0, 2, checksum.Sum([]byte("x")), bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("upload chunk: %v", err)
	}

	resp, err := svc.CancelUpload(ctx, "sess-5", "bob")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if resp.ChunksRemoved != 1 {
		t.Errorf("chunks removed = %d, want 1", resp.ChunksRemoved)
	}

	// 重复取消与取消未知会话都返回 0，不报错
	resp, err = svc.CancelUpload(ctx, "sess-5", "bob")
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}

	if resp.ChunksRemoved != 0 {
		t.Errorf("chunks removed = %d, want 0", resp.ChunksRemoved)
	}
}
