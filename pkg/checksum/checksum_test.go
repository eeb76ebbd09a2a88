package checksum_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yeisme/filevault/pkg/checksum"
)

// 空串和 "abc" 的 SHA-256 是公开测试向量.
const (
	emptyDigest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	abcDigest   = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
)

// TestSum 测试字节切片摘要.
func TestSum(t *testing.T) {
	if got := checksum.Sum(nil); got != emptyDigest {
		t.Errorf("Sum(nil) = %s, want %s", got, emptyDigest)
	}

	if got := checksum.Sum([]byte("abc")); got != abcDigest {
		t.Errorf("Sum(abc) = %s, want %s", got, abcDigest)
	}
}

// TestSumReader 测试流式摘要与切片摘要一致.
func TestSumReader(t *testing.T) {
	data := bytes.Repeat([]byte("filevault"), 4096)

	got, err := checksum.SumReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("SumReader failed: %v", err)
	}

	if want := checksum.Sum(data); got != want {
		t.Errorf("SumReader = %s, want %s", got, want)
	}

	if len(got) != checksum.HexLen {
		t.Errorf("digest length = %d, want %d", len(got), checksum.HexLen)
	}

	if got != strings.ToLower(got) {
		t.Error("digest must be lowercase hex")
	}
}

// TestSumFile 测试文件摘要.
func TestSumFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.bin")
	if err := os.WriteFile(path, []byte("abc"), 0o600); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	got, err := checksum.SumFile(path)
	if err != nil {
		t.Fatalf("SumFile failed: %v", err)
	}

	if got != abcDigest {
		t.Errorf("SumFile = %s, want %s", got, abcDigest)
	}

	if _, err := checksum.SumFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

// TestWriter 测试边写边算摘要.
func TestWriter(t *testing.T) {
	var buf bytes.Buffer

	w := checksum.NewWriter(&buf)

	if _, err := w.Write([]byte("a")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := w.Write([]byte("bc")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := w.Sum(); got != abcDigest {
		t.Errorf("Writer.Sum = %s, want %s", got, abcDigest)
	}

	if w.Written() != 3 {
		t.Errorf("Written = %d, want 3", w.Written())
	}

	if buf.String() != "abc" {
		t.Errorf("underlying writer got %q", buf.String())
	}
}
