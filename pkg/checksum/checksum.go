// Package checksum 提供 SHA-256 摘要计算，统一输出 64 位小写十六进制.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// HexLen SHA-256 十六进制摘要长度.
const HexLen = 64

// Sum 计算字节切片的摘要.
func Sum(data []byte) string {
	h := sha256.Sum256(data)

	return hex.EncodeToString(h[:])
}

// SumReader 流式计算 r 的摘要.
func SumReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("checksum read: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// SumFile 流式计算文件内容的摘要.
func SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("checksum open %s: %w", path, err)
	}
	defer f.Close()

	return SumReader(f)
}

// Writer 包装一个 io.Writer，写入的同时累计摘要.
// 用于分片落盘时避免二次读取.
type Writer struct {
	tee io.Writer
	h   hash.Hash
	n   int64
}

// NewWriter 创建摘要写入器.
func NewWriter(dst io.Writer) *Writer {
	h := sha256.New()

	return &Writer{
		tee: io.MultiWriter(dst, h),
		h:   h,
	}
}

// Write 实现 io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.tee.Write(p)
	w.n += int64(n)

	return n, err
}

// Sum 返回已写入数据的摘要.
func (w *Writer) Sum() string {
	return hex.EncodeToString(w.h.Sum(nil))
}

// Written 返回累计写入的字节数.
func (w *Writer) Written() int64 {
	return w.n
}
