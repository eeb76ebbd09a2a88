// Package local 实现三级目录的本地磁盘存储：
// temp/<upload_id>/chunk_<n> 暂存分片，active/yyyy/mm 存放在用文件，
// deleted/yyyy/mm 为回收站.数据库中的 file_path 均为相对存储根的路径.
package local

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/yeisme/filevault/pkg/checksum"
	"github.com/yeisme/filevault/pkg/configs"
)

const dirPerm = 0o750

// ErrChecksumMismatch 分片内容与声明的摘要不符.
var ErrChecksumMismatch = errors.New("chunk checksum mismatch")

// Store 本地磁盘存储.
type Store struct {
	root    string
	active  string
	deleted string
	temp    string
	backup  string
}

// New 创建磁盘存储并确保目录树存在.
func New(cfg *configs.StorageConfig) (*Store, error) {
	s := &Store{
		root:    cfg.Root,
		active:  cfg.ActivePath(),
		deleted: cfg.DeletedPath(),
		temp:    cfg.TempPath(),
		backup:  cfg.BackupPath(),
	}

	for _, dir := range []string{s.root, s.active, s.deleted, s.temp, s.backup} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}

	return s, nil
}

// Root 返回存储根目录.
func (s *Store) Root() string {
	return s.root
}

// Abs 把相对存储根的路径解析为绝对路径.
func (s *Store) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Partition 返回 t 对应的 yyyy/mm 分区段.
func Partition(t time.Time) string {
	return t.UTC().Format("2006/01")
}

// ActiveRel 返回在用文件的相对路径: active/yyyy/mm/<name>.
func (s *Store) ActiveRel(t time.Time, name string) string {
	return "active/" + Partition(t) + "/" + name
}

// DeletedRel 返回回收站文件的相对路径: deleted/yyyy/mm/<name>.
func (s *Store) DeletedRel(t time.Time, name string) string {
	return "deleted/" + Partition(t) + "/" + name
}

// UploadDir 返回上传会话的分片暂存目录.
func (s *Store) UploadDir(uploadID string) string {
	return filepath.Join(s.temp, uploadID)
}

// EnsureUploadDir 创建上传会话的暂存目录，已存在时无副作用.
func (s *Store) EnsureUploadDir(uploadID string) error {
	if err := os.MkdirAll(s.UploadDir(uploadID), dirPerm); err != nil {
		return fmt.Errorf("create upload dir %s: %w", uploadID, err)
	}

	return nil
}

// ChunkPath 返回分片文件路径，分片编号从 0 开始.
func (s *Store) ChunkPath(uploadID string, n int) string {
	return filepath.Join(s.UploadDir(uploadID), fmt.Sprintf("chunk_%d", n))
}

// WriteChunk 把 r 落盘为分片文件，返回写入字节数和 SHA-256 摘要.
// 先写临时文件，declared 非空时先比对摘要再重命名：不符返回
// ErrChecksumMismatch 并丢弃临时文件，该编号上已提交的旧分片原样保留.
func (s *Store) WriteChunk(uploadID string, n int, declared string, r io.Reader) (int64, string, error) {
	dir := s.UploadDir(uploadID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return 0, "", fmt.Errorf("create upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "chunk-*.part")
	if err != nil {
		return 0, "", fmt.Errorf("create chunk temp: %w", err)
	}

	cw := checksum.NewWriter(tmp)

	if _, err := io.Copy(cw, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return 0, "", fmt.Errorf("write chunk: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return 0, "", fmt.Errorf("close chunk: %w", err)
	}

	if declared != "" && cw.Sum() != declared {
		os.Remove(tmp.Name())

		return 0, "", fmt.Errorf("chunk %d: %w", n, ErrChecksumMismatch)
	}

	dst := s.ChunkPath(uploadID, n)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())

		return 0, "", fmt.Errorf("finalize chunk: %w", err)
	}

	return cw.Written(), cw.Sum(), nil
}

// Assemble 按编号顺序拼接 total 个分片到 dstRel，返回文件大小和 SHA-256 摘要.
// 任一分片缺失时报错，不产生半成品文件.
func (s *Store) Assemble(uploadID string, total int, dstRel string) (int64, string, error) {
	dst := s.Abs(dstRel)
	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return 0, "", fmt.Errorf("create dest dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".assemble-*")
	if err != nil {
		return 0, "", fmt.Errorf("create assemble temp: %w", err)
	}

	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	cw := checksum.NewWriter(tmp)

	for n := range total {
		src, err := os.Open(s.ChunkPath(uploadID, n))
		if err != nil {
			cleanup()

			return 0, "", fmt.Errorf("open chunk %d: %w", n, err)
		}

		_, err = io.Copy(cw, src)

		src.Close()

		if err != nil {
			cleanup()

			return 0, "", fmt.Errorf("append chunk %d: %w", n, err)
		}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return 0, "", fmt.Errorf("close assembled file: %w", err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())

		return 0, "", fmt.Errorf("finalize assembled file: %w", err)
	}

	return cw.Written(), cw.Sum(), nil
}

// Move 在存储树内移动文件（软删除/恢复时 active <-> deleted）.
func (s *Store) Move(fromRel, toRel string) error {
	from, to := s.Abs(fromRel), s.Abs(toRel)

	if err := os.MkdirAll(filepath.Dir(to), dirPerm); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("move %s -> %s: %w", fromRel, toRel, err)
	}

	return nil
}

// Remove 删除单个文件，文件不存在不算错误.
func (s *Store) Remove(rel string) error {
	if err := os.Remove(s.Abs(rel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", rel, err)
	}

	return nil
}

// RemoveUpload 删除上传会话的整个暂存目录.
func (s *Store) RemoveUpload(uploadID string) error {
	if err := os.RemoveAll(s.UploadDir(uploadID)); err != nil {
		return fmt.Errorf("remove upload dir %s: %w", uploadID, err)
	}

	return nil
}

// ListUploadDirs 列出 temp 下现存的上传会话目录名.
func (s *Store) ListUploadDirs() ([]string, error) {
	entries, err := os.ReadDir(s.temp)
	if err != nil {
		return nil, fmt.Errorf("read temp dir: %w", err)
	}

	ids := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}

	return ids, nil
}

// SumFile 计算相对路径对应文件的 SHA-256 摘要.
func (s *Store) SumFile(rel string) (string, error) {
	return checksum.SumFile(s.Abs(rel))
}

// Exists 判断相对路径对应的文件是否存在.
func (s *Store) Exists(rel string) bool {
	info, err := os.Stat(s.Abs(rel))

	return err == nil && !info.IsDir()
}
