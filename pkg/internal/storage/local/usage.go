package local

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DiskUsage 存储根所在文件系统的容量信息.
type DiskUsage struct {
	TotalBytes uint64  `json:"total_bytes"`
	UsedBytes  uint64  `json:"used_bytes"`
	FreeBytes  uint64  `json:"free_bytes"`
	UsedRatio  float64 `json:"used_ratio"`
}

// Usage 返回存储根所在文件系统的使用情况.
func (s *Store) Usage() (*DiskUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(s.root, &st); err != nil {
		return nil, fmt.Errorf("statfs %s: %w", s.root, err)
	}

	bsize := uint64(st.Bsize)
	total := st.Blocks * bsize
	free := st.Bavail * bsize
	used := total - free

	u := &DiskUsage{
		TotalBytes: total,
		UsedBytes:  used,
		FreeBytes:  free,
	}
	if total > 0 {
		u.UsedRatio = float64(used) / float64(total)
	}

	return u, nil
}
