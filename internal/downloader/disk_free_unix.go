//go:build !windows

package downloader

import "syscall"

// StatDisk returns the usage of the filesystem holding path.
func StatDisk(path string) (DiskUsage, error) {
	var fs syscall.Statfs_t
	if err := syscall.Statfs(path, &fs); err != nil {
		return DiskUsage{}, err
	}
	return DiskUsage{
		TotalBytes: int64(fs.Blocks) * int64(fs.Bsize),
		FreeBytes:  int64(fs.Bavail) * int64(fs.Bsize),
	}, nil
}
