package downloader

import "os"

// DiskUsage describes the filesystem holding a download directory.
type DiskUsage struct {
	TotalBytes int64
	FreeBytes  int64
}

// UsedBytes returns the bytes not available to the process.
func (u DiskUsage) UsedBytes() int64 {
	return u.TotalBytes - u.FreeBytes
}

// UsedPct returns UsedBytes as a percentage of TotalBytes.
func (u DiskUsage) UsedPct() float64 {
	if u.TotalBytes <= 0 {
		return 0
	}
	return float64(u.UsedBytes()) / float64(u.TotalBytes) * 100
}

// Below reports whether free space is known and under minFree.
func (u DiskUsage) Below(minFree int64) bool {
	return minFree > 0 && u.TotalBytes > 0 && u.FreeBytes < minFree
}

// freeDiskSpace returns the bytes available to the process at path, or 0 when
// it cannot be determined.
func freeDiskSpace(path string) int64 {
	stat, err := os.Stat(path)
	if err != nil || !stat.IsDir() {
		return 0
	}
	u, err := StatDisk(path)
	if err != nil {
		return 0
	}
	return u.FreeBytes
}
