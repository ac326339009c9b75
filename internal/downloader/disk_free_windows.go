//go:build windows

package downloader

import "golang.org/x/sys/windows"

// StatDisk returns the usage of the volume holding path.
func StatDisk(path string) (DiskUsage, error) {
	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return DiskUsage{}, err
	}

	var freeBytes, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(ptr, &freeBytes, &totalBytes, &totalFreeBytes); err != nil {
		return DiskUsage{}, err
	}
	return DiskUsage{TotalBytes: int64(totalBytes), FreeBytes: int64(freeBytes)}, nil
}
