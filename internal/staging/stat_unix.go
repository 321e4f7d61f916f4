//go:build unix

package staging

import (
	"io/fs"
	"syscall"
	"time"
)

// changeTime returns the inode change time when info comes from a real stat call.
// Mock filesystems don't provide one.
func changeTime(info fs.FileInfo) (time.Time, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec), true
}
