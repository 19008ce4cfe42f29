//go:build unix

package stride

import (
	"fmt"
	"os"
	"syscall"
)

// FileKey identifies a file by device and inode.
type FileKey struct {
	Dev uint64
	Ino uint64
}

func (k FileKey) String() string {
	return fmt.Sprintf("%d:%d", k.Dev, k.Ino)
}

func fileKey(info os.FileInfo) (FileKey, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok || st == nil {
		return FileKey{}, false
	}
	return FileKey{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}, true
}
