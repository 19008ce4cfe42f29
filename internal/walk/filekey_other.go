//go:build !unix

package stride

import (
	"fmt"
	"os"
)

// FileKey identifies a file by device and inode. It is never populated on this
// platform; cycle checks use SameFile instead.
type FileKey struct {
	Dev uint64
	Ino uint64
}

func (k FileKey) String() string {
	return fmt.Sprintf("%d:%d", k.Dev, k.Ino)
}

func fileKey(os.FileInfo) (FileKey, bool) {
	return FileKey{}, false
}
