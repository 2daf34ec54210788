//go:build !windows

package ops

import (
	stderrors "errors"
	"os"
	"syscall"
)

func openNoFollowPlatform(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(fd), path), nil
}

func isSymlinkLoop(err error) bool {
	return stderrors.Is(err, syscall.ELOOP)
}
