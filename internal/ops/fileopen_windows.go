//go:build windows

package ops

import "os"

// Windows has no O_NOFOLLOW; ValidatePath has already rejected symlinks.
func openNoFollowPlatform(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

func isSymlinkLoop(error) bool { return false }
