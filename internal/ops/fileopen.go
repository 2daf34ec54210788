package ops

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hpungsan/slate/internal/errors"
)

// openNoFollow opens path without following a symlink in its final
// component. Directory components are covered by ValidatePath, which only
// admits files directly inside an allowed directory.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := openNoFollowPlatform(path, flag, perm)
	if err == nil {
		return f, nil
	}
	readOnly := flag&(os.O_WRONLY|os.O_RDWR) == 0
	switch {
	case isSymlinkLoop(err):
		return nil, errors.NewInvalidRequest("refusing to follow symlink: " + filepath.Base(path))
	case readOnly && stderrors.Is(err, fs.ErrNotExist):
		return nil, errors.NewFileNotFound(path)
	}
	return nil, errors.NewInternal(fmt.Errorf("open %s: %w", filepath.Base(path), err))
}
