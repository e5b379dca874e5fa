//go:build unix

package include

import (
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

func readable(path string) error {
	if err := unix.Access(path, unix.R_OK); err != nil {
		return &fs.PathError{Op: "access", Path: path, Err: err}
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s: is a directory", path)
	}
	return nil
}
