// Package fsutil provides the recursive copy and size primitives used by the
// profile store and the backup engine. Copies never delete their source; the
// callers are responsible for removing originals only after a copy succeeds.
package fsutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/ccprof/pkg/errors"
)

// CopyFile byte-copies a single file from src to dst, preserving the source
// file mode. The destination's parent directory must already exist.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", src)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "source is a directory, not a file: %s", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to copy %s to %s", src, dst)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to flush %s", dst)
	}
	return nil
}

// CopyTree recursively copies the directory at src to dst, creating dst and
// any intermediate directories. Symlinks inside the tree are copied as links,
// never followed.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "source directory does not exist: %s", src)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "source is not a directory: %s", src)
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create destination directory: %s", dst)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read source directory: %s", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.Type()&os.ModeSymlink != 0 {
			target, err := os.Readlink(srcPath)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to read link %s", srcPath)
			}
			if err := os.Symlink(target, dstPath); err != nil {
				return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to copy link %s", srcPath)
			}
			continue
		}

		if entry.IsDir() {
			if err := CopyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		if err := CopyFile(srcPath, dstPath); err != nil {
			return err
		}
	}

	return nil
}

// TreeSize returns the total size in bytes of all regular files under path.
// Symlinks are not followed. A single regular file reports its own size.
func TreeSize(path string) (int64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", path)
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var total int64
	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileAccess, "failed to read directory %s", path)
	}
	for _, entry := range entries {
		entryPath := filepath.Join(path, entry.Name())
		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}
		if entry.IsDir() {
			size, err := TreeSize(entryPath)
			if err != nil {
				return 0, err
			}
			total += size
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return 0, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", entryPath)
		}
		total += info.Size()
	}
	return total, nil
}
