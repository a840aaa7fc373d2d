package cache

import (
	"io"
	"os"
	"path/filepath"

	"github.com/zcash-infra/zartifacts/internal/artifact"
)

// PublishExecutable copies a validated build output into the cache at
// dst. The copy lands in a temporary file in the destination directory
// and is renamed into place, so no observer ever sees a partially
// written file at the final path; an existing dst stays intact until
// the rename. The published copy always carries the exec bit.
func PublishExecutable(src, dst string) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &artifact.FsError{Op: "mkdir", Path: dir, Err: err}
	}

	in, err := os.Open(src)
	if err != nil {
		return &artifact.FsError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, ".publish-*")
	if err != nil {
		return &artifact.FsError{Op: "create temp in", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &artifact.FsError{Op: "copy to", Path: tmpPath, Err: err}
	}

	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &artifact.FsError{Op: "chmod", Path: tmpPath, Err: err}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &artifact.FsError{Op: "close", Path: tmpPath, Err: err}
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return &artifact.FsError{Op: "rename to", Path: dst, Err: err}
	}

	return nil
}

// writeFileAtomic writes data to path via a sibling temp file and
// rename. Either the whole new content lands or the previous file
// remains untouched.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".write-*")
	if err != nil {
		return &artifact.FsError{Op: "create temp in", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &artifact.FsError{Op: "write", Path: tmpPath, Err: err}
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &artifact.FsError{Op: "chmod", Path: tmpPath, Err: err}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &artifact.FsError{Op: "close", Path: tmpPath, Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &artifact.FsError{Op: "rename to", Path: path, Err: err}
	}

	return nil
}
