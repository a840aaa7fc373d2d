package cache

import (
	"bytes"
	"errors"
	"io"
	"os"
	"runtime"

	"github.com/zcash-infra/zartifacts/internal/artifact"
)

// LooksExecutable reports whether path can be returned as a runnable
// artifact. A missing file is a valid "no", not an error. Checks run in
// order and short-circuit on the first failure:
//
//  1. the path resolves to a regular file (symlinks are followed,
//     directories and special files are rejected),
//  2. on platforms with permission bits, the exec bit is set; if it is
//     unset the bit is restored in place when possible, since copy
//     operations commonly drop it,
//  3. the file starts with a known executable header, which catches
//     truncated or placeholder files.
//
// I/O errors other than "not found" are surfaced, not swallowed.
func LooksExecutable(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &artifact.FsError{Op: "stat", Path: path, Err: err}
	}

	if !info.Mode().IsRegular() {
		return false, nil
	}

	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		// Exec bits get lost in copies; restore rather than fail when
		// we own the file.
		if err := os.Chmod(path, info.Mode().Perm()|0o755); err != nil {
			return false, nil
		}
	}

	return sniffExecutableHeader(path)
}

// Known executable magic numbers: ELF, Mach-O (both endiannesses and
// universal binaries), PE, and shebang scripts.
var executableMagics = [][]byte{
	{0x7f, 'E', 'L', 'F'},
	{0xfe, 0xed, 0xfa, 0xce},
	{0xfe, 0xed, 0xfa, 0xcf},
	{0xcf, 0xfa, 0xed, 0xfe},
	{0xce, 0xfa, 0xed, 0xfe},
	{0xca, 0xfe, 0xba, 0xbe},
	{'M', 'Z'},
	{'#', '!'},
}

func sniffExecutableHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &artifact.FsError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	header := make([]byte, 4)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, &artifact.FsError{Op: "read", Path: path, Err: err}
	}

	for _, magic := range executableMagics {
		if n >= len(magic) && bytes.Equal(header[:len(magic)], magic) {
			return true, nil
		}
	}

	return false, nil
}
