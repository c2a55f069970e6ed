// Package stream presents a uniform seekable byte stream over either a
// loose file on disk or a compressed member inside a zip archive.
//
// A path of the form "archive.zip:/member" addresses the member inside the
// archive; anything else is treated as a plain file path. Zip members are
// inflated into memory on open, since the tape files are small and the
// decoder needs free seeking over them.
package stream

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrBadHandle = errors.New("operation on bad stream handle")

// SplitArchivePath splits "archive.zip:/member" into its archive and
// member parts. ok is false when path is a plain file path.
func SplitArchivePath(path string) (archive, member string, ok bool) {
	idx := strings.Index(path, ":/")
	if idx < 0 {
		return "", "", false
	}
	if !strings.HasSuffix(strings.ToLower(path[:idx]), ".zip") {
		return "", "", false
	}
	if idx+2 >= len(path) {
		return "", "", false
	}
	return path[:idx], path[idx+2:], true
}

// Reader is a scoped read handle. Acquire with Open, release with Close.
// After EOF or any failed operation Good reports false and the error is
// returned again by subsequent operations, except that a Seek clears a
// plain EOF.
type Reader struct {
	name string

	file *os.File      // loose file, nil for archive members
	mem  *bytes.Reader // inflated archive member, nil for loose files

	size int64
	err  error
}

// Open opens the named path, which is either a plain file or an
// "archive.zip:/member" reference.
func Open(path string) (*Reader, error) {
	if archive, member, ok := SplitArchivePath(path); ok {
		return openArchiveMember(path, archive, member)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("probing %s: %w", path, err)
	}
	return &Reader{name: path, file: f, size: info.Size()}, nil
}

func openArchiveMember(path, archive, member string) (*Reader, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", archive, err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.Name != member {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("opening member %s: %w", path, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("inflating member %s: %w", path, err)
		}
		return &Reader{name: path, mem: bytes.NewReader(data), size: int64(len(data))}, nil
	}
	return nil, fmt.Errorf("opening member %s: %w", path, os.ErrNotExist)
}

// Name returns the path the reader was opened with.
func (r *Reader) Name() string {
	return r.name
}

// Size returns the total size of the underlying stream in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// Good reports whether the handle is still usable. It turns false at EOF
// or after any failed operation.
func (r *Reader) Good() bool {
	return r.err == nil
}

// Err returns the sticky error, if any.
func (r *Reader) Err() error {
	return r.err
}

// Read fills p from the current position.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadHandle, r.err)
	}
	var n int
	var err error
	if r.file != nil {
		n, err = r.file.Read(p)
	} else {
		n, err = r.mem.Read(p)
	}
	if err != nil {
		r.err = err
	}
	return n, err
}

// Seek repositions the stream per the usual io.Seeker whence values.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.err != nil && r.err != io.EOF {
		return 0, fmt.Errorf("%w: %w", ErrBadHandle, r.err)
	}
	// A plain EOF is recoverable by seeking, as with a rewound tape.
	r.err = nil

	var pos int64
	var err error
	if r.file != nil {
		pos, err = r.file.Seek(offset, whence)
	} else {
		pos, err = r.mem.Seek(offset, whence)
	}
	if err != nil {
		r.err = err
	}
	return pos, err
}

// Tell returns the current read position.
func (r *Reader) Tell() (int64, error) {
	return r.Seek(0, io.SeekCurrent)
}

// Clone returns an independent handle over the same stream positioned at
// this handle's current read position.
func (r *Reader) Clone() (*Reader, error) {
	pos, err := r.Tell()
	if err != nil {
		return nil, err
	}
	dup, err := Open(r.name)
	if err != nil {
		return nil, err
	}
	if _, err := dup.Seek(pos, io.SeekStart); err != nil {
		dup.Close()
		return nil, err
	}
	return dup, nil
}

// Close releases the handle. Safe to call on archive-member readers,
// whose backing store is in memory.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
