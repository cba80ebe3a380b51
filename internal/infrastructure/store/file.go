package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// File stores each key in its own file under a directory. Writes go to a
// temp file that is renamed into place, so readers never see a partial value.
type File struct {
	dir      string
	compress bool
}

// NewFile creates the directory if needed
func NewFile(dir string, compress bool) (*File, error) {
	if dir == "" {
		return nil, errors.New("file store: path required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: mkdir: %w", err)
	}
	return &File{dir: dir, compress: compress}, nil
}

// Get reads the value for key. Compressed values are detected by the gzip
// magic bytes, so toggling compression keeps old files readable.
func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read %s: %w", key, err)
	}

	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("file store: gzip %s: %w", key, err)
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("file store: gzip %s: %w", key, err)
		}
	}
	return data, nil
}

// Set atomically replaces the value for key
func (f *File) Set(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return writeFailure(key, err)
	}
	path, err := f.path(key)
	if err != nil {
		return writeFailure(key, err)
	}

	if f.compress {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return writeFailure(key, err)
		}
		if err := zw.Close(); err != nil {
			return writeFailure(key, err)
		}
		data = buf.Bytes()
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+".*.tmp")
	if err != nil {
		return writeFailure(key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return writeFailure(key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return writeFailure(key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return writeFailure(key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return writeFailure(key, err)
	}
	return nil
}

// Close is a no-op
func (f *File) Close() error {
	return nil
}

func (f *File) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("file store: invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}
