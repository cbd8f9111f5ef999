package fsys

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// NewLocal - файлы в каталоге локальной файловой системы
func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Local - хранилище поверх каталога, пути не выходят за его пределы
type Local struct {
	root string
}

func (l *Local) path(name string) string {
	return filepath.Join(l.root, filepath.FromSlash(clean(name)))
}

func (l *Local) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	info, err := os.Stat(l.path(name))
	if err != nil {
		return nil, ErrStat.WithReason(local(err, name))
	}
	return info, nil
}

func (l *Local) Open(ctx context.Context, name string) (File, error) {
	file, err := os.Open(l.path(name))
	if err != nil {
		return nil, ErrOpen.WithReason(local(err, name))
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ErrOpen.WithReason(err)
	}

	return &osFile{File: file, size: info.Size()}, nil
}

func (l *Local) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	full := l.path(name)

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, ErrCreate.WithReason(err)
	}

	file, err := os.Create(full)
	if err != nil {
		return nil, ErrCreate.WithReason(err)
	}

	return file, nil
}

func (l *Local) Remove(ctx context.Context, name string) error {
	if err := os.Remove(l.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ErrRemove.WithReason(err)
	}
	return nil
}

type osFile struct {
	*os.File
	size int64
}

func (f *osFile) Size() int64 { return f.size }

func local(err error, name string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound.WithReason(err).WithDetail("%s", name)
	}
	return err
}
