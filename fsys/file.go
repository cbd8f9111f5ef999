package fsys

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"time"
)

// NewFileInfo - описание файла по пути, размеру и времени изменения
func NewFileInfo(name string, size int64, mtime time.Time) fs.FileInfo {
	return &fileInfo{name: path.Base(name), size: size, mtime: mtime}
}

// NewFile - файл поверх содержимого в памяти
func NewFile(data []byte) File {
	return &memFile{Reader: bytes.NewReader(data)}
}

type fileInfo struct {
	name  string
	size  int64
	mtime time.Time
}

func (f *fileInfo) Name() string       { return f.name }
func (f *fileInfo) Size() int64        { return f.size }
func (f *fileInfo) Mode() fs.FileMode  { return fs.FileMode(0644) }
func (f *fileInfo) ModTime() time.Time { return f.mtime }
func (f *fileInfo) IsDir() bool        { return false }
func (f *fileInfo) Sys() interface{}   { return nil }

// NewWriter - запись в буфер, содержимое уходит в commit при первом закрытии
func NewWriter(commit func([]byte) error) io.WriteCloser {
	return &bufWriter{commit: commit}
}

type memFile struct {
	*bytes.Reader
}

func (f *memFile) Close() error { return nil }

// Запись копится в буфере и отдается в commit при закрытии
type bufWriter struct {
	bytes.Buffer
	done   bool
	commit func([]byte) error
}

func (w *bufWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	return w.commit(w.Bytes())
}
