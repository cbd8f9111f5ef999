package fsys

import (
	"context"
	"io"
	"io/fs"
	"path"
	"sync"
	"time"
)

// NewMemory - хранилище в памяти процесса, для тестов и локальной отладки
func NewMemory() *Memory {
	return &Memory{
		files: make(map[string]memEntry, 8),
	}
}

// Memory - потокобезопасное хранилище в памяти
type Memory struct {
	sync.RWMutex
	files map[string]memEntry
}

type memEntry struct {
	data  []byte
	mtime time.Time
}

// Put - запись файла целиком
func (m *Memory) Put(name string, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)

	m.Lock()
	defer m.Unlock()
	m.files[clean(name)] = memEntry{data: buf, mtime: time.Now()}
}

func (m *Memory) get(name string) (memEntry, error) {
	m.RLock()
	defer m.RUnlock()

	ent, ok := m.files[clean(name)]
	if !ok {
		return ent, ErrNotFound.WithDetail("%s", name)
	}
	return ent, nil
}

func (m *Memory) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	ent, err := m.get(name)
	if err != nil {
		return nil, ErrStat.WithReason(err)
	}
	return NewFileInfo(name, int64(len(ent.data)), ent.mtime), nil
}

func (m *Memory) Open(ctx context.Context, name string) (File, error) {
	ent, err := m.get(name)
	if err != nil {
		return nil, ErrOpen.WithReason(err)
	}
	return NewFile(ent.data), nil
}

func (m *Memory) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	return NewWriter(func(data []byte) error {
		m.Put(name, data)
		return nil
	}), nil
}

func (m *Memory) Remove(ctx context.Context, name string) error {
	m.Lock()
	defer m.Unlock()
	delete(m.files, clean(name))
	return nil
}

func clean(name string) string {
	return path.Clean("/" + name)
}
