package fsys

import (
	"context"
	"io"
	"io/fs"

	"github.com/shestakovda/errx"
)

// File - открытый на чтение файл с произвольным доступом
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer

	Size() int64
}

// FileSystem - хранилище файлов фрагментов
type FileSystem interface {
	// Описание файла без чтения содержимого
	Stat(ctx context.Context, name string) (fs.FileInfo, error)

	// Открытие файла на чтение
	Open(ctx context.Context, name string) (File, error)

	// Создание или перезапись файла, содержимое фиксируется при Close
	Create(ctx context.Context, name string) (io.WriteCloser, error)

	// Удаление файла. Не расстраивается, если его нет
	Remove(ctx context.Context, name string) error
}

// Ошибки модуля
var (
	ErrNotFound = errx.New("Файл не найден")
	ErrStat     = errx.New("Ошибка получения описания файла")
	ErrOpen     = errx.New("Ошибка открытия файла")
	ErrCreate   = errx.New("Ошибка создания файла")
	ErrRemove   = errx.New("Ошибка удаления файла")
	ErrConnect  = errx.New("Ошибка подключения к хранилищу")
)
