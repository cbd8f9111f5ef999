package fdbscan

import (
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/expr"
	"github.com/shestakovda/fdbscan/fsys"
	"github.com/shestakovda/fdbscan/wire"
)

// Имена типов форматов
const (
	TypeOffload = "skyhook"
	TypeParquet = "parquet"
	TypeIPC     = "ipc"
)

// FileSource - путь к файлу фрагмента в конкретном хранилище
type FileSource struct {
	Path string
	FS   fsys.FileSystem
}

// Fragment - файл фрагмента и гарантия его раздела
type Fragment struct {
	Source    FileSource
	Partition expr.Expr
}

// ScanOptions - параметры сканирования набора
//
// Пустой фильтр означает "без фильтра". Пустая проекция означает все колонки набора.
type ScanOptions struct {
	Filter     expr.Expr
	Projection *arrow.Schema
	Dataset    *arrow.Schema
	UseThreads bool
}

// ScanTask - единица работы сканирования, результат принадлежит вызывающему
type ScanTask interface {
	Execute(ctx context.Context) ([]arrow.Record, error)
}

// ScanTaskIterator - ленивая последовательность задач, nil без ошибки означает конец
type ScanTaskIterator func() (ScanTask, error)

// WriteOptions - параметры записи конкретного формата
type WriteOptions interface {
	TypeName() string
}

// Writer - запись батчей в файл формата
type Writer interface {
	Write(arrow.Record) error
	Close() error
}

// FileFormat - набор возможностей формата файлов фрагментов
type FileFormat interface {
	// Имя типа формата, по нему же проверяется равенство
	TypeName() string
	Equals(FileFormat) bool

	// Может ли формат читать указанный файл
	IsSupported(ctx context.Context, src FileSource) (bool, error)

	// Можно ли делить файл на части при планировании
	Splittable() bool

	// Схема файла
	Inspect(ctx context.Context, src FileSource) (*arrow.Schema, error)

	// Ленивый перебор задач сканирования фрагмента
	ScanFile(ctx context.Context, opts *ScanOptions, frag Fragment) (ScanTaskIterator, error)

	// Запись новых файлов формата
	MakeWriter(w io.Writer, schema *arrow.Schema, opts WriteOptions) (Writer, error)
	DefaultWriteOptions() WriteOptions
}

// Transport - доставка вызова исполнителю, расположенному рядом с объектом
type Transport interface {
	Exec(ctx context.Context, call wire.Call) ([]byte, error)
}

// NewOffload - формат, который отправляет сканирование фрагмента исполнителю хранилища
func NewOffload(cfg OffloadConfig, tr Transport, args ...Option) (*Offload, error) {
	return newOffloadV1(cfg, tr, args)
}

// NewParquet - локальное чтение и запись Parquet
func NewParquet(args ...Option) *Parquet { return newParquetV1(args) }

// NewIPC - локальное чтение и запись Arrow IPC
func NewIPC(args ...Option) *IPC { return newIPCV1(args) }

// NewLocal - локальный формат по типу файла из протокола
func NewLocal(ftype wire.FileType, args ...Option) (FileFormat, error) {
	switch ftype {
	case wire.FileParquet:
		return NewParquet(args...), nil
	case wire.FileIPC:
		return NewIPC(args...), nil
	}
	return nil, ErrConfig.WithDetail("Неизвестный формат файла: %d", int32(ftype))
}

// Ошибки модуля
var (
	ErrConfig      = errx.New("Ошибка конфигурации формата")
	ErrUnsupported = errx.New("Операция не поддерживается форматом")
	ErrInspect     = errx.New("Ошибка получения схемы файла")
	ErrScan        = errx.New("Ошибка локального сканирования файла")
	ErrEvaluate    = errx.New("Ошибка вычисления батча")
	ErrVerify      = errx.New("Ошибка проверки результата сканирования")
	ErrWrite       = errx.New("Ошибка записи файла")
)
