package wire

import (
	"context"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/expr"
)

// Методы исполнителя
const (
	MethodScan    = "scan_op"
	MethodInspect = "inspect_op"
)

// FileType - формат файла фрагмента на стороне хранилища
type FileType int32

// Поддерживаемые форматы, значения фиксированы в протоколе
const (
	FileParquet FileType = 0
	FileIPC     FileType = 1
)

func (t FileType) String() string {
	switch t {
	case FileParquet:
		return "parquet"
	case FileIPC:
		return "ipc"
	}
	return "unknown"
}

// Valid - признак известного формата
func (t FileType) Valid() bool { return t == FileParquet || t == FileIPC }

// ParseFileType - формат по имени из конфигурации
func ParseFileType(name string) (FileType, error) {
	switch strings.ToLower(name) {
	case "parquet", "pq":
		return FileParquet, nil
	case "ipc", "arrow", "feather":
		return FileIPC, nil
	}
	return 0, ErrFileType.WithDetail("Неизвестный формат файла: %s", name)
}

// ScanRequest - запрос сканирования одного фрагмента
//
// Собирается перед отправкой и живет только до сериализации.
type ScanRequest struct {
	Filter          expr.Expr
	Partition       expr.Expr
	ProjectedSchema *arrow.Schema
	DatasetSchema   *arrow.Schema
	FileSize        int64
	FileType        FileType
}

// Table - результат сканирования: схема и упорядоченные батчи
type Table struct {
	Schema  *arrow.Schema
	Batches []arrow.Record
}

// NumRows - общее число строк
func (t Table) NumRows() (n int64) {
	for i := range t.Batches {
		n += t.Batches[i].NumRows()
	}
	return n
}

// Release - освобождение всех батчей
func (t Table) Release() {
	for i := range t.Batches {
		if t.Batches[i] != nil {
			t.Batches[i].Release()
		}
	}
}

// Call - вызов исполнителя, расположенного рядом с объектом
type Call struct {
	Class   string
	Method  string
	Object  string
	User    string
	Pool    string
	Cluster string
	Body    []byte
}

// Handler - обработчик вызова, всегда возвращает конверт ответа
type Handler func(ctx context.Context, call Call) []byte

// Сообщения стабильных ошибок, известные вызывающей стороне
const (
	MsgScanFragment       = "failed to scan file fragment"
	MsgDeserializeRequest = "failed to deserialize scan request"
	MsgSerializeTable     = "failed to serialize result table"
)

// Стабильные ошибки протокола
var (
	ErrScanFragment       = errx.New(MsgScanFragment)
	ErrDeserializeRequest = errx.New(MsgDeserializeRequest)
	ErrSerializeTable     = errx.New(MsgSerializeTable)
)

// Ошибки модуля
var (
	ErrFileType         = errx.New("Ошибка определения формата файла")
	ErrSerializeRequest = errx.New("Ошибка сериализации запроса сканирования")
	ErrDeserializeTable = errx.New("Ошибка десериализации таблицы результата")
	ErrSchema           = errx.New("Ошибка сериализации схемы")
	ErrReply            = errx.New("Ошибка разбора ответа исполнителя")
	ErrCall             = errx.New("Ошибка разбора вызова исполнителя")
)
