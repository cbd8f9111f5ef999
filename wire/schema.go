package wire

import (
	"bytes"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shestakovda/errx"
)

// MarshalSchema - схема в виде IPC-потока без батчей
func MarshalSchema(schema *arrow.Schema) (_ []byte, err error) {
	var buf bytes.Buffer

	if schema == nil {
		return nil, ErrSchema.WithDetail("Пустая схема")
	}

	wrt := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(memory.DefaultAllocator))

	if err = wrt.Close(); err != nil {
		return nil, ErrSchema.WithReason(err)
	}

	return buf.Bytes(), nil
}

// UnmarshalSchema - разбор схемы из IPC-потока без батчей
func UnmarshalSchema(buf []byte) (_ *arrow.Schema, err error) {
	var rdr *ipc.Reader

	// Отлавливаем панику и превращаем в ошибку
	defer func() {
		if rec := recover(); rec != nil {
			err = ErrSchema.WithDebug(errx.Debug{"panic": rec})
		}
	}()

	if rdr, err = ipc.NewReader(bytes.NewReader(buf), ipc.WithAllocator(memory.DefaultAllocator)); err != nil {
		return nil, ErrSchema.WithReason(err)
	}
	defer rdr.Release()

	if rdr.Next() {
		return nil, ErrSchema.WithDetail("Неожиданный батч в потоке схемы")
	}

	if err = rdr.Err(); err != nil {
		return nil, ErrSchema.WithReason(err)
	}

	return rdr.Schema(), nil
}
