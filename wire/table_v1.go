package wire

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/golang/glog"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/panjf2000/ants/v2"
	"github.com/shestakovda/errx"
)

var (
	decodePool     *ants.Pool
	decodePoolErr  error
	decodePoolOnce sync.Once
)

func getDecodePool() (*ants.Pool, error) {
	decodePoolOnce.Do(func() {
		decodePool, decodePoolErr = ants.NewPool(runtime.GOMAXPROCS(0), ants.WithPanicHandler(func(rec interface{}) {
			glog.Errorf("%+v", ErrDeserializeTable.WithDebug(errx.Debug{"panic": rec}))
		}))
	})
	return decodePool, decodePoolErr
}

// EncodeTable - сериализация таблицы в поток Arrow IPC со сжатием тела батчей
//
// При aggressive используется ZSTD, иначе LZ4_FRAME.
func EncodeTable(tbl Table, aggressive bool) (_ []byte, err error) {
	var buf bytes.Buffer

	// Отлавливаем панику и превращаем в ошибку
	defer func() {
		if rec := recover(); rec != nil {
			err = ErrSerializeTable.WithDebug(errx.Debug{"panic": rec})
		}
	}()

	if tbl.Schema == nil {
		return nil, ErrSerializeTable.WithDetail("Отсутствует схема таблицы")
	}

	opts := []ipc.Option{
		ipc.WithSchema(tbl.Schema),
		ipc.WithAllocator(memory.DefaultAllocator),
	}

	if aggressive {
		opts = append(opts, ipc.WithZstd())
	} else {
		opts = append(opts, ipc.WithLZ4())
	}

	wrt := ipc.NewWriter(&buf, opts...)

	for i := range tbl.Batches {
		if !tbl.Batches[i].Schema().Equal(tbl.Schema) {
			wrt.Close()
			return nil, ErrSerializeTable.WithDetail("Схема батча %d расходится со схемой таблицы", i)
		}

		if err = wrt.Write(tbl.Batches[i]); err != nil {
			wrt.Close()
			return nil, ErrSerializeTable.WithReason(err)
		}
	}

	if err = wrt.Close(); err != nil {
		return nil, ErrSerializeTable.WithReason(err)
	}

	return buf.Bytes(), nil
}

// DecodeTable - разбор таблицы из потока Arrow IPC
//
// С useThreads батчи разжимаются параллельно, порядок батчей сохраняется.
func DecodeTable(buf []byte, useThreads bool) (tbl Table, err error) {
	var list []frame

	// Отлавливаем панику и превращаем в ошибку
	defer func() {
		if rec := recover(); rec != nil {
			tbl.Release()
			tbl = Table{}
			err = ErrDeserializeTable.WithDebug(errx.Debug{"panic": rec})
		}
	}()

	if list, err = splitStream(buf); err != nil {
		return tbl, ErrDeserializeTable.WithReason(err)
	}

	if useThreads && countBatches(list) > 1 {
		err = decodeParallel(list, &tbl)
	} else {
		err = decodeStream(buf, &tbl)
	}

	if err != nil {
		tbl.Release()
		return Table{}, ErrDeserializeTable.WithReason(err)
	}

	for i := range tbl.Batches {
		if !tbl.Batches[i].Schema().Equal(tbl.Schema) {
			tbl.Release()
			return Table{}, ErrDeserializeTable.WithDetail("Схема батча %d расходится со схемой таблицы", i)
		}
	}

	return tbl, nil
}

// Виды сообщений потока, значения из MessageHeader формата Arrow
const (
	msgSchema     byte = 1
	msgDictionary byte = 2
	msgRecord     byte = 3
)

const streamMarker uint32 = 0xFFFFFFFF

var streamEOS = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}

// Одно сообщение потока вместе с маркером, длиной и телом
type frame struct {
	kind byte
	data []byte
}

// Нарезка потока на сообщения, все длины проверяются до чтения потока библиотекой
func splitStream(buf []byte) ([]frame, error) {
	list := make([]frame, 0, 8)

	for pos := 0; ; {
		if len(buf)-pos < 8 {
			return nil, ErrDeserializeTable.WithDetail("Поток оборван в позиции %d", pos)
		}

		if binary.LittleEndian.Uint32(buf[pos:]) != streamMarker {
			return nil, ErrDeserializeTable.WithDetail("Нет маркера сообщения в позиции %d", pos)
		}

		size := int64(int32(binary.LittleEndian.Uint32(buf[pos+4:])))
		rest := int64(len(buf) - pos - 8)

		if size == 0 {
			if rest != 0 {
				return nil, ErrDeserializeTable.WithDetail("Лишние %d байт после конца потока", rest)
			}
			break
		}

		if size < 0 || size > rest {
			return nil, ErrDeserializeTable.WithDetail("Неверная длина заголовка %d в позиции %d", size, pos)
		}

		kind, body, err := messageInfo(buf[pos+8 : pos+8+int(size)])
		if err != nil {
			return nil, err
		}

		if body < 0 || body > rest-size {
			return nil, ErrDeserializeTable.WithDetail("Неверная длина тела %d в позиции %d", body, pos)
		}

		switch {
		case len(list) == 0 && kind != msgSchema:
			return nil, ErrDeserializeTable.WithDetail("Поток начинается не со схемы")
		case len(list) > 0 && kind == msgSchema:
			return nil, ErrDeserializeTable.WithDetail("Повторная схема в позиции %d", pos)
		case kind != msgSchema && kind != msgDictionary && kind != msgRecord:
			return nil, ErrDeserializeTable.WithDetail("Неподдерживаемое сообщение %d в позиции %d", kind, pos)
		}

		end := pos + 8 + int(size) + int(body)
		list = append(list, frame{kind: kind, data: buf[pos:end]})
		pos = end
	}

	if len(list) == 0 {
		return nil, ErrDeserializeTable.WithDetail("Поток без схемы")
	}

	return list, nil
}

// Вид и длина тела из заголовка Message: поля header_type и bodyLength
func messageInfo(meta []byte) (kind byte, body int64, err error) {
	if len(meta) < flatbuffers.SizeUOffsetT {
		return 0, 0, ErrDeserializeTable.WithDetail("Слишком короткий заголовок: %d", len(meta))
	}

	root := flatbuffers.GetUOffsetT(meta)

	if int(root) >= len(meta) {
		return 0, 0, ErrDeserializeTable.WithDetail("Корневое смещение заголовка за пределами буфера")
	}

	tab := flatbuffers.Table{Bytes: meta, Pos: root}

	if o := flatbuffers.UOffsetT(tab.Offset(6)); o != 0 {
		kind = tab.GetByte(o + tab.Pos)
	}

	if o := flatbuffers.UOffsetT(tab.Offset(10)); o != 0 {
		body = tab.GetInt64(o + tab.Pos)
	}

	return kind, body, nil
}

func countBatches(list []frame) (n int) {
	for i := range list {
		if list[i].kind == msgRecord {
			n++
		}
	}
	return n
}

func decodeStream(buf []byte, tbl *Table) error {
	rdr, err := ipc.NewReader(bytes.NewReader(buf), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return err
	}
	defer rdr.Release()

	tbl.Schema = rdr.Schema()

	for rdr.Next() {
		rec := rdr.Record()
		rec.Retain()
		tbl.Batches = append(tbl.Batches, rec)
	}

	return rdr.Err()
}

// Каждый батч разбирается своим читателем из схемы, словарей до него и самого батча
func decodeParallel(list []frame, tbl *Table) (err error) {
	var pool *ants.Pool
	var schema *ipc.Reader

	if pool, err = getDecodePool(); err != nil {
		return err
	}

	if schema, err = ipc.NewReader(bytes.NewReader(join(list[0].data)), ipc.WithAllocator(memory.DefaultAllocator)); err != nil {
		return err
	}
	tbl.Schema = schema.Schema()
	schema.Release()

	prefix := make([]byte, 0, len(list[0].data))
	parts := make([][]byte, 0, len(list))

	for i := range list {
		if list[i].kind == msgRecord {
			parts = append(parts, join(prefix, list[i].data))
		} else {
			prefix = append(prefix, list[i].data...)
		}
	}

	wg := new(sync.WaitGroup)
	errs := make([]error, len(parts))
	tbl.Batches = make([]arrow.Record, len(parts))

	for i := range parts {
		i := i
		wg.Add(1)

		task := func() {
			defer wg.Done()

			// Отлавливаем панику и превращаем в ошибку
			defer func() {
				if rec := recover(); rec != nil {
					errs[i] = ErrDeserializeTable.WithDebug(errx.Debug{"panic": rec, "batch": i})
				}
			}()

			tbl.Batches[i], errs[i] = decodeBatch(parts[i])
		}

		if exp := pool.Submit(task); exp != nil {
			wg.Done()
			errs[i] = exp
		}
	}

	wg.Wait()

	for i := range errs {
		if errs[i] != nil {
			return errs[i]
		}
	}

	return nil
}

func decodeBatch(buf []byte) (arrow.Record, error) {
	rdr, err := ipc.NewReader(bytes.NewReader(buf), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, err
	}
	defer rdr.Release()

	if !rdr.Next() {
		if err = rdr.Err(); err != nil {
			return nil, err
		}
		return nil, ErrDeserializeTable.WithDetail("В сообщении нет батча")
	}

	rec := rdr.Record()
	rec.Retain()
	return rec, nil
}

// Отдельный поток из готовых сообщений с маркером конца
func join(parts ...[]byte) []byte {
	size := len(streamEOS)
	for i := range parts {
		size += len(parts[i])
	}

	buf := make([]byte, 0, size)
	for i := range parts {
		buf = append(buf, parts[i]...)
	}
	return append(buf, streamEOS...)
}
