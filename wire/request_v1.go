package wire

import (
	"encoding/binary"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/expr"
)

// EncodeScanRequest - сериализация запроса сканирования
//
// Формат little-endian: int32 формат, int64 размер файла,
// затем четыре блока (фильтр, гарантия раздела, схема проекции, схема набора),
// каждый как int32 длина и сами байты.
func EncodeScanRequest(req ScanRequest) (_ []byte, err error) {
	var blocks [4][]byte

	if err = req.validate(); err != nil {
		return nil, ErrSerializeRequest.WithReason(err)
	}

	if blocks[0], err = expr.Marshal(orTrue(req.Filter)); err != nil {
		return nil, ErrSerializeRequest.WithReason(err)
	}

	if blocks[1], err = expr.Marshal(orTrue(req.Partition)); err != nil {
		return nil, ErrSerializeRequest.WithReason(err)
	}

	if blocks[2], err = MarshalSchema(req.ProjectedSchema); err != nil {
		return nil, ErrSerializeRequest.WithReason(err)
	}

	if blocks[3], err = MarshalSchema(req.DatasetSchema); err != nil {
		return nil, ErrSerializeRequest.WithReason(err)
	}

	size := 12
	for i := range blocks {
		if len(blocks[i]) > math.MaxInt32 {
			return nil, ErrSerializeRequest.WithDetail("Слишком большой блок %d: %d", i, len(blocks[i]))
		}
		size += 4 + len(blocks[i])
	}

	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(req.FileType))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(req.FileSize))

	for i := range blocks {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(blocks[i])))
		buf = append(buf, blocks[i]...)
	}

	return buf, nil
}

// DecodeScanRequest - разбор запроса сканирования
//
// Любое нарушение структуры, включая лишние байты в конце, дает ErrDeserializeRequest.
func DecodeScanRequest(buf []byte) (req ScanRequest, err error) {
	// Отлавливаем панику и превращаем в ошибку
	defer func() {
		if rec := recover(); rec != nil {
			req = ScanRequest{}
			err = ErrDeserializeRequest.WithDebug(errx.Debug{"panic": rec})
		}
	}()

	var ftype int32
	var blocks [4][]byte

	cur := cursor{buf: buf}

	if ftype, err = cur.readInt32(); err != nil {
		return req, ErrDeserializeRequest.WithReason(err)
	}

	if req.FileSize, err = cur.readInt64(); err != nil {
		return req, ErrDeserializeRequest.WithReason(err)
	}

	for i := range blocks {
		if blocks[i], err = cur.block(); err != nil {
			return req, ErrDeserializeRequest.WithReason(err)
		}
	}

	if cur.rest() > 0 {
		return req, ErrDeserializeRequest.WithDetail("Лишние байты в конце запроса: %d", cur.rest())
	}

	req.FileType = FileType(ftype)

	if req.Filter, err = expr.Unmarshal(blocks[0]); err != nil {
		return req, ErrDeserializeRequest.WithReason(err)
	}

	if req.Partition, err = expr.Unmarshal(blocks[1]); err != nil {
		return req, ErrDeserializeRequest.WithReason(err)
	}

	if req.ProjectedSchema, err = UnmarshalSchema(blocks[2]); err != nil {
		return req, ErrDeserializeRequest.WithReason(err)
	}

	if req.DatasetSchema, err = UnmarshalSchema(blocks[3]); err != nil {
		return req, ErrDeserializeRequest.WithReason(err)
	}

	if err = req.validate(); err != nil {
		return req, ErrDeserializeRequest.WithReason(err)
	}

	return req, nil
}

// EncodeInspectRequest - запрос схемы файла: только int32 формат
func EncodeInspectRequest(ftype FileType) []byte {
	return binary.LittleEndian.AppendUint32(make([]byte, 0, 4), uint32(ftype))
}

// DecodeInspectRequest - разбор запроса схемы файла
func DecodeInspectRequest(buf []byte) (FileType, error) {
	if len(buf) != 4 {
		return 0, ErrDeserializeRequest.WithDetail("Неверная длина запроса схемы: %d", len(buf))
	}

	ftype := FileType(int32(binary.LittleEndian.Uint32(buf)))

	if !ftype.Valid() {
		return 0, ErrDeserializeRequest.WithDetail("Неизвестный формат файла: %d", int32(ftype))
	}

	return ftype, nil
}

func (r ScanRequest) validate() error {
	if !r.FileType.Valid() {
		return ErrFileType.WithDetail("Неизвестный формат файла: %d", int32(r.FileType))
	}

	if r.FileSize < 0 {
		return ErrSchema.WithDetail("Отрицательный размер файла: %d", r.FileSize)
	}

	if r.ProjectedSchema == nil || r.DatasetSchema == nil {
		return ErrSchema.WithDetail("Отсутствует схема проекции или набора")
	}

	for _, fld := range r.ProjectedSchema.Fields() {
		idx := r.DatasetSchema.FieldIndices(fld.Name)

		if len(idx) == 0 {
			return ErrSchema.WithDetail("Колонка %s отсутствует в схеме набора", fld.Name)
		}

		if !arrow.TypeEqual(fld.Type, r.DatasetSchema.Field(idx[0]).Type) {
			return ErrSchema.WithDetail("Тип колонки %s расходится со схемой набора", fld.Name)
		}
	}

	return nil
}

func orTrue(e expr.Expr) expr.Expr {
	if e == nil {
		return expr.True()
	}
	return e
}

type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) rest() int { return len(c.buf) - c.pos }

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || n > c.rest() {
		return nil, ErrDeserializeRequest.WithDetail("Нужно %d байт, осталось %d", n, c.rest())
	}

	res := c.buf[c.pos : c.pos+n]
	c.pos += n
	return res, nil
}

func (c *cursor) readInt32() (int32, error) {
	buf, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf)), nil
}

func (c *cursor) readInt64() (int64, error) {
	buf, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf)), nil
}

func (c *cursor) block() ([]byte, error) {
	size, err := c.readInt32()
	if err != nil {
		return nil, err
	}
	return c.take(int(size))
}
