package wire_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/expr"
	"github.com/shestakovda/fdbscan/wire"
	"github.com/stretchr/testify/suite"
)

// TestWire - внешние тесты протокола
func TestWire(t *testing.T) {
	suite.Run(t, new(WireSuite))
}

type WireSuite struct {
	suite.Suite

	dataset   *arrow.Schema
	projected *arrow.Schema
}

func (s *WireSuite) SetupTest() {
	s.dataset = arrow.NewSchema([]arrow.Field{
		{Name: "column_a", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "column_b", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "column_c", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "year", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
	}, nil)

	s.projected = arrow.NewSchema([]arrow.Field{
		{Name: "column_a", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "column_b", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
}

func (s *WireSuite) request() wire.ScanRequest {
	return wire.ScanRequest{
		Filter:          expr.Greater(expr.Field("column_a"), expr.Lit(5)),
		Partition:       expr.Equal(expr.Field("year"), expr.Lit(2020)),
		ProjectedSchema: s.projected,
		DatasetSchema:   s.dataset,
		FileSize:        123456,
		FileType:        wire.FileIPC,
	}
}

func (s *WireSuite) batch(from int64, rows int) arrow.Record {
	mem := memory.NewGoAllocator()

	ab := array.NewInt64Builder(mem)
	defer ab.Release()

	bb := array.NewStringBuilder(mem)
	defer bb.Release()

	for i := 0; i < rows; i++ {
		ab.Append(from + int64(i))
		bb.Append(fmt.Sprintf("row%d", from+int64(i)))
	}

	cols := []arrow.Array{ab.NewArray(), bb.NewArray()}
	defer cols[0].Release()
	defer cols[1].Release()

	return array.NewRecord(s.projected, cols, int64(rows))
}

func (s *WireSuite) TestScanRequest() {
	src := s.request()

	buf, err := wire.EncodeScanRequest(src)
	s.Require().NoError(err)

	dst, err := wire.DecodeScanRequest(buf)
	s.Require().NoError(err)

	s.Equal(src.Filter, dst.Filter)
	s.Equal(src.Partition, dst.Partition)
	s.Equal(src.FileSize, dst.FileSize)
	s.Equal(src.FileType, dst.FileType)
	s.True(src.ProjectedSchema.Equal(dst.ProjectedSchema))
	s.True(src.DatasetSchema.Equal(dst.DatasetSchema))

	// Пустой фильтр уходит как true
	src.Filter = nil
	src.Partition = nil

	buf, err = wire.EncodeScanRequest(src)
	s.Require().NoError(err)

	dst, err = wire.DecodeScanRequest(buf)
	s.Require().NoError(err)
	s.True(expr.IsTrue(dst.Filter))
	s.True(expr.IsTrue(dst.Partition))
}

func (s *WireSuite) TestScanRequestInvalid() {
	req := s.request()
	req.ProjectedSchema = arrow.NewSchema([]arrow.Field{{Name: "missing", Type: arrow.PrimitiveTypes.Int64}}, nil)

	if _, err := wire.EncodeScanRequest(req); s.Error(err) {
		s.True(errx.Is(err, wire.ErrSerializeRequest))
	}

	req = s.request()
	req.ProjectedSchema = arrow.NewSchema([]arrow.Field{{Name: "column_a", Type: arrow.BinaryTypes.String}}, nil)

	if _, err := wire.EncodeScanRequest(req); s.Error(err) {
		s.True(errx.Is(err, wire.ErrSerializeRequest))
	}

	req = s.request()
	req.FileSize = -1

	if _, err := wire.EncodeScanRequest(req); s.Error(err) {
		s.True(errx.Is(err, wire.ErrSerializeRequest))
	}

	req = s.request()
	req.FileType = 7

	if _, err := wire.EncodeScanRequest(req); s.Error(err) {
		s.True(errx.Is(err, wire.ErrSerializeRequest))
	}
}

func (s *WireSuite) TestScanRequestCorrupted() {
	buf, err := wire.EncodeScanRequest(s.request())
	s.Require().NoError(err)

	check := func(name string, data []byte) {
		_, exp := wire.DecodeScanRequest(data)
		if s.Error(exp, name) {
			s.True(errx.Is(exp, wire.ErrDeserializeRequest), name)
			s.Equal(wire.CodeDeserializeRequest, wire.CodeOf(exp), name)
		}
	}

	for i := 0; i < len(buf); i++ {
		check(fmt.Sprintf("prefix %d", i), buf[:i])
	}

	check("trailing byte", append(append([]byte{}, buf...), 0))

	// Длина блока фильтра сразу после заголовка из 12 байт
	huge := append([]byte{}, buf...)
	huge[15] = 0x7F
	check("huge length", huge)

	negative := append([]byte{}, buf...)
	binary.LittleEndian.PutUint32(negative[12:], 0xFFFFFFFF)
	check("negative length", negative)

	unknown := append([]byte{}, buf...)
	binary.LittleEndian.PutUint32(unknown[0:], 9)
	check("unknown format", unknown)

	garbage := append([]byte{}, buf...)
	for i := 16; i < 24; i++ {
		garbage[i] = 0xFF
	}
	check("garbage filter", garbage)
}

func (s *WireSuite) TestInspectRequest() {
	ftype, err := wire.DecodeInspectRequest(wire.EncodeInspectRequest(wire.FileParquet))
	s.Require().NoError(err)
	s.Equal(wire.FileParquet, ftype)

	for _, buf := range [][]byte{nil, {1, 0, 0}, {5, 0, 0, 0}, {1, 0, 0, 0, 0}} {
		if _, err = wire.DecodeInspectRequest(buf); s.Error(err) {
			s.Equal(wire.CodeDeserializeRequest, wire.CodeOf(err))
		}
	}
}

func (s *WireSuite) TestTable() {
	src := wire.Table{
		Schema:  s.projected,
		Batches: []arrow.Record{s.batch(0, 10), s.batch(100, 1), s.batch(200, 1000)},
	}
	defer src.Release()

	for _, aggressive := range []bool{false, true} {
		buf, err := wire.EncodeTable(src, aggressive)
		s.Require().NoError(err)

		for _, threads := range []bool{false, true} {
			dst, err := wire.DecodeTable(buf, threads)
			s.Require().NoError(err)

			s.True(src.Schema.Equal(dst.Schema))
			s.Equal(src.NumRows(), dst.NumRows())

			if s.Len(dst.Batches, len(src.Batches)) {
				for i := range src.Batches {
					s.True(array.RecordEqual(src.Batches[i], dst.Batches[i]), "batch %d", i)
				}
			}

			dst.Release()
		}
	}
}

func (s *WireSuite) TestTableEmpty() {
	buf, err := wire.EncodeTable(wire.Table{Schema: s.projected}, false)
	s.Require().NoError(err)

	dst, err := wire.DecodeTable(buf, true)
	s.Require().NoError(err)
	s.True(s.projected.Equal(dst.Schema))
	s.Empty(dst.Batches)
	s.Equal(int64(0), dst.NumRows())
}

func (s *WireSuite) TestTableInvalid() {
	if _, err := wire.EncodeTable(wire.Table{}, false); s.Error(err) {
		s.Equal(wire.CodeSerializeTable, wire.CodeOf(err))
	}

	rec := s.batch(0, 3)
	defer rec.Release()

	if _, err := wire.EncodeTable(wire.Table{Schema: s.dataset, Batches: []arrow.Record{rec}}, false); s.Error(err) {
		s.True(errx.Is(err, wire.ErrSerializeTable))
	}

	buf, err := wire.EncodeTable(wire.Table{Schema: s.projected, Batches: []arrow.Record{rec}}, false)
	s.Require().NoError(err)

	for _, size := range []int{0, 5, len(buf) / 2, len(buf) - 6, len(buf) - 1} {
		if _, err = wire.DecodeTable(buf[:size], true); s.Error(err, "prefix %d", size) {
			s.True(errx.Is(err, wire.ErrDeserializeTable))
		}
	}
}

func (s *WireSuite) TestTableStream() {
	src := wire.Table{
		Schema:  s.projected,
		Batches: []arrow.Record{s.batch(0, 10), s.batch(100, 20)},
	}
	defer src.Release()

	buf, err := wire.EncodeTable(src, false)
	s.Require().NoError(err)

	// Результат читается обычным потоковым читателем Arrow
	rdr, err := ipc.NewReader(bytes.NewReader(buf))
	s.Require().NoError(err)
	defer rdr.Release()

	num := 0
	for rdr.Next() {
		s.True(array.RecordEqual(src.Batches[num], rdr.Record()), "batch %d", num)
		num++
	}
	s.NoError(rdr.Err())
	s.Equal(len(src.Batches), num)
	s.Equal([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}, buf[len(buf)-8:])

	// Длина заголовка схемы и длина заголовка первого батча за пределами буфера
	next := 8 + int(binary.LittleEndian.Uint32(buf[4:]))

	for _, pos := range []int{4, next + 4} {
		bad := append([]byte(nil), buf...)
		binary.LittleEndian.PutUint32(bad[pos:], 0x7FFFFFF0)

		for _, threads := range []bool{false, true} {
			if _, err = wire.DecodeTable(bad, threads); s.Error(err, "offset %d", pos) {
				s.True(errx.Is(err, wire.ErrDeserializeTable))
			}
		}
	}

	// Мусор после конца потока и поток без маркера
	if _, err = wire.DecodeTable(append(append([]byte(nil), buf...), 1, 2, 3), true); s.Error(err) {
		s.True(errx.Is(err, wire.ErrDeserializeTable))
	}

	if _, err = wire.DecodeTable(buf[4:], false); s.Error(err) {
		s.True(errx.Is(err, wire.ErrDeserializeTable))
	}
}

func (s *WireSuite) TestReply() {
	data, err := wire.DecodeReply(wire.ReplyOK([]byte("table")))
	s.Require().NoError(err)
	s.Equal("table", string(data))

	_, err = wire.DecodeReply(wire.ReplyError(wire.ErrDeserializeRequest.WithDetail("bad length")))
	if s.Error(err) {
		s.True(errx.Is(err, wire.ErrDeserializeRequest))
		s.Equal(wire.CodeDeserializeRequest, wire.CodeOf(err))
	}

	_, err = wire.DecodeReply(wire.ReplyError(errors.New("disk is on fire")))
	if s.Error(err) {
		s.Equal(wire.CodeScanFragment, wire.CodeOf(err))
	}

	_, err = wire.DecodeReply(wire.EncodeReply(99, "what", nil))
	if s.Error(err) {
		s.True(errx.Is(err, wire.ErrReply))
	}

	if _, err = wire.DecodeReply([]byte{1}); s.Error(err) {
		s.True(errx.Is(err, wire.ErrReply))
	}
}

func (s *WireSuite) TestCodes() {
	s.Equal(wire.CodeOK, wire.CodeOf(nil))
	s.Equal(wire.Code(25), wire.CodeOf(wire.ErrScanFragment.WithReason(wire.ErrSerializeTable)))
	s.Equal(wire.Code(26), wire.CodeOf(wire.ErrDeserializeRequest))
	s.Equal(wire.Code(27), wire.CodeOf(wire.ErrSerializeTable.WithStack()))
	s.Equal("failed to scan file fragment", wire.CodeScanFragment.Message())
	s.Equal("failed to deserialize scan request", wire.CodeDeserializeRequest.Message())
	s.Equal("failed to serialize result table", wire.CodeSerializeTable.Message())
	s.NoError(wire.CodeOK.Err(""))
}

func (s *WireSuite) TestCall() {
	src := wire.Call{
		Class:   "skyhook",
		Method:  wire.MethodScan,
		Object:  "pool/data/file.parquet",
		User:    "client.admin",
		Pool:    "cephfs_data",
		Cluster: "ceph",
		Body:    []byte{1, 2, 3},
	}

	dst, err := wire.UnmarshalCall(wire.MarshalCall(src))
	s.Require().NoError(err)
	s.Equal(src, dst)

	if _, err = wire.UnmarshalCall([]byte{4, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}); s.Error(err) {
		s.True(errx.Is(err, wire.ErrCall))
	}
}

func (s *WireSuite) TestFileType() {
	ftype, err := wire.ParseFileType("Parquet")
	s.Require().NoError(err)
	s.Equal(wire.FileParquet, ftype)

	ftype, err = wire.ParseFileType("ipc")
	s.Require().NoError(err)
	s.Equal(wire.FileIPC, ftype)
	s.Equal("ipc", ftype.String())

	if _, err = wire.ParseFileType("csv"); s.Error(err) {
		s.True(errx.Is(err, wire.ErrFileType))
	}
}
