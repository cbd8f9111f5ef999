package cls_test

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan"
	"github.com/shestakovda/fdbscan/cls"
	"github.com/shestakovda/fdbscan/expr"
	"github.com/shestakovda/fdbscan/fsys"
	"github.com/shestakovda/fdbscan/wire"
	"github.com/stretchr/testify/suite"
)

const TestObject = "cephfs_data/table/part-0.parquet"

// TestClass - внешние тесты класса исполнителя
func TestClass(t *testing.T) {
	suite.Run(t, new(ClassSuite))
}

type ClassSuite struct {
	suite.Suite

	ctx    context.Context
	fs     *fsys.Memory
	schema *arrow.Schema
	size   int64
}

func (s *ClassSuite) SetupTest() {
	s.ctx = context.Background()
	s.fs = fsys.NewMemory()
	s.schema = arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	mem := memory.NewGoAllocator()
	ib := array.NewInt32Builder(mem)
	defer ib.Release()
	nb := array.NewStringBuilder(mem)
	defer nb.Release()

	ib.AppendValues([]int32{1, 2, 3, 4}, nil)
	nb.AppendValues([]string{"a", "b", "c", "d"}, nil)

	ids := ib.NewArray()
	defer ids.Release()
	names := nb.NewArray()
	defer names.Release()

	rec := array.NewRecord(s.schema, []arrow.Array{ids, names}, 4)
	defer rec.Release()

	out, err := s.fs.Create(s.ctx, TestObject)
	s.Require().NoError(err)

	wrt, err := fdbscan.NewParquet().MakeWriter(out, s.schema, nil)
	s.Require().NoError(err)
	s.Require().NoError(wrt.Write(rec))
	s.Require().NoError(wrt.Close())
	s.Require().NoError(out.Close())

	info, err := s.fs.Stat(s.ctx, TestObject)
	s.Require().NoError(err)
	s.size = info.Size()
}

func (s *ClassSuite) call(method string, body []byte) wire.Call {
	return wire.Call{
		Class:   fdbscan.TypeOffload,
		Method:  method,
		Object:  TestObject,
		User:    "client.admin",
		Pool:    "cephfs_data",
		Cluster: "ceph",
		Body:    body,
	}
}

func (s *ClassSuite) request(filter expr.Expr, size int64) []byte {
	buf, err := wire.EncodeScanRequest(wire.ScanRequest{
		Filter:          filter,
		Partition:       expr.True(),
		ProjectedSchema: s.schema,
		DatasetSchema:   s.schema,
		FileSize:        size,
		FileType:        wire.FileParquet,
	})
	s.Require().NoError(err)
	return buf
}

func (s *ClassSuite) code(rep []byte) wire.Code {
	_, err := wire.DecodeReply(rep)
	return wire.CodeOf(err)
}

func (s *ClassSuite) TestScan() {
	c := cls.New(s.fs, cls.Pool("cephfs_data"), cls.Cluster("ceph"), cls.Aggressive())

	s.Equal(fdbscan.TypeOffload, c.Name())
	s.Len(c.Methods(), 2)

	rep, err := c.Exec(s.ctx, s.call(wire.MethodScan, s.request(expr.GreaterEqual(expr.Field("id"), expr.Lit(3)), s.size)))
	s.Require().NoError(err)

	data, err := wire.DecodeReply(rep)
	s.Require().NoError(err)

	tbl, err := wire.DecodeTable(data, false)
	s.Require().NoError(err)
	defer tbl.Release()

	s.Equal(int64(2), tbl.NumRows())
	s.Equal("id", tbl.Schema.Field(0).Name)

	ids := make([]int32, 0, 2)
	for i := range tbl.Batches {
		ids = append(ids, tbl.Batches[i].Column(0).(*array.Int32).Int32Values()...)
	}
	s.Equal([]int32{3, 4}, ids)
}

func (s *ClassSuite) TestInspect() {
	c := cls.New(s.fs)

	data, err := wire.DecodeReply(c.Handle(s.ctx, s.call(wire.MethodInspect, wire.EncodeInspectRequest(wire.FileParquet))))
	s.Require().NoError(err)

	schema, err := wire.UnmarshalSchema(data)
	s.Require().NoError(err)

	if s.Equal(2, schema.NumFields()) {
		s.Equal("id", schema.Field(0).Name)
		s.True(arrow.TypeEqual(arrow.PrimitiveTypes.Int32, schema.Field(0).Type))
		s.Equal("name", schema.Field(1).Name)
	}

	s.Equal(wire.CodeDeserializeRequest, s.code(c.Handle(s.ctx, s.call(wire.MethodInspect, []byte{1}))))
}

func (s *ClassSuite) TestErrors() {
	c := cls.New(s.fs)

	// Мусор вместо запроса
	s.Equal(wire.CodeDeserializeRequest, s.code(c.Handle(s.ctx, s.call(wire.MethodScan, []byte("garbage")))))

	// Испорченная длина блока
	body := s.request(nil, s.size)
	body[15] ^= 0x7F
	s.Equal(wire.CodeDeserializeRequest, s.code(c.Handle(s.ctx, s.call(wire.MethodScan, body))))

	// Объект изменился после планирования
	_, err := wire.DecodeReply(c.Handle(s.ctx, s.call(wire.MethodScan, s.request(nil, s.size+1))))
	if s.Error(err) {
		s.Equal(wire.CodeScanFragment, wire.CodeOf(err))
		s.Contains(err.Error(), wire.MsgScanFragment)
	}

	// Объекта нет
	call := s.call(wire.MethodScan, s.request(nil, s.size))
	call.Object = "missing"
	s.Equal(wire.CodeScanFragment, s.code(c.Handle(s.ctx, call)))

	// Неизвестный метод
	s.Equal(wire.CodeScanFragment, s.code(c.Handle(s.ctx, s.call("write_op", nil))))

	// Чужой класс
	call = s.call(wire.MethodScan, s.request(nil, s.size))
	call.Class = "other"
	if _, err = c.Exec(s.ctx, call); s.Error(err) {
		s.True(errx.Is(err, cls.ErrMethod))
	}
}

func (s *ClassSuite) TestAllow() {
	c := cls.New(s.fs, cls.Cluster("ceph"), cls.Pool("cephfs_data"), cls.AllowUsers("client.admin"))
	body := s.request(nil, s.size)

	_, err := wire.DecodeReply(c.Handle(s.ctx, s.call(wire.MethodScan, body)))
	s.NoError(err)

	call := s.call(wire.MethodScan, body)
	call.Cluster = "other"
	s.Equal(wire.CodeScanFragment, s.code(c.Handle(s.ctx, call)))

	call = s.call(wire.MethodScan, body)
	call.Pool = "other_pool"
	s.Equal(wire.CodeScanFragment, s.code(c.Handle(s.ctx, call)))

	call = s.call(wire.MethodScan, body)
	call.User = "client.guest"
	s.Equal(wire.CodeScanFragment, s.code(c.Handle(s.ctx, call)))

	call = s.call(wire.MethodInspect, wire.EncodeInspectRequest(wire.FileParquet))
	call.User = "client.guest"
	s.Equal(wire.CodeScanFragment, s.code(c.Handle(s.ctx, call)))
}
