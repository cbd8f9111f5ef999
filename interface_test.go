package fdbscan_test

import (
	"context"
	"errors"
	"fmt"
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

const (
	TestParquet = "pool/data/part-0.parquet"
	TestIPC     = "pool/data/part-0.arrow"
)

// TestOffload - внешние тесты форматов
func TestOffload(t *testing.T) {
	suite.Run(t, new(OffloadSuite))
}

type OffloadSuite struct {
	suite.Suite

	ctx     context.Context
	fs      *fsys.Memory
	cls     *cls.Class
	dataset *arrow.Schema
	project *arrow.Schema
}

func (s *OffloadSuite) SetupTest() {
	s.ctx = context.Background()
	s.fs = fsys.NewMemory()
	s.cls = cls.New(s.fs, cls.Threads())

	s.dataset = arrow.NewSchema([]arrow.Field{
		{Name: "column_a", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "column_b", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "column_c", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)

	s.project = arrow.NewSchema([]arrow.Field{
		{Name: "column_a", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "column_b", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	s.write(fdbscan.NewParquet(), TestParquet)
	s.write(fdbscan.NewIPC(), TestIPC)
}

func (s *OffloadSuite) batch(from int64, rows int) arrow.Record {
	mem := memory.NewGoAllocator()

	ab := array.NewInt64Builder(mem)
	defer ab.Release()

	bb := array.NewStringBuilder(mem)
	defer bb.Release()

	cb := array.NewFloat64Builder(mem)
	defer cb.Release()

	for i := from; i < from+int64(rows); i++ {
		ab.Append(i)
		bb.Append(fmt.Sprintf("b%d", i/10))
		cb.Append(float64(i) / 2)
	}

	cols := []arrow.Array{ab.NewArray(), bb.NewArray(), cb.NewArray()}

	for i := range cols {
		defer cols[i].Release()
	}

	return array.NewRecord(s.dataset, cols, int64(rows))
}

func (s *OffloadSuite) write(format fdbscan.FileFormat, name string) {
	out, err := s.fs.Create(s.ctx, name)
	s.Require().NoError(err)

	wrt, err := format.MakeWriter(out, s.dataset, nil)
	s.Require().NoError(err)

	for i := int64(0); i < 3; i++ {
		rec := s.batch(i*10, 10)
		s.Require().NoError(wrt.Write(rec))
		rec.Release()
	}

	s.Require().NoError(wrt.Close())
	s.Require().NoError(out.Close())
}

func (s *OffloadSuite) offload(tr fdbscan.Transport, format string, args ...fdbscan.Option) *fdbscan.Offload {
	f, err := fdbscan.NewOffload(fdbscan.OffloadConfig{
		Format:      format,
		ClusterFile: "/etc/foundationdb/fdb.cluster",
		DataPool:    "cephfs_data",
		User:        "client.admin",
		Cluster:     "ceph",
	}, tr, args...)
	s.Require().NoError(err)
	return f
}

func (s *OffloadSuite) fragment(name string) fdbscan.Fragment {
	return fdbscan.Fragment{Source: fdbscan.FileSource{Path: name, FS: s.fs}}
}

func (s *OffloadSuite) column(recs []arrow.Record, idx int) []int64 {
	res := make([]int64, 0, 32)
	for i := range recs {
		res = append(res, recs[i].Column(idx).(*array.Int64).Int64Values()...)
	}
	return res
}

func (s *OffloadSuite) sameFields(exp, got *arrow.Schema) {
	if s.Equal(exp.NumFields(), got.NumFields()) {
		for i := 0; i < exp.NumFields(); i++ {
			s.Equal(exp.Field(i).Name, got.Field(i).Name)
			s.True(arrow.TypeEqual(exp.Field(i).Type, got.Field(i).Type), exp.Field(i).Name)
		}
	}
}

func (s *OffloadSuite) TestScan() {
	for _, name := range []string{fdbscan.TypeParquet, fdbscan.TypeIPC} {
		path := TestParquet
		if name == fdbscan.TypeIPC {
			path = TestIPC
		}

		f := s.offload(s.cls, name)

		opts := fdbscan.ScanOptions{
			Filter:     expr.Greater(expr.Field("column_a"), expr.Lit(5)),
			Projection: s.project,
			Dataset:    s.dataset,
			UseThreads: true,
		}

		tbl, err := fdbscan.Scan(s.ctx, f, &opts, s.fragment(path))
		s.Require().NoError(err, name)

		s.sameFields(s.project, tbl.Schema)
		s.Equal(int64(24), tbl.NumRows())

		exp := make([]int64, 0, 24)
		for i := int64(6); i < 30; i++ {
			exp = append(exp, i)
		}

		s.Equal(exp, s.column(tbl.Batches, 0))

		for i := range tbl.Batches {
			s.sameFields(s.project, tbl.Batches[i].Schema())
		}

		tbl.Release()
	}
}

func (s *OffloadSuite) TestScanOrder() {
	f := s.offload(s.cls, fdbscan.TypeIPC)

	it, err := f.ScanFile(s.ctx, &fdbscan.ScanOptions{Dataset: s.dataset, UseThreads: true}, s.fragment(TestIPC))
	s.Require().NoError(err)

	task, err := it()
	s.Require().NoError(err)
	s.Require().NotNil(task)

	recs, err := task.Execute(s.ctx)
	s.Require().NoError(err)

	if s.Len(recs, 3) {
		for i := range recs {
			exp := s.batch(int64(i)*10, 10)
			s.True(array.RecordEqual(exp, recs[i]), "batch %d", i)
			exp.Release()
			recs[i].Release()
		}
	}

	// Одна задача на фрагмент
	task, err = it()
	s.NoError(err)
	s.Nil(task)
}

func (s *OffloadSuite) TestPartition() {
	dataset := arrow.NewSchema(append(s.dataset.Fields(),
		arrow.Field{Name: "year", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		arrow.Field{Name: "region", Type: arrow.BinaryTypes.String, Nullable: true},
	), nil)

	project := arrow.NewSchema([]arrow.Field{
		{Name: "column_a", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "year", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "region", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	frag := s.fragment(TestParquet)
	frag.Partition = expr.Equal(expr.Field("year"), expr.Lit(2020))

	opts := fdbscan.ScanOptions{
		Filter:     expr.And(expr.Equal(expr.Field("year"), expr.Lit(2020)), expr.Less(expr.Field("column_a"), expr.Lit(3))),
		Projection: project,
		Dataset:    dataset,
	}

	tbl, err := fdbscan.Scan(s.ctx, s.offload(s.cls, fdbscan.TypeParquet), &opts, frag)
	s.Require().NoError(err)
	defer tbl.Release()

	s.Equal([]int64{0, 1, 2}, s.column(tbl.Batches, 0))

	for i := range tbl.Batches {
		years := tbl.Batches[i].Column(1).(*array.Int32)
		regions := tbl.Batches[i].Column(2)

		for j := 0; j < years.Len(); j++ {
			s.Equal(int32(2020), years.Value(j))
			s.True(regions.IsNull(j))
		}
	}

	// Другой раздел не дает строк
	frag.Partition = expr.Equal(expr.Field("year"), expr.Lit(2021))

	tbl2, err := fdbscan.Scan(s.ctx, s.offload(s.cls, fdbscan.TypeParquet), &opts, frag)
	s.Require().NoError(err)
	s.Equal(int64(0), tbl2.NumRows())
	s.sameFields(project, tbl2.Schema)
}

func (s *OffloadSuite) TestEquality() {
	f1 := s.offload(s.cls, fdbscan.TypeParquet)

	f2, err := fdbscan.NewOffload(fdbscan.OffloadConfig{
		Format:   fdbscan.TypeIPC,
		DataPool: "other_pool",
		User:     "client.other",
		Cluster:  "other",
	}, s.cls)
	s.Require().NoError(err)

	s.Equal("skyhook", f1.TypeName())
	s.True(f1.Equals(f2))
	s.True(f2.Equals(f1))
	s.False(f1.Equals(fdbscan.NewParquet()))
	s.False(f1.Equals(nil))
	s.True(f1.Splittable())
	s.Nil(f1.DefaultWriteOptions())
	s.Equal("cephfs_data", f1.Config().DataPool)
	s.Equal(wire.FileParquet, f1.FileType())

	ok, err := f1.IsSupported(s.ctx, s.fragment("anything").Source)
	s.NoError(err)
	s.True(ok)

	if _, err = f1.MakeWriter(nil, s.dataset, nil); s.Error(err) {
		s.True(errx.Is(err, fdbscan.ErrUnsupported))
	}

	if _, err = fdbscan.NewOffload(fdbscan.OffloadConfig{Format: "csv"}, s.cls); s.Error(err) {
		s.True(errx.Is(err, fdbscan.ErrConfig))
	}

	if _, err = fdbscan.NewOffload(fdbscan.OffloadConfig{}, nil); s.Error(err) {
		s.True(errx.Is(err, fdbscan.ErrConfig))
	}
}

func (s *OffloadSuite) TestInspect() {
	local, err := s.offload(s.cls, fdbscan.TypeParquet).Inspect(s.ctx, s.fragment(TestParquet).Source)
	s.Require().NoError(err)
	s.sameFields(s.dataset, local)

	remote, err := s.offload(s.cls, fdbscan.TypeParquet, fdbscan.RemoteInspect()).Inspect(s.ctx, s.fragment(TestParquet).Source)
	s.Require().NoError(err)
	s.sameFields(s.dataset, remote)

	if _, err = s.offload(s.cls, fdbscan.TypeParquet, fdbscan.RemoteInspect()).Inspect(s.ctx, s.fragment("missing").Source); s.Error(err) {
		s.True(errx.Is(err, fdbscan.ErrInspect))
	}
}

func (s *OffloadSuite) TestTransportFailure() {
	fail := transport(func(ctx context.Context, call wire.Call) ([]byte, error) {
		return nil, errors.New("connection refused")
	})

	_, err := fdbscan.Scan(s.ctx, s.offload(fail, fdbscan.TypeParquet), &fdbscan.ScanOptions{Dataset: s.dataset}, s.fragment(TestParquet))
	if s.Error(err) {
		s.Equal(wire.CodeScanFragment, wire.CodeOf(err))
		s.True(errx.Is(err, wire.ErrScanFragment))
	}

	_, err = fdbscan.Scan(s.ctx, s.offload(s.cls, fdbscan.TypeParquet), &fdbscan.ScanOptions{Dataset: s.dataset}, s.fragment("missing"))
	if s.Error(err) {
		s.Equal(wire.CodeScanFragment, wire.CodeOf(err))
		s.True(errx.Is(err, fsys.ErrNotFound))
	}
}

func (s *OffloadSuite) TestCorruptedRequest() {
	flip := transport(func(ctx context.Context, call wire.Call) ([]byte, error) {
		call.Body = append([]byte{}, call.Body...)
		call.Body[15] ^= 0x7F
		return s.cls.Exec(ctx, call)
	})

	_, err := fdbscan.Scan(s.ctx, s.offload(flip, fdbscan.TypeParquet), &fdbscan.ScanOptions{Dataset: s.dataset}, s.fragment(TestParquet))
	if s.Error(err) {
		s.Equal(wire.CodeScanFragment, wire.CodeOf(err))
		s.True(errx.Is(err, wire.ErrDeserializeRequest))
	}
}

func (s *OffloadSuite) TestVerify() {
	// Исполнитель, который игнорирует фильтр
	liar := transport(func(ctx context.Context, call wire.Call) ([]byte, error) {
		req, err := wire.DecodeScanRequest(call.Body)
		if err != nil {
			return nil, err
		}

		req.Filter = expr.True()

		if call.Body, err = wire.EncodeScanRequest(req); err != nil {
			return nil, err
		}

		return s.cls.Exec(ctx, call)
	})

	opts := fdbscan.ScanOptions{
		Filter:     expr.Greater(expr.Field("column_a"), expr.Lit(5)),
		Projection: s.project,
		Dataset:    s.dataset,
	}

	tbl, err := fdbscan.Scan(s.ctx, s.offload(liar, fdbscan.TypeIPC), &opts, s.fragment(TestIPC))
	s.Require().NoError(err)
	s.Equal(int64(30), tbl.NumRows())
	tbl.Release()

	_, err = fdbscan.Scan(s.ctx, s.offload(liar, fdbscan.TypeIPC, fdbscan.Verify()), &opts, s.fragment(TestIPC))
	if s.Error(err) {
		s.Equal(wire.CodeScanFragment, wire.CodeOf(err))
		s.True(errx.Is(err, fdbscan.ErrVerify))
	}

	tbl, err = fdbscan.Scan(s.ctx, s.offload(s.cls, fdbscan.TypeIPC, fdbscan.Verify()), &opts, s.fragment(TestIPC))
	s.Require().NoError(err)
	s.Equal(int64(24), tbl.NumRows())
	tbl.Release()
}

func (s *OffloadSuite) TestLocal() {
	pq := fdbscan.NewParquet(fdbscan.BatchSize(7))
	ipc := fdbscan.NewIPC()

	ok, err := pq.IsSupported(s.ctx, s.fragment(TestParquet).Source)
	s.NoError(err)
	s.True(ok)

	ok, err = pq.IsSupported(s.ctx, s.fragment(TestIPC).Source)
	s.NoError(err)
	s.False(ok)

	ok, err = ipc.IsSupported(s.ctx, s.fragment(TestIPC).Source)
	s.NoError(err)
	s.True(ok)

	s.True(pq.Equals(fdbscan.NewParquet()))
	s.False(pq.Equals(ipc))
	s.False(pq.Splittable())

	opts := fdbscan.ScanOptions{
		Filter:     expr.Equal(expr.Field("column_b"), expr.Lit("b1")),
		Projection: s.project,
	}

	tbl, err := fdbscan.Scan(s.ctx, pq, &opts, s.fragment(TestParquet))
	s.Require().NoError(err)
	s.Equal([]int64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, s.column(tbl.Batches, 0))
	tbl.Release()

	if _, err = pq.MakeWriter(nil, s.dataset, fdbscan.IPCWriteOptions{}); s.Error(err) {
		s.True(errx.Is(err, fdbscan.ErrWrite))
	}

	if _, err = ipc.MakeWriter(nil, s.dataset, fdbscan.IPCWriteOptions{Compression: "brotli"}); s.Error(err) {
		s.True(errx.Is(err, fdbscan.ErrWrite))
	}

	if _, err = fdbscan.NewLocal(wire.FileType(9)); s.Error(err) {
		s.True(errx.Is(err, fdbscan.ErrConfig))
	}
}

func (s *OffloadSuite) TestCollectFailure() {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(s.T(), 0)

	ipc := fdbscan.NewIPC(fdbscan.Allocator(mem))
	opts := fdbscan.ScanOptions{Filter: expr.True(), Projection: s.project}

	it, err := ipc.ScanFile(s.ctx, &opts, s.fragment(TestIPC))
	s.Require().NoError(err)

	fail := errors.New("iterator failure")
	calls := 0

	// Первая задача остается невыполненной, остальные дочитываются до конца файла
	broken := func() (fdbscan.ScanTask, error) {
		if calls++; calls == 1 {
			return it()
		}

		for {
			task, err := it()
			s.Require().NoError(err)

			if task == nil {
				return nil, fail
			}

			recs, err := task.Execute(s.ctx)
			s.Require().NoError(err)

			for i := range recs {
				recs[i].Release()
			}
		}
	}

	_, err = fdbscan.Collect(s.ctx, broken, false)
	s.ErrorIs(err, fail)
}

type transport func(ctx context.Context, call wire.Call) ([]byte, error)

func (t transport) Exec(ctx context.Context, call wire.Call) ([]byte, error) { return t(ctx, call) }
