package fdbscan

import (
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/shestakovda/fdbscan/fsys"
)

var parquetMagic = []byte("PAR1")

// ParquetWriteOptions - параметры записи Parquet
type ParquetWriteOptions struct {
	Compression compress.Compression
}

func (ParquetWriteOptions) TypeName() string { return TypeParquet }

func newParquetV1(args []Option) *Parquet {
	f := Parquet{local: local{options: getOpts(args)}}
	f.open = f.reader
	return &f
}

// Parquet - локальный формат Parquet
type Parquet struct {
	local
}

func (f *Parquet) TypeName() string            { return TypeParquet }
func (f *Parquet) Equals(other FileFormat) bool { return sameType(f, other) }
func (f *Parquet) Splittable() bool            { return false }

func (f *Parquet) IsSupported(ctx context.Context, src FileSource) (bool, error) {
	return f.supported(ctx, src, parquetMagic, parquetMagic)
}

func (f *Parquet) Inspect(ctx context.Context, src FileSource) (*arrow.Schema, error) {
	return f.inspect(ctx, src)
}

func (f *Parquet) ScanFile(ctx context.Context, opts *ScanOptions, frag Fragment) (ScanTaskIterator, error) {
	return f.scan(ctx, opts, frag)
}

func (f *Parquet) DefaultWriteOptions() WriteOptions {
	return ParquetWriteOptions{Compression: compress.Codecs.Snappy}
}

func (f *Parquet) MakeWriter(w io.Writer, schema *arrow.Schema, opts WriteOptions) (Writer, error) {
	if opts == nil {
		opts = f.DefaultWriteOptions()
	}

	pqo, ok := opts.(ParquetWriteOptions)
	if !ok {
		return nil, ErrWrite.WithDetail("Параметры записи %s не подходят для %s", opts.TypeName(), TypeParquet)
	}

	props := parquet.NewWriterProperties(
		parquet.WithAllocator(f.mem),
		parquet.WithCompression(pqo.Compression),
	)

	wrt, err := pqarrow.NewFileWriter(schema, w, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return nil, ErrWrite.WithReason(err)
	}

	return wrt, nil
}

func (f *Parquet) reader(ctx context.Context, src fsys.File) (array.RecordReader, error) {
	rdr, err := file.NewParquetReader(src, file.WithReadProps(parquet.NewReaderProperties(f.mem)))
	if err != nil {
		return nil, err
	}

	arw, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{BatchSize: f.batchSize}, f.mem)
	if err != nil {
		return nil, err
	}

	return arw.GetRecordReader(ctx, nil, nil)
}
