package fdbscan

import (
	"context"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/shestakovda/fdbscan/fsys"
)

var ipcMagic = []byte("ARROW1")

// IPCWriteOptions - параметры записи Arrow IPC, сжатие lz4, zstd или пусто
type IPCWriteOptions struct {
	Compression string
}

func (IPCWriteOptions) TypeName() string { return TypeIPC }

func newIPCV1(args []Option) *IPC {
	f := IPC{local: local{options: getOpts(args)}}
	f.open = f.reader
	return &f
}

// IPC - локальный формат Arrow IPC (файловый вариант)
type IPC struct {
	local
}

func (f *IPC) TypeName() string            { return TypeIPC }
func (f *IPC) Equals(other FileFormat) bool { return sameType(f, other) }
func (f *IPC) Splittable() bool            { return false }

func (f *IPC) IsSupported(ctx context.Context, src FileSource) (bool, error) {
	return f.supported(ctx, src, ipcMagic, ipcMagic)
}

func (f *IPC) Inspect(ctx context.Context, src FileSource) (*arrow.Schema, error) {
	return f.inspect(ctx, src)
}

func (f *IPC) ScanFile(ctx context.Context, opts *ScanOptions, frag Fragment) (ScanTaskIterator, error) {
	return f.scan(ctx, opts, frag)
}

func (f *IPC) DefaultWriteOptions() WriteOptions {
	return IPCWriteOptions{Compression: "lz4"}
}

func (f *IPC) MakeWriter(w io.Writer, schema *arrow.Schema, opts WriteOptions) (Writer, error) {
	if opts == nil {
		opts = f.DefaultWriteOptions()
	}

	ipo, ok := opts.(IPCWriteOptions)
	if !ok {
		return nil, ErrWrite.WithDetail("Параметры записи %s не подходят для %s", opts.TypeName(), TypeIPC)
	}

	args := []ipc.Option{ipc.WithSchema(schema), ipc.WithAllocator(f.mem)}

	switch strings.ToLower(ipo.Compression) {
	case "":
	case "lz4":
		args = append(args, ipc.WithLZ4())
	case "zstd":
		args = append(args, ipc.WithZstd())
	default:
		return nil, ErrWrite.WithDetail("Неизвестное сжатие: %s", ipo.Compression)
	}

	wrt, err := ipc.NewFileWriter(w, args...)
	if err != nil {
		return nil, ErrWrite.WithReason(err)
	}

	return wrt, nil
}

func (f *IPC) reader(ctx context.Context, src fsys.File) (array.RecordReader, error) {
	rdr, err := ipc.NewFileReader(src, ipc.WithAllocator(f.mem))
	if err != nil {
		return nil, err
	}

	return &ipcBatches{rdr: rdr, refs: 1}, nil
}

// Последовательное чтение батчей IPC-файла
type ipcBatches struct {
	rdr  *ipc.FileReader
	cur  arrow.Record
	idx  int
	err  error
	refs int64
}

func (r *ipcBatches) Retain()               { r.refs++ }
func (r *ipcBatches) Schema() *arrow.Schema { return r.rdr.Schema() }
func (r *ipcBatches) Record() arrow.Record  { return r.cur }
func (r *ipcBatches) Err() error            { return r.err }

func (r *ipcBatches) Release() {
	if r.refs--; r.refs > 0 {
		return
	}

	if r.cur != nil {
		r.cur.Release()
		r.cur = nil
	}

	r.rdr.Close()
}

func (r *ipcBatches) Next() bool {
	if r.cur != nil {
		r.cur.Release()
		r.cur = nil
	}

	if r.err != nil || r.idx >= r.rdr.NumRecords() {
		return false
	}

	if r.cur, r.err = r.rdr.RecordAt(r.idx); r.err != nil {
		return false
	}

	r.idx++
	return true
}
