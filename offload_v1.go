package fdbscan

import (
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/golang/glog"
	"github.com/shestakovda/fdbscan/expr"
	"github.com/shestakovda/fdbscan/wire"
)

// OffloadConfig - адрес исполнителя, неизменяем после создания формата
type OffloadConfig struct {
	// Формат файлов фрагментов в хранилище: parquet или ipc
	Format string

	// Путь к конфигурации кластера хранилища
	ClusterFile string

	// Пул данных, в котором лежат объекты фрагментов
	DataPool string

	// Пользователь, от имени которого выполняются вызовы
	User string

	// Имя кластера
	Cluster string

	// Имя класса исполнителя
	Class string
}

func newOffloadV1(cfg OffloadConfig, tr Transport, args []Option) (_ *Offload, err error) {
	if tr == nil {
		return nil, ErrConfig.WithDetail("Не указан транспорт")
	}

	if cfg.Format == "" {
		cfg.Format = TypeParquet
	}

	if cfg.Class == "" {
		cfg.Class = TypeOffload
	}

	f := Offload{
		cfg:  cfg,
		tr:   tr,
		opts: getOpts(args),
	}

	if f.ftype, err = wire.ParseFileType(cfg.Format); err != nil {
		return nil, ErrConfig.WithReason(err)
	}

	if f.local, err = NewLocal(f.ftype, args...); err != nil {
		return nil, ErrConfig.WithReason(err)
	}

	return &f, nil
}

// Offload - формат, который сканирует фрагменты на стороне хранилища
//
// Фильтр и проекция уходят исполнителю рядом с объектом, обратно приходит только результат.
type Offload struct {
	cfg   OffloadConfig
	opts  options
	ftype wire.FileType
	local FileFormat
	tr    Transport
}

// Config - копия конфигурации
func (f *Offload) Config() OffloadConfig { return f.cfg }

// FileType - формат файлов фрагментов
func (f *Offload) FileType() wire.FileType { return f.ftype }

func (f *Offload) TypeName() string { return TypeOffload }

// Equals - равенство только по имени типа, конфигурация не сравнивается
func (f *Offload) Equals(other FileFormat) bool { return sameType(f, other) }

// IsSupported - исполнитель сам разбирается с форматом, поэтому всегда true
func (f *Offload) IsSupported(ctx context.Context, src FileSource) (bool, error) { return true, nil }

func (f *Offload) Splittable() bool { return true }

func (f *Offload) DefaultWriteOptions() WriteOptions { return nil }

func (f *Offload) MakeWriter(w io.Writer, schema *arrow.Schema, opts WriteOptions) (Writer, error) {
	return nil, ErrUnsupported.WithDetail("Запись файлов в формате %s не поддерживается", TypeOffload)
}

// Inspect - схема файла локальным чтением или, если включено, через исполнителя
func (f *Offload) Inspect(ctx context.Context, src FileSource) (_ *arrow.Schema, err error) {
	var rep, data []byte
	var schema *arrow.Schema

	if !f.opts.remoteInspect && src.FS != nil {
		return f.local.Inspect(ctx, src)
	}

	body := wire.EncodeInspectRequest(f.ftype)
	m := f.opts.measure(opInspect)
	defer func() { m.done(err, len(body), len(rep), 0) }()

	if rep, err = f.tr.Exec(ctx, f.call(wire.MethodInspect, src.Path, body)); err != nil {
		return nil, ErrInspect.WithReason(err)
	}

	if data, err = wire.DecodeReply(rep); err != nil {
		return nil, ErrInspect.WithReason(err)
	}

	if schema, err = wire.UnmarshalSchema(data); err != nil {
		return nil, ErrInspect.WithReason(err)
	}

	return schema, nil
}

// ScanFile - одна ленивая задача, вся работа выполняется при первом обращении к итератору
func (f *Offload) ScanFile(ctx context.Context, opts *ScanOptions, frag Fragment) (ScanTaskIterator, error) {
	var done bool

	if opts == nil {
		opts = new(ScanOptions)
	}

	return func() (ScanTask, error) {
		if done {
			return nil, nil
		}
		done = true

		tbl, err := f.scan(ctx, opts, frag)
		if err != nil {
			return nil, err
		}

		return &readyTask{recs: tbl.Batches}, nil
	}, nil
}

func (f *Offload) scan(ctx context.Context, opts *ScanOptions, frag Fragment) (tbl wire.Table, err error) {
	var rep, buf, data []byte

	m := f.opts.measure(opScan)

	defer func() {
		if err != nil {
			err = wire.ErrScanFragment.WithReason(err).WithDetail("%s", frag.Source.Path)
			glog.V(1).Infof("%+v", err)
		}
		m.done(err, len(buf), len(rep), tbl.NumRows())
	}()

	if frag.Source.FS == nil {
		return tbl, ErrConfig.WithDetail("Не указано хранилище для %s", frag.Source.Path)
	}

	info, err := frag.Source.FS.Stat(ctx, frag.Source.Path)
	if err != nil {
		return tbl, err
	}

	req := wire.ScanRequest{
		Filter:          opts.Filter,
		Partition:       frag.Partition,
		ProjectedSchema: opts.Projection,
		DatasetSchema:   opts.Dataset,
		FileSize:        info.Size(),
		FileType:        f.ftype,
	}

	if req.DatasetSchema == nil {
		if req.DatasetSchema, err = f.Inspect(ctx, frag.Source); err != nil {
			return tbl, err
		}
	}

	if req.ProjectedSchema == nil {
		req.ProjectedSchema = req.DatasetSchema
	}

	if buf, err = wire.EncodeScanRequest(req); err != nil {
		return tbl, err
	}

	if rep, err = f.tr.Exec(ctx, f.call(wire.MethodScan, frag.Source.Path, buf)); err != nil {
		return tbl, err
	}

	if data, err = wire.DecodeReply(rep); err != nil {
		return tbl, err
	}

	if tbl, err = wire.DecodeTable(data, opts.UseThreads); err != nil {
		return tbl, err
	}

	if f.opts.verify {
		if err = f.check(ctx, tbl, req); err != nil {
			tbl.Release()
			return wire.Table{}, err
		}
	}

	return tbl, nil
}

func (f *Offload) call(method, object string, body []byte) wire.Call {
	return wire.Call{
		Class:   f.cfg.Class,
		Method:  method,
		Object:  object,
		User:    f.cfg.User,
		Pool:    f.cfg.DataPool,
		Cluster: f.cfg.Cluster,
		Body:    body,
	}
}

// Проверка результата: схема совпадает с проекцией, фильтр истинен на всех строках
func (f *Offload) check(ctx context.Context, tbl wire.Table, req wire.ScanRequest) error {
	if !sameFields(tbl.Schema, req.ProjectedSchema) {
		return ErrVerify.WithDetail("Схема результата расходится с проекцией")
	}

	if expr.IsTrue(req.Filter) {
		return nil
	}

	for _, name := range expr.Fields(req.Filter) {
		if len(req.ProjectedSchema.FieldIndices(name)) == 0 {
			return nil
		}
	}

	for i := range tbl.Batches {
		mask, err := expr.Mask(ctx, req.Filter, tbl.Batches[i], f.opts.mem)
		if err != nil {
			return ErrVerify.WithReason(err)
		}

		for j := 0; j < mask.Len(); j++ {
			if !mask.Value(j) {
				mask.Release()
				return ErrVerify.WithDetail("Строка %d батча %d не проходит фильтр", j, i)
			}
		}

		mask.Release()
	}

	return nil
}

func sameFields(a, b *arrow.Schema) bool {
	if a == nil || b == nil || a.NumFields() != b.NumFields() {
		return false
	}

	for i := 0; i < a.NumFields(); i++ {
		fa, fb := a.Field(i), b.Field(i)

		if fa.Name != fb.Name || !arrow.TypeEqual(fa.Type, fb.Type) {
			return false
		}
	}

	return true
}
