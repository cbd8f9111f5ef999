package cls

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/golang/glog"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan"
	"github.com/shestakovda/fdbscan/fsys"
	"github.com/shestakovda/fdbscan/wire"
)

func newClassV1(fs fsys.FileSystem, args []Option) *Class {
	return &Class{
		fs:   fs,
		opts: getOpts(args),
	}
}

// Class - логика сканирования, исполняемая рядом с объектами хранилища
//
// Любой ответ - это конверт wire.Reply, ошибки кодируются стабильными кодами.
type Class struct {
	fs   fsys.FileSystem
	opts options
}

// Name - имя класса
func (c *Class) Name() string { return c.opts.name }

// Methods - обработчики по именам методов, для регистрации в транспорте
func (c *Class) Methods() map[string]wire.Handler {
	return map[string]wire.Handler{
		wire.MethodScan:    c.Scan,
		wire.MethodInspect: c.Inspect,
	}
}

// Handle - выбор обработчика по имени метода
func (c *Class) Handle(ctx context.Context, call wire.Call) []byte {
	if hdl, ok := c.Methods()[call.Method]; ok {
		return hdl(ctx, call)
	}

	err := ErrMethod.WithDetail("%s.%s", call.Class, call.Method)
	glog.Errorf("%+v", err)
	return wire.ReplyError(wire.ErrScanFragment.WithReason(err))
}

// Exec - вызов в том же процессе, без сети
func (c *Class) Exec(ctx context.Context, call wire.Call) ([]byte, error) {
	if call.Class != c.opts.name {
		return nil, ErrMethod.WithDetail("Класс %s не обслуживается, ожидается %s", call.Class, c.opts.name)
	}
	return c.Handle(ctx, call), nil
}

// Scan - сканирование объекта по запросу, ответ содержит сжатую таблицу результата
func (c *Class) Scan(ctx context.Context, call wire.Call) (rep []byte) {
	var err error
	var data []byte
	var tbl wire.Table
	var req wire.ScanRequest
	var format fdbscan.FileFormat

	defer func() {
		// Отлавливаем панику и превращаем в ошибку
		if rec := recover(); rec != nil {
			err = wire.ErrScanFragment.WithDebug(errx.Debug{"panic": rec, "object": call.Object})
		}

		if err != nil {
			glog.Errorf("%+v", err)
			rep = wire.ReplyError(err)
		}
	}()

	if err = c.allow(call); err != nil {
		return
	}

	if req, err = wire.DecodeScanRequest(call.Body); err != nil {
		return
	}

	if err = c.fresh(ctx, call.Object, req.FileSize); err != nil {
		return
	}

	if format, err = fdbscan.NewLocal(req.FileType, c.opts.formatArgs()...); err != nil {
		err = wire.ErrScanFragment.WithReason(err)
		return
	}

	opts := fdbscan.ScanOptions{
		Filter:     req.Filter,
		Projection: req.ProjectedSchema,
		Dataset:    req.DatasetSchema,
		UseThreads: c.opts.threads,
	}

	frag := fdbscan.Fragment{
		Source:    fdbscan.FileSource{Path: call.Object, FS: c.fs},
		Partition: req.Partition,
	}

	if tbl, err = fdbscan.Scan(ctx, format, &opts, frag); err != nil {
		err = wire.ErrScanFragment.WithReason(err)
		return
	}
	defer tbl.Release()

	if data, err = wire.EncodeTable(tbl, c.opts.aggressive); err != nil {
		return
	}

	glog.V(2).Infof("scan %s by %s: %d rows, %d bytes", call.Object, call.User, tbl.NumRows(), len(data))
	return wire.ReplyOK(data)
}

// Inspect - схема объекта
func (c *Class) Inspect(ctx context.Context, call wire.Call) (rep []byte) {
	var err error
	var data []byte
	var ftype wire.FileType
	var schema *arrow.Schema
	var format fdbscan.FileFormat

	defer func() {
		// Отлавливаем панику и превращаем в ошибку
		if rec := recover(); rec != nil {
			err = wire.ErrScanFragment.WithDebug(errx.Debug{"panic": rec, "object": call.Object})
		}

		if err != nil {
			glog.Errorf("%+v", err)
			rep = wire.ReplyError(err)
		}
	}()

	if err = c.allow(call); err != nil {
		return
	}

	if ftype, err = wire.DecodeInspectRequest(call.Body); err != nil {
		return
	}

	if format, err = fdbscan.NewLocal(ftype, c.opts.formatArgs()...); err != nil {
		err = wire.ErrScanFragment.WithReason(err)
		return
	}

	if schema, err = format.Inspect(ctx, fdbscan.FileSource{Path: call.Object, FS: c.fs}); err != nil {
		err = wire.ErrScanFragment.WithReason(err)
		return
	}

	if data, err = wire.MarshalSchema(schema); err != nil {
		err = wire.ErrSerializeTable.WithReason(err)
		return
	}

	return wire.ReplyOK(data)
}

func (c *Class) allow(call wire.Call) error {
	if c.opts.cluster != "" && call.Cluster != "" && call.Cluster != c.opts.cluster {
		return wire.ErrScanFragment.WithReason(ErrForbidden.WithDetail("Кластер %s не обслуживается", call.Cluster))
	}

	if c.opts.pool != "" && call.Pool != "" && call.Pool != c.opts.pool {
		return wire.ErrScanFragment.WithReason(ErrForbidden.WithDetail("Пул %s не обслуживается", call.Pool))
	}

	if c.opts.users != nil {
		if _, ok := c.opts.users[call.User]; !ok {
			return wire.ErrScanFragment.WithReason(ErrForbidden.WithDetail("Пользователь %s не допущен", call.User))
		}
	}

	return nil
}

func (c *Class) fresh(ctx context.Context, object string, size int64) error {
	info, err := c.fs.Stat(ctx, object)
	if err != nil {
		return wire.ErrScanFragment.WithReason(err)
	}

	if info.Size() != size {
		return wire.ErrScanFragment.WithReason(ErrStale.WithDetail("%s: %d != %d", object, info.Size(), size))
	}

	return nil
}
