package fdbscan

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/golang/glog"
	"github.com/shestakovda/fdbscan/fsys"
)

// Открытие последовательного чтения батчей из файла конкретного формата
type opener func(ctx context.Context, file fsys.File) (array.RecordReader, error)

// Общая часть локальных форматов: сканирование по батчам и проверка сигнатур
type local struct {
	options
	open opener
}

func (l *local) inspect(ctx context.Context, src FileSource) (_ *arrow.Schema, err error) {
	var file fsys.File
	var rdr array.RecordReader

	if file, err = openSource(ctx, src); err != nil {
		return nil, ErrInspect.WithReason(err)
	}
	defer file.Close()

	if rdr, err = l.open(ctx, file); err != nil {
		return nil, ErrInspect.WithReason(err)
	}
	defer rdr.Release()

	return rdr.Schema(), nil
}

func (l *local) scan(ctx context.Context, opts *ScanOptions, frag Fragment) (ScanTaskIterator, error) {
	var done bool
	var file fsys.File
	var rdr array.RecordReader

	plan := newPlan(l.mem, opts, frag)

	finish := func() {
		done = true

		if rdr != nil {
			rdr.Release()
		}

		if file != nil {
			if err := file.Close(); err != nil {
				glog.Errorf("%+v", ErrScan.WithReason(err))
			}
		}
	}

	return func() (_ ScanTask, err error) {
		if done {
			return nil, nil
		}

		if rdr == nil {
			if file, err = openSource(ctx, frag.Source); err != nil {
				finish()
				return nil, ErrScan.WithReason(err)
			}

			if rdr, err = l.open(ctx, file); err != nil {
				finish()
				return nil, ErrScan.WithReason(err)
			}
		}

		if !rdr.Next() {
			err = rdr.Err()
			finish()

			if err != nil && !errors.Is(err, io.EOF) {
				return nil, ErrScan.WithReason(err)
			}
			return nil, nil
		}

		rec := rdr.Record()
		rec.Retain()
		return &batchTask{rec: rec, plan: plan}, nil
	}, nil
}

// Проверка сигнатуры в начале и, если задана, в конце файла
func (l *local) supported(ctx context.Context, src FileSource, head, tail []byte) (_ bool, err error) {
	var file fsys.File

	if file, err = openSource(ctx, src); err != nil {
		return false, ErrInspect.WithReason(err)
	}
	defer file.Close()

	size := file.Size()

	if size < int64(len(head)+len(tail)) {
		return false, nil
	}

	buf := make([]byte, len(head))
	if _, err = file.ReadAt(buf, 0); err != nil {
		return false, ErrInspect.WithReason(err)
	}

	if !bytes.Equal(buf, head) {
		return false, nil
	}

	if len(tail) == 0 {
		return true, nil
	}

	buf = make([]byte, len(tail))
	if _, err = file.ReadAt(buf, size-int64(len(tail))); err != nil && !errors.Is(err, io.EOF) {
		return false, ErrInspect.WithReason(err)
	}

	return bytes.Equal(buf, tail), nil
}

func openSource(ctx context.Context, src FileSource) (fsys.File, error) {
	if src.FS == nil {
		return nil, ErrConfig.WithDetail("Не указано хранилище для %s", src.Path)
	}
	return src.FS.Open(ctx, src.Path)
}

// Равенство форматов только по имени типа
func sameType(a, b FileFormat) bool {
	return b != nil && a.TypeName() == b.TypeName()
}
