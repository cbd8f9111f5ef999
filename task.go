package fdbscan

import (
	"context"
	"runtime"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/golang/glog"
	"github.com/panjf2000/ants/v2"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/wire"
)

var (
	taskPool     *ants.Pool
	taskPoolErr  error
	taskPoolOnce sync.Once
)

func getTaskPool() (*ants.Pool, error) {
	taskPoolOnce.Do(func() {
		taskPool, taskPoolErr = ants.NewPool(runtime.GOMAXPROCS(0), ants.WithPanicHandler(func(rec interface{}) {
			glog.Errorf("%+v", ErrScan.WithDebug(errx.Debug{"panic": rec}))
		}))
	})
	return taskPool, taskPoolErr
}

// Задача над одним батчем файла
type batchTask struct {
	rec  arrow.Record
	plan *plan
}

func (t *batchTask) Execute(ctx context.Context) ([]arrow.Record, error) {
	rec := t.rec

	if rec == nil {
		return nil, ErrScan.WithDetail("Задача уже выполнена")
	}

	t.rec = nil
	defer rec.Release()

	res, err := t.plan.apply(ctx, rec)
	if err != nil {
		return nil, err
	}

	if res.NumRows() == 0 {
		res.Release()
		return nil, nil
	}

	return []arrow.Record{res}, nil
}

// Задача с уже готовым результатом
type readyTask struct {
	recs []arrow.Record
}

func (t *readyTask) Execute(ctx context.Context) ([]arrow.Record, error) {
	recs := t.recs
	t.recs = nil
	return recs, nil
}

func (t *batchTask) Release() {
	if t.rec != nil {
		t.rec.Release()
		t.rec = nil
	}
}

func (t *readyTask) Release() {
	for i := range t.recs {
		t.recs[i].Release()
	}
	t.recs = nil
}

// Задачи держат батчи до выполнения, невыполненные нужно освободить
type releaser interface {
	Release()
}

func releaseTasks(tasks []ScanTask) {
	for i := range tasks {
		if r, ok := tasks[i].(releaser); ok {
			r.Release()
		}
	}
}

// Collect - выполнение всех задач с сохранением порядка батчей
//
// С useThreads задачи выполняются параллельно в общем пуле.
func Collect(ctx context.Context, it ScanTaskIterator, useThreads bool) (_ []arrow.Record, err error) {
	var task ScanTask

	tasks := make([]ScanTask, 0, 8)
	defer func() { releaseTasks(tasks) }()

	for {
		if task, err = it(); err != nil {
			return nil, err
		}

		if task == nil {
			break
		}

		tasks = append(tasks, task)
	}

	parts := make([][]arrow.Record, len(tasks))

	if useThreads && len(tasks) > 1 {
		err = executeParallel(ctx, tasks, parts)
	} else {
		for i := range tasks {
			if parts[i], err = tasks[i].Execute(ctx); err != nil {
				break
			}
		}
	}

	res := make([]arrow.Record, 0, len(tasks))

	for i := range parts {
		res = append(res, parts[i]...)
	}

	if err != nil {
		for i := range res {
			res[i].Release()
		}
		return nil, err
	}

	return res, nil
}

func executeParallel(ctx context.Context, tasks []ScanTask, parts [][]arrow.Record) (err error) {
	var pool *ants.Pool

	if pool, err = getTaskPool(); err != nil {
		return ErrScan.WithReason(err)
	}

	wg := new(sync.WaitGroup)
	errs := make([]error, len(tasks))

	for i := range tasks {
		i := i
		wg.Add(1)

		job := func() {
			defer wg.Done()

			// Отлавливаем панику и превращаем в ошибку
			defer func() {
				if rec := recover(); rec != nil {
					errs[i] = ErrScan.WithDebug(errx.Debug{"panic": rec, "task": i})
				}
			}()

			parts[i], errs[i] = tasks[i].Execute(ctx)
		}

		if exp := pool.Submit(job); exp != nil {
			wg.Done()
			errs[i] = ErrScan.WithReason(exp)
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

// Scan - полное сканирование фрагмента в таблицу со схемой проекции
func Scan(ctx context.Context, format FileFormat, opts *ScanOptions, frag Fragment) (tbl wire.Table, err error) {
	var it ScanTaskIterator

	if opts == nil {
		opts = new(ScanOptions)
	}

	if it, err = format.ScanFile(ctx, opts, frag); err != nil {
		return tbl, err
	}

	if tbl.Batches, err = Collect(ctx, it, opts.UseThreads); err != nil {
		return tbl, err
	}

	if tbl.Schema = opts.Projection; tbl.Schema == nil {
		tbl.Schema = opts.Dataset
	}

	if tbl.Schema == nil && len(tbl.Batches) > 0 {
		tbl.Schema = tbl.Batches[0].Schema()
	}

	if tbl.Schema == nil {
		if tbl.Schema, err = format.Inspect(ctx, frag.Source); err != nil {
			return tbl, err
		}
	}

	return tbl, nil
}
