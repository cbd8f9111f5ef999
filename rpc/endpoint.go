package rpc

import (
	"context"
	"math/rand"
	"time"

	"github.com/apple/foundationdb/bindings/go/src/fdb"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/db"
	"github.com/shestakovda/fdbscan/wire"
)

func newEndpoint(class, method string, hdl wire.Handler, args []Option) *endpoint {
	opts := getOpts(args)

	return &endpoint{
		Method:   method,
		Queue:    queueKey(class, method),
		OnTask:   hdl,
		OnListen: opts.onListen,
		options:  opts,
	}
}

type endpoint struct {
	options
	Method   string
	Queue    fdb.Key
	OnTask   wire.Handler
	OnListen ListenHandler
}

// Задача, взятая в работу
type task struct {
	uid  []byte
	body []byte
}

func (e *endpoint) check() error {
	if e.Method == "" {
		return ErrBadEndpoint.WithDetail("Отсутствует имя метода")
	}

	if e.OnListen == nil {
		return ErrBadEndpoint.WithDetail("Отсутствует обработчик ошибки подписки")
	}

	if e.OnTask == nil {
		return ErrBadEndpoint.WithDetail("Отсутствует обработчик задачи")
	}

	return nil
}

// Критически важно забирать задачи в одной физической транзакции
// Иначе остается шанс, что одну и ту же задачу возьмут в обработку два воркера
func (e *endpoint) claim(cn db.Connection) (list []task, waiter db.Waiter, err error) {
	q := e.Queue

	if err = cn.Write(func(w db.Writer) error {
		list = list[:0]
		waiter = nil

		items := w.List(sub(q, qList), sub(q, qList, itemsUntil(time.Now())), uint64(e.pack), false, false)

		if len(items) == 0 {
			waiter = w.Watch(sub(q, qTrigger))
			return nil
		}

		for i := range items {
			uid := items[i].Value
			w.Delete(items[i].Key)

			// Клиент уже ушел, отвечать некому
			body := w.Data(sub(q, nsRequest, uid))
			if len(body) == 0 {
				continue
			}

			w.Upsert(fdb.KeyValue{Key: sub(q, qWork, uid), Value: items[i].Key})
			list = append(list, task{uid: uid, body: body})
		}

		w.Increment(sub(q, qTotalWait), -int64(len(items)))
		w.Increment(sub(q, qTotalWork), int64(len(list)))
		return nil
	}); err != nil {
		return nil, nil, ErrClaim.WithReason(err)
	}

	return list, waiter, nil
}

func (e *endpoint) exec(ctx context.Context, t task) (rep []byte) {
	defer func() {
		// Отлавливаем панику и превращаем в ошибку
		if rec := recover(); rec != nil {
			rep = wire.ReplyError(wire.ErrScanFragment.WithDebug(errx.Debug{"panic": rec, "method": e.Method}))
		}
	}()

	call, err := wire.UnmarshalCall(t.body)
	if err != nil {
		return wire.ReplyError(wire.ErrDeserializeRequest.WithReason(err))
	}

	return e.OnTask(ctx, call)
}

func (e *endpoint) confirm(cn db.Connection, t task, rep []byte) error {
	q := e.Queue

	if err := cn.Write(func(w db.Writer) error {
		// Ответ нужен, только пока клиент его ждет
		if len(w.Data(sub(q, nsRequest, t.uid))) > 0 {
			w.Upsert(fdb.KeyValue{Key: sub(q, nsResponse, t.uid), Value: rep})
		}

		w.Delete(sub(q, qWork, t.uid))
		w.Increment(sub(q, qTotalWork), -1)
		return nil
	}); err != nil {
		return ErrConfirm.WithReason(err)
	}

	return nil
}

// Даже если waiter установлен, то при отсутствии других публикаций мы тут зависнем навечно
func (e *endpoint) wait(ctx context.Context, waiter db.Waiter) {
	if waiter == nil {
		return
	}

	wctx, cancel := context.WithTimeout(ctx, e.refresh)
	defer cancel()

	if err := waiter.Resolve(wctx); err == nil {
		// Если запущено много обработчиков, все они рванут забирать события одновременно.
		// Небольшая случайная задержка уменьшает число конфликтов транзакций
		time.Sleep(time.Duration(rand.Intn(20)) * time.Millisecond)
	}
}
