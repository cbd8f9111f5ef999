package rpc

import (
	"context"

	"github.com/apple/foundationdb/bindings/go/src/fdb"
	"github.com/golang/glog"
	"github.com/shestakovda/fdbscan/db"
	"github.com/shestakovda/fdbscan/wire"
	"github.com/shestakovda/typex"
)

func newClientV1(cn db.Connection, args []Option) *Client {
	return &Client{
		cn:   cn,
		opts: getOpts(args),
	}
}

// Client - отправка вызовов в очереди классов и ожидание ответа
type Client struct {
	cn   db.Connection
	opts options
}

// Exec - синхронный вызов метода класса, возвращает конверт ответа
func (c *Client) Exec(ctx context.Context, call wire.Call) (_ []byte, err error) {
	var waiter db.Waiter

	if call.Class == "" || call.Method == "" {
		return nil, ErrExec.WithDetail("Не указан класс или метод: %s.%s", call.Class, call.Method)
	}

	body := wire.MarshalCall(call)
	uid := []byte(typex.NewUUID())
	item := newItem()
	q := queueKey(call.Class, call.Method)

	// Важно выставить ожидание по ключу раньше, чем закоммитим транзакцию
	// Чтобы не проворонить результат обработчика, который может сработать оч быстро
	if err = c.cn.Write(func(w db.Writer) error {
		w.Upsert(
			fdb.KeyValue{Key: sub(q, nsRequest, uid), Value: body},
			fdb.KeyValue{Key: sub(q, qList, item), Value: uid},
		)

		w.Increment(sub(q, qTotalWait), 1)

		// Триггерим обработчики забрать новые задачи
		w.Increment(sub(q, qTrigger), 1)

		waiter = w.Watch(sub(q, nsResponse, uid))
		return nil
	}); err != nil {
		return nil, ErrExec.WithReason(err)
	}

	// В любом случае, подчищаем за собой данные по задаче
	defer c.clean(q, uid, item)

	wctx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	if err = waiter.Resolve(wctx); err != nil {
		return nil, ErrExec.WithReason(err).WithDetail("%s.%s", call.Class, call.Method)
	}

	return c.result(q, uid)
}

// Stat - число задач метода в ожидании и в работе
func (c *Client) Stat(class, method string) (wait, work int64, err error) {
	q := queueKey(class, method)

	if err = c.cn.Read(func(r db.Reader) error {
		wait = counter(r.Data(sub(q, qTotalWait)))
		work = counter(r.Data(sub(q, qTotalWork)))
		return nil
	}); err != nil {
		return 0, 0, ErrStat.WithReason(err)
	}

	return wait, work, nil
}

func (c *Client) result(q fdb.Key, uid []byte) (val []byte, err error) {
	if err = c.cn.Read(func(r db.Reader) error {
		val = r.Data(sub(q, nsResponse, uid))
		return nil
	}); err != nil {
		return nil, ErrResult.WithReason(err)
	}

	if len(val) == 0 {
		return nil, ErrResult.WithStack()
	}

	return val, nil
}

// По сути ошибка очистки ни на что не влияет, поэтому просто принтим ее
func (c *Client) clean(q fdb.Key, uid, item []byte) {
	if err := c.cn.Write(func(w db.Writer) error {
		// Задача могла так и не дойти до обработчика
		if len(w.Data(sub(q, qList, item))) > 0 {
			w.Delete(sub(q, qList, item))
			w.Increment(sub(q, qTotalWait), -1)
		}

		w.Delete(sub(q, nsRequest, uid))
		w.Delete(sub(q, nsResponse, uid))
		return nil
	}); err != nil {
		glog.Errorf("%+v", ErrExec.WithReason(err))
	}
}
