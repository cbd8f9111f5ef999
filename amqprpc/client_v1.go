package amqprpc

import (
	"context"
	"strconv"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shestakovda/fdbscan/wire"
)

func newClientV1(conn *amqp.Connection, args []Option) (_ *Client, err error) {
	var rep amqp.Queue
	var msgs <-chan amqp.Delivery

	c := Client{
		opts: getOpts(args),
		wait: make(map[string]chan []byte, 16),
		done: make(chan struct{}),
	}

	if c.ch, err = conn.Channel(); err != nil {
		return nil, ErrChannel.WithReason(err)
	}

	if rep, err = c.ch.QueueDeclare("", false, true, true, false, nil); err != nil {
		c.ch.Close()
		return nil, ErrDeclare.WithReason(err)
	}

	if msgs, err = c.ch.Consume(rep.Name, "", true, true, false, false, nil); err != nil {
		c.ch.Close()
		return nil, ErrDeclare.WithReason(err)
	}

	c.reply = rep.Name
	go c.receive(msgs)
	return &c, nil
}

// Client - отправка вызовов в очереди методов и ожидание ответов
type Client struct {
	sync.Mutex
	ch    *amqp.Channel
	opts  options
	reply string
	wait  map[string]chan []byte
	done  chan struct{}
}

// Exec - синхронный вызов метода класса, возвращает конверт ответа
func (c *Client) Exec(ctx context.Context, call wire.Call) ([]byte, error) {
	corr := uuid.NewString()
	res := make(chan []byte, 1)

	c.Lock()
	c.wait[corr] = res
	c.Unlock()

	defer func() {
		c.Lock()
		delete(c.wait, corr)
		c.Unlock()
	}()

	wctx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:   "application/octet-stream",
		CorrelationId: corr,
		ReplyTo:       c.reply,
		Expiration:    strconv.FormatInt(c.opts.timeout.Milliseconds(), 10),
		Headers: amqp.Table{
			hdrObject:  call.Object,
			hdrUser:    call.User,
			hdrPool:    call.Pool,
			hdrCluster: call.Cluster,
		},
		Body: call.Body,
	}

	// Канал не потокобезопасен на публикацию
	c.Lock()
	err := c.ch.PublishWithContext(wctx, "", QueueName(call.Class, call.Method), false, false, msg)
	c.Unlock()

	if err != nil {
		return nil, ErrExec.WithReason(err)
	}

	select {
	case rep := <-res:
		return rep, nil
	case <-c.done:
		return nil, ErrExec.WithReason(ErrClosed)
	case <-wctx.Done():
		return nil, ErrExec.WithReason(ErrTimeout.WithReason(wctx.Err())).WithDetail("%s.%s", call.Class, call.Method)
	}
}

// Close - закрытие канала, ожидающие вызовы завершаются ошибкой
func (c *Client) Close() error {
	if err := c.ch.Close(); err != nil {
		return ErrChannel.WithReason(err)
	}
	return nil
}

func (c *Client) receive(msgs <-chan amqp.Delivery) {
	defer close(c.done)

	for msg := range msgs {
		c.Lock()
		res, ok := c.wait[msg.CorrelationId]
		c.Unlock()

		if !ok {
			glog.V(1).Infof("amqp: late reply %s", msg.CorrelationId)
			continue
		}

		select {
		case res <- msg.Body:
		default:
		}
	}
}
