package amqprpc

import (
	"context"
	"errors"
	"sync"

	"github.com/golang/glog"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/wire"
)

func newServerV1(conn *amqp.Connection, class string, args []Option) *Server {
	return &Server{
		conn:  conn,
		class: class,
		opts:  getOpts(args),
		list:  make(map[string]wire.Handler, 4),
		wait:  new(sync.WaitGroup),
	}
}

// Server - обработчики очередей методов одного класса
type Server struct {
	conn  *amqp.Connection
	class string
	opts  options
	list  map[string]wire.Handler
	chans []*amqp.Channel
	wait  *sync.WaitGroup
	exit  context.CancelFunc
}

// Endpoint - регистрация обработчика метода
func (s *Server) Endpoint(method string, hdl wire.Handler) error {
	if method == "" {
		return ErrBadEndpoint.WithDetail("Отсутствует имя метода")
	}

	if hdl == nil {
		return ErrBadEndpoint.WithDetail("Отсутствует обработчик задачи")
	}

	s.list[method] = hdl
	return nil
}

// Run - объявление очередей и запуск обработки в фоне, до Stop или отмены контекста
func (s *Server) Run(ctx context.Context) (err error) {
	var wctx context.Context

	wctx, s.exit = context.WithCancel(ctx)

	for method, hdl := range s.list {
		var ch *amqp.Channel
		var msgs <-chan amqp.Delivery

		name := QueueName(s.class, method)

		if ch, err = s.conn.Channel(); err != nil {
			s.Stop()
			return ErrChannel.WithReason(err)
		}

		s.chans = append(s.chans, ch)

		if err = ch.Qos(s.opts.prefetch, 0, false); err != nil {
			s.Stop()
			return ErrChannel.WithReason(err)
		}

		if _, err = ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			s.Stop()
			return ErrDeclare.WithReason(err).WithDetail("%s", name)
		}

		if msgs, err = ch.Consume(name, "", false, false, false, false, nil); err != nil {
			s.Stop()
			return ErrDeclare.WithReason(err).WithDetail("%s", name)
		}

		s.wait.Add(1)
		go s.listen(wctx, ch, method, hdl, msgs)
	}

	return nil
}

// Stop - остановка и ожидание завершения всех обработчиков
func (s *Server) Stop() {
	if s.exit != nil {
		s.exit()
	}

	for i := range s.chans {
		if err := s.chans[i].Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			glog.Errorf("%+v", ErrChannel.WithReason(err))
		}
	}

	s.chans = nil
	s.wait.Wait()
}

func (s *Server) listen(ctx context.Context, ch *amqp.Channel, method string, hdl wire.Handler, msgs <-chan amqp.Delivery) {
	defer s.wait.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			rep := s.exec(ctx, method, hdl, msg)

			if err := ch.PublishWithContext(ctx, "", msg.ReplyTo, false, false, amqp.Publishing{
				ContentType:   "application/octet-stream",
				CorrelationId: msg.CorrelationId,
				Body:          rep,
			}); err != nil {
				glog.Errorf("%+v", ErrListen.WithReason(err).WithDetail("%s.%s", s.class, method))
			}

			if err := msg.Ack(false); err != nil {
				glog.Errorf("%+v", ErrListen.WithReason(err).WithDetail("%s.%s", s.class, method))
			}
		}
	}
}

func (s *Server) exec(ctx context.Context, method string, hdl wire.Handler, msg amqp.Delivery) (rep []byte) {
	defer func() {
		// Отлавливаем панику и превращаем в ошибку
		if rec := recover(); rec != nil {
			rep = wire.ReplyError(wire.ErrScanFragment.WithDebug(errx.Debug{"panic": rec, "method": method}))
		}
	}()

	return hdl(ctx, wire.Call{
		Class:   s.class,
		Method:  method,
		Object:  header(msg.Headers, hdrObject),
		User:    header(msg.Headers, hdrUser),
		Pool:    header(msg.Headers, hdrPool),
		Cluster: header(msg.Headers, hdrCluster),
		Body:    msg.Body,
	})
}

func header(h amqp.Table, key string) string {
	if val, ok := h[key].(string); ok {
		return val
	}
	return ""
}
