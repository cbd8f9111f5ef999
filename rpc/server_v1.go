package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/db"
	"github.com/shestakovda/fdbscan/wire"
)

func newServerV1(cn db.Connection, class string, args []Option) *Server {
	return &Server{
		cn:    cn,
		class: class,
		args:  args,
		list:  make([]*endpoint, 0, 4),
		wait:  new(sync.WaitGroup),
	}
}

// Server - обработчики очередей всех методов одного класса
type Server struct {
	cn    db.Connection
	class string
	args  []Option
	list  []*endpoint
	wait  *sync.WaitGroup
	exit  context.CancelFunc
}

// Endpoint - регистрация обработчика метода, параметры дополняют общие параметры сервера
func (s *Server) Endpoint(method string, hdl wire.Handler, args ...Option) error {
	end := newEndpoint(s.class, method, hdl, append(s.args[:len(s.args):len(s.args)], args...))

	if err := end.check(); err != nil {
		return err
	}

	s.list = append(s.list, end)
	return nil
}

// Run - запуск обработки в фоне, до Stop или отмены контекста
func (s *Server) Run(ctx context.Context) {
	var wctx context.Context

	wctx, s.exit = context.WithCancel(ctx)
	s.wait.Add(len(s.list))

	for i := range s.list {
		go s.listen(wctx, s.list[i])
	}
}

// Stop - остановка и ожидание завершения всех обработчиков
func (s *Server) Stop() {
	if s.exit != nil {
		s.exit()
	}

	s.wait.Wait()
}

func (s *Server) listen(ctx context.Context, end *endpoint) {
	var err error

	defer func() {
		// Перезапуск только в случае ошибки
		if err != nil {
			// Которая обработана и требует перезапуска
			if repeat, wait := end.OnListen(err); repeat {
				// Возможно, не сразу готовы обрабатывать снова
				if wait > 0 {
					time.Sleep(wait)
				}

				// И только если мы вообще можем еще запускать
				if ctx.Err() == nil {
					// Тогда стартуем заново и в s.wait ничего не ставим
					go s.listen(ctx, end)
					return
				}
			}
		}

		// В остальных случаях, нечего ловить, закрываем ожидание
		s.wait.Done()
	}()

	// Отлавливаем панику и превращаем в ошибку
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = ErrListen.WithReason(e)
			} else {
				err = ErrListen.WithDebug(errx.Debug{"panic": rec})
			}
		}
	}()

	for ctx.Err() == nil {
		var list []task
		var waiter db.Waiter

		if list, waiter, err = end.claim(s.cn); err != nil {
			err = ErrListen.WithReason(err).WithDetail("%s.%s", s.class, end.Method)
			return
		}

		if len(list) == 0 {
			end.wait(ctx, waiter)
			continue
		}

		for i := range list {
			if err = end.confirm(s.cn, list[i], end.exec(ctx, list[i])); err != nil {
				err = ErrListen.WithReason(err).WithDetail("%s.%s", s.class, end.Method)
				return
			}
		}
	}
}
