package rpc

import (
	"time"

	"github.com/golang/glog"
)

// Option - дополнительный параметр клиента или обработчика
type Option func(*options)

func getOpts(args []Option) (o options) {
	o.pack = 1
	o.refresh = time.Second
	o.timeout = time.Minute
	o.onListen = defOnListen

	for i := range args {
		args[i](&o)
	}
	return
}

type options struct {
	pack     int
	refresh  time.Duration
	timeout  time.Duration
	onListen ListenHandler
}

// Timeout - сколько клиент ждет ответа обработчика
func Timeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Refresh - как часто обработчик перепроверяет очередь без сигнала о новых задачах
func Refresh(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.refresh = d
		}
	}
}

// Pack - сколько задач обработчик забирает за раз
func Pack(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pack = n
		}
	}
}

func OnListenError(h ListenHandler) Option {
	return func(o *options) {
		if h != nil {
			o.onListen = h
		}
	}
}

func defOnListen(err error) (bool, time.Duration) {
	glog.Errorf("%+v", err)
	return true, time.Second
}
