package amqprpc

import (
	"time"
)

// Option - дополнительный параметр клиента или сервера
type Option func(*options)

func getOpts(args []Option) (o options) {
	o.timeout = time.Minute
	o.prefetch = 1

	for i := range args {
		args[i](&o)
	}
	return
}

type options struct {
	timeout  time.Duration
	prefetch int
}

// Timeout - сколько клиент ждет ответа, заодно срок жизни запроса в очереди
func Timeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Prefetch - сколько сообщений обработчик берет из очереди заранее
func Prefetch(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.prefetch = n
		}
	}
}
