package db

import (
	"context"

	"github.com/apple/foundationdb/bindings/go/src/fdb"
	"github.com/shestakovda/errx"
)

// Waiter - ожидание изменения ключа, например ответа на запрос или счетчика очереди
type Waiter interface {
	Clear()
	Resolve(ctx context.Context) error
}

// Срабатывает только после фиксации транзакции, в которой был создан
type keyWatch struct {
	key fdb.Key
	fut fdb.FutureNil
}

func (w *keyWatch) Clear() { w.fut.Cancel() }

func (w *keyWatch) Resolve(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		w.Clear()
		return ErrWait.WithReason(err).WithDebug(errx.Debug{"key": w.key.String()})
	}

	done := make(chan error, 1)

	go func() { done <- w.fut.Get() }()

	select {
	case err := <-done:
		if err != nil {
			return ErrWait.WithReason(err).WithDebug(errx.Debug{"key": w.key.String()})
		}
		return nil
	case <-ctx.Done():
		// Get в горутине вернется с ошибкой отмены
		w.Clear()
		return ErrWait.WithReason(ctx.Err()).WithDebug(errx.Debug{"key": w.key.String()})
	}
}
