package fdbscan

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Option - дополнительный параметр формата
type Option func(*options)

func getOpts(args []Option) (o options) {
	o.mem = memory.DefaultAllocator
	o.batchSize = 64 * 1024

	for i := range args {
		args[i](&o)
	}
	return
}

type options struct {
	mem       memory.Allocator
	batchSize int64

	verify        bool
	metrics       bool
	remoteInspect bool
}

// Allocator - нестандартный аллокатор для батчей
func Allocator(mem memory.Allocator) Option {
	return func(o *options) {
		if mem != nil {
			o.mem = mem
		}
	}
}

// BatchSize - максимальное число строк в батче при локальном чтении Parquet
func BatchSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// RemoteInspect - получать схему файла через исполнителя, а не чтением файла
func RemoteInspect() Option {
	return func(o *options) {
		o.remoteInspect = true
	}
}

// Verify - перепроверять фильтр и схему на полученном результате (выключено по умолчанию)
func Verify() Option {
	return func(o *options) {
		o.verify = true
	}
}

// WithMetrics - enable prometheus measurements (disabled by default)
func WithMetrics() Option {
	return func(o *options) {
		o.metrics = true
	}
}
