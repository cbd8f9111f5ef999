package cls

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shestakovda/fdbscan"
)

// Option - дополнительный параметр исполнителя
type Option func(*options)

func getOpts(args []Option) (o options) {
	o.name = fdbscan.TypeOffload
	o.mem = memory.DefaultAllocator

	for i := range args {
		args[i](&o)
	}
	return
}

type options struct {
	name       string
	pool       string
	cluster    string
	users      map[string]struct{}
	mem        memory.Allocator
	batchSize  int64
	threads    bool
	aggressive bool
}

// Name - имя класса, по которому его находят транспорты
func Name(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// Pool - обслуживать только вызовы к этому пулу данных
func Pool(name string) Option {
	return func(o *options) {
		o.pool = name
	}
}

// Cluster - обслуживать только вызовы к этому кластеру
func Cluster(name string) Option {
	return func(o *options) {
		o.cluster = name
	}
}

// AllowUsers - обслуживать только вызовы от этих пользователей
func AllowUsers(names ...string) Option {
	return func(o *options) {
		if o.users == nil {
			o.users = make(map[string]struct{}, len(names))
		}
		for i := range names {
			o.users[names[i]] = struct{}{}
		}
	}
}

// Allocator - нестандартный аллокатор для батчей
func Allocator(mem memory.Allocator) Option {
	return func(o *options) {
		if mem != nil {
			o.mem = mem
		}
	}
}

// BatchSize - число строк в батче при чтении Parquet
func BatchSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// Threads - параллельная обработка батчей внутри одного вызова
func Threads() Option {
	return func(o *options) {
		o.threads = true
	}
}

// Aggressive - сжатие результата ZSTD вместо LZ4
func Aggressive() Option {
	return func(o *options) {
		o.aggressive = true
	}
}

func (o options) formatArgs() []fdbscan.Option {
	return []fdbscan.Option{
		fdbscan.Allocator(o.mem),
		fdbscan.BatchSize(o.batchSize),
	}
}
