package db

import (
	"os"

	"github.com/shestakovda/errx"
)

// Option - метод для перегрузки некоторых свойств подключения
type Option func(*options) error

type options struct {
	ClusterFile string
	WithMetrics bool
}

// ClusterFile - нестандартный путь до кластер-файла FoundationDB
func ClusterFile(name string) Option {
	return func(o *options) error {
		if name != "" {
			if _, err := os.Stat(name); err != nil {
				return ErrConnect.WithReason(err).WithDebug(errx.Debug{"cluster": name})
			}
		}

		o.ClusterFile = name
		return nil
	}
}

// WithMetrics - enable prometheus measurements (disabled by default)
func WithMetrics() Option {
	return func(o *options) error {
		o.WithMetrics = true
		return nil
	}
}
