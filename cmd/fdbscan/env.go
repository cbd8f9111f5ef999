package main

import (
	"context"

	"github.com/golang/glog"
	"github.com/shestakovda/fdbscan"
	"github.com/shestakovda/fdbscan/amqprpc"
	"github.com/shestakovda/fdbscan/cls"
	"github.com/shestakovda/fdbscan/config"
	"github.com/shestakovda/fdbscan/db"
	"github.com/shestakovda/fdbscan/fsys"
	"github.com/shestakovda/fdbscan/rpc"
	"github.com/shestakovda/fdbscan/store"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Собранные по настройкам зависимости команды
type env struct {
	cn   db.Connection
	fs   fsys.FileSystem
	amqp *amqp.Connection
	done []func() error
}

func (e *env) close() {
	for i := len(e.done) - 1; i >= 0; i-- {
		if err := e.done[i](); err != nil {
			glog.Errorf("%+v", err)
		}
	}
}

func (e *env) connect() (err error) {
	if !e.cn.Empty() {
		return nil
	}

	args := []db.Option{db.ClusterFile(cfg.ClusterFile)}

	if cfg.MetricsAddr != "" {
		args = append(args, db.WithMetrics())
	}

	e.cn, err = db.Connect(byte(cfg.DB), args...)
	return err
}

func (e *env) broker() (err error) {
	if e.amqp != nil {
		return nil
	}

	if e.amqp, err = amqprpc.Dial(cfg.AMQPURL); err != nil {
		return err
	}

	e.done = append(e.done, e.amqp.Close)
	return nil
}

func newEnv(ctx context.Context) (e *env, err error) {
	e = new(env)

	defer func() {
		if err != nil {
			e.close()
		}
	}()

	switch cfg.Store {
	case config.StoreLocal:
		e.fs = fsys.NewLocal(cfg.LocalRoot)
	case config.StoreMinio:
		if e.fs, err = fsys.ConnectMinio(ctx, cfg.MinioConfig()); err != nil {
			return nil, err
		}
	case config.StoreFDB:
		if err = e.connect(); err != nil {
			return nil, err
		}

		if e.fs, err = store.New(e.cn, cfg.DataPool); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Исполнитель над хранилищем этого процесса
func (e *env) class() *cls.Class {
	args := []cls.Option{
		cls.Name(cfg.Class),
		cls.Pool(cfg.DataPool),
		cls.Cluster(cfg.Cluster),
	}

	if cfg.UseThreads {
		args = append(args, cls.Threads())
	}

	if cfg.Aggressive {
		args = append(args, cls.Aggressive())
	}

	return cls.New(e.fs, args...)
}

// Доставка вызовов до исполнителя по выбранному транспорту
func (e *env) transport() (fdbscan.Transport, error) {
	switch cfg.Transport {
	case config.TransportFDB:
		if err := e.connect(); err != nil {
			return nil, err
		}
		return rpc.NewClient(e.cn, rpc.Timeout(cfg.Timeout)), nil
	case config.TransportAMQP:
		if err := e.broker(); err != nil {
			return nil, err
		}

		cli, err := amqprpc.NewClient(e.amqp, amqprpc.Timeout(cfg.Timeout))
		if err != nil {
			return nil, err
		}

		e.done = append(e.done, cli.Close)
		return cli, nil
	}

	return e.class(), nil
}

func (e *env) offload() (*fdbscan.Offload, error) {
	tr, err := e.transport()
	if err != nil {
		return nil, err
	}

	args := make([]fdbscan.Option, 0, 3)

	if cfg.Verify {
		args = append(args, fdbscan.Verify())
	}

	if cfg.RemoteInspect {
		args = append(args, fdbscan.RemoteInspect())
	}

	if cfg.MetricsAddr != "" {
		args = append(args, fdbscan.WithMetrics())
	}

	return fdbscan.NewOffload(cfg.Offload(), tr, args...)
}
