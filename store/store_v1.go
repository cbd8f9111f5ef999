package store

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"time"

	"github.com/apple/foundationdb/bindings/go/src/fdb"
	"github.com/golang/glog"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/db"
	"github.com/shestakovda/fdbscan/fsys"
	"github.com/shestakovda/fdbscan/models"
)

func newStoreV1(cn db.Connection, pool string, args []Option) (*Store, error) {
	if pool == "" || len(pool) > 0xFFFF {
		return nil, ErrPool.WithDetail("Длина имени пула: %d", len(pool))
	}

	if cn.Empty() {
		return nil, fsys.ErrConnect.WithDetail("Нет подключения к FoundationDB")
	}

	return &Store{
		cn:   cn,
		pool: part(pool),
		opts: getOpts(args),
	}, nil
}

// Store - файлы пула данных в FoundationDB
type Store struct {
	cn   db.Connection
	pool []byte
	opts options
}

func (s *Store) Stat(ctx context.Context, name string) (_ fs.FileInfo, err error) {
	var meta *models.FileT

	if meta, err = s.meta(name); err != nil {
		return nil, fsys.ErrStat.WithReason(err)
	}

	return fsys.NewFileInfo(meta.Path, meta.Size, time.Unix(0, meta.MTime)), nil
}

func (s *Store) Open(ctx context.Context, name string) (_ fsys.File, err error) {
	var meta *models.FileT

	if meta, err = s.meta(name); err != nil {
		return nil, fsys.ErrOpen.WithReason(err)
	}

	buf := bytes.NewBuffer(make([]byte, 0, meta.Size))

	for from := uint32(0); from < meta.Chunks; from += uint32(s.opts.batch) {
		if err = ctx.Err(); err != nil {
			return nil, fsys.ErrOpen.WithReason(err)
		}

		last := from + uint32(s.opts.batch) - 1
		if last >= meta.Chunks {
			last = meta.Chunks - 1
		}

		var list []fdb.KeyValue

		if err = s.cn.Read(func(r db.Reader) error {
			list = r.List(s.dataKey(name, from), s.dataKey(name, last), uint64(last-from+1), false, false)
			return nil
		}); err != nil {
			return nil, fsys.ErrOpen.WithReason(err)
		}

		if len(list) != int(last-from+1) {
			return nil, fsys.ErrOpen.WithReason(ErrChunk.WithDetail("%s: кусков %d из %d", name, len(list), last-from+1))
		}

		for i := range list {
			buf.Write(list[i].Value)
		}
	}

	if int64(buf.Len()) != meta.Size {
		return nil, fsys.ErrOpen.WithReason(ErrChunk.WithDetail("%s: размер %d вместо %d", name, buf.Len(), meta.Size))
	}

	return fsys.NewFile(buf.Bytes()), nil
}

func (s *Store) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	return fsys.NewWriter(func(data []byte) error {
		if err := s.save(ctx, name, data); err != nil {
			return fsys.ErrCreate.WithReason(err)
		}
		return nil
	}), nil
}

func (s *Store) Remove(ctx context.Context, name string) error {
	key := s.prefix(name)

	if err := s.cn.Write(func(w db.Writer) error {
		w.Erase(key, key)
		return nil
	}); err != nil {
		return fsys.ErrRemove.WithReason(err)
	}

	return nil
}

func (s *Store) meta(name string) (meta *models.FileT, err error) {
	var buf []byte

	if err = s.cn.Read(func(r db.Reader) error {
		buf = r.Data(s.metaKey(name))
		return nil
	}); err != nil {
		return nil, err
	}

	if len(buf) == 0 {
		return nil, fsys.ErrNotFound.WithDetail("%s", name)
	}

	// Отлавливаем панику и превращаем в ошибку
	defer func() {
		if rec := recover(); rec != nil {
			meta = nil
			err = ErrMeta.WithDebug(errx.Debug{"panic": rec, "name": name})
		}
	}()

	return models.GetRootAsFile(buf, 0).UnPack(), nil
}

// Запись кусками по несколько в транзакции, старые куски стираются в первой,
// описание ставится в последней
func (s *Store) save(ctx context.Context, name string, data []byte) (err error) {
	size := s.opts.chunkSize
	chunks := uint32((len(data) + size - 1) / size)
	key := s.prefix(name)

	meta := models.FileT{
		Path:      clean(name),
		Size:      int64(len(data)),
		MTime:     time.Now().UnixNano(),
		Chunks:    chunks,
		ChunkSize: uint32(size),
	}

	fbs := flatbuffers.NewBuilder(128)
	fbs.Finish(meta.Pack(fbs))

	first := true
	idx := uint32(0)

	for first || idx < chunks {
		if err = ctx.Err(); err != nil {
			return err
		}

		if err = s.cn.Write(func(w db.Writer) error {
			if first {
				w.Erase(key, key)
			}

			pairs := make([]fdb.KeyValue, 0, s.opts.batch+1)

			for i := idx; i < chunks && i < idx+uint32(s.opts.batch); i++ {
				end := int(i+1) * size
				if end > len(data) {
					end = len(data)
				}
				pairs = append(pairs, fdb.KeyValue{Key: s.dataKey(name, i), Value: data[int(i)*size : end]})
			}

			if idx+uint32(len(pairs)) >= chunks {
				pairs = append(pairs, fdb.KeyValue{Key: s.metaKey(name), Value: fbs.FinishedBytes()})
			}

			w.Upsert(pairs...)
			return nil
		}); err != nil {
			return err
		}

		first = false
		idx += uint32(s.opts.batch)
	}

	glog.V(2).Infof("store %s: %d bytes in %d chunks", meta.Path, meta.Size, chunks)
	return nil
}
