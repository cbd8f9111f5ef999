package db_test

import (
	"context"
	"encoding/binary"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/apple/foundationdb/bindings/go/src/fdb"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/db"
	"github.com/stretchr/testify/suite"
)

const TestDB byte = 0x12

// TestConnection - внешние тесты подключения, нужен живой кластер
func TestConnection(t *testing.T) {
	if os.Getenv("FDBSCAN_TEST_FDB") == "" {
		t.Skip("FDBSCAN_TEST_FDB is not set")
	}

	suite.Run(t, new(ConnectionSuite))
}

type ConnectionSuite struct {
	suite.Suite

	cn db.Connection
}

func (s *ConnectionSuite) SetupTest() {
	var err error

	s.cn, err = db.Connect(TestDB, db.ClusterFile(os.Getenv("FDBSCAN_TEST_FDB_CLUSTER")), db.WithMetrics())
	s.Require().NoError(err)
	s.Require().NoError(s.cn.Clear())
	s.Equal(TestDB, s.cn.ID)
	s.False(s.cn.Empty())
}

func (s *ConnectionSuite) TestConnect() {
	if _, err := db.Connect(0xFF); s.Error(err) {
		s.True(errx.Is(err, db.ErrConnect))
	}

	if _, err := db.Connect(TestDB, db.ClusterFile("/not/exists/fdb.cluster")); s.Error(err) {
		s.True(errx.Is(err, db.ErrConnect))
	}
}

func (s *ConnectionSuite) TestReadWrite() {
	var buf [8]byte
	var waiter db.Waiter
	var waiter2 db.Waiter

	const num int64 = 123
	const add int64 = -100
	binary.LittleEndian.PutUint64(buf[:], uint64(num))

	key1 := fdb.Key("key1")
	key2 := fdb.Key("key2")
	key3 := fdb.Key("key3")

	s.Require().NoError(s.cn.Write(func(w db.Writer) error {
		s.Empty(w.Data(key1))

		w.Upsert(fdb.KeyValue{Key: key1, Value: []byte("val1")})
		w.Upsert(fdb.KeyValue{Key: key2, Value: buf[:]})
		w.Increment(key3, num)

		waiter = w.Watch(key2)
		waiter2 = w.Watch(key3)

		s.Equal("val1", string(w.Data(key1)))
		return nil
	}))

	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		defer wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.NoError(waiter.Resolve(ctx))
		s.NoError(waiter2.Resolve(ctx))

		s.NoError(s.cn.Read(func(r db.Reader) error {
			s.Equal("val2", string(r.Data(key1)))
			s.Equal(num+add, int64(binary.LittleEndian.Uint64(r.Data(key2))))
			s.Empty(r.Data(key3))

			list := r.List(nil, nil, 0, false, false)
			if s.Len(list, 2) {
				s.Equal(key1, list[0].Key)
				s.Equal(key2, list[1].Key)
			}

			s.Len(r.List(key1, key2, 0, false, true), 1)
			return nil
		}))
	}()

	s.Require().NoError(s.cn.Read(func(r db.Reader) error {
		s.Equal("val1", string(r.Data(key1)))
		s.Equal(num, int64(binary.LittleEndian.Uint64(r.Data(key2))))
		s.Equal(num, int64(binary.LittleEndian.Uint64(r.Data(key3))))
		return nil
	}))

	s.Require().NoError(s.cn.Write(func(w db.Writer) error {
		w.Upsert(fdb.KeyValue{Key: key1, Value: []byte("val2")})
		w.Increment(key2, add)
		w.Delete(key3)
		return nil
	}))

	wg.Wait()

	s.Require().NoError(s.cn.Write(func(w db.Writer) error {
		w.Lock(key1, key3)
		w.Erase(key1, key3)
		s.Len(w.List(nil, nil, 0, false, false), 0)
		return nil
	}))
}

func (s *ConnectionSuite) TestWaitTimeout() {
	var waiter db.Waiter

	s.Require().NoError(s.cn.Write(func(w db.Writer) error {
		waiter = w.Watch(fdb.Key("idle"))
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := waiter.Resolve(ctx); s.Error(err) {
		s.True(errx.Is(err, db.ErrWait))
	}
}

func (s *ConnectionSuite) TestKey() {
	s.Equal(fdb.Key("abc"), db.Key([]byte("a"), nil, []byte("bc")))
	s.Empty(db.Key())
}
