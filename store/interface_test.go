package store_test

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"os"
	"testing"

	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/db"
	"github.com/shestakovda/fdbscan/fsys"
	"github.com/shestakovda/fdbscan/store"
	"github.com/stretchr/testify/suite"
)

const TestDB byte = 0x13

// TestStore - внешние тесты хранилища, нужен живой кластер
func TestStore(t *testing.T) {
	if os.Getenv("FDBSCAN_TEST_FDB") == "" {
		t.Skip("FDBSCAN_TEST_FDB is not set")
	}

	suite.Run(t, new(StoreSuite))
}

type StoreSuite struct {
	suite.Suite

	ctx context.Context
	cn  db.Connection
	fs  *store.Store
}

func (s *StoreSuite) SetupTest() {
	var err error

	s.ctx = context.Background()
	s.cn, err = db.Connect(TestDB, db.ClusterFile(os.Getenv("FDBSCAN_TEST_FDB_CLUSTER")))
	s.Require().NoError(err)
	s.Require().NoError(s.cn.Clear())

	s.fs, err = store.New(s.cn, "cephfs_data", store.Chunk(1000), store.Batch(3))
	s.Require().NoError(err)
}

func (s *StoreSuite) put(name string, data []byte) {
	w, err := s.fs.Create(s.ctx, name)
	s.Require().NoError(err)

	_, err = w.Write(data)
	s.Require().NoError(err)
	s.Require().NoError(w.Close())
}

func (s *StoreSuite) TestFiles() {
	data := make([]byte, 10500)
	rand.New(rand.NewSource(1)).Read(data)

	if _, err := s.fs.Stat(s.ctx, "table/part-0"); s.Error(err) {
		s.True(errx.Is(err, fsys.ErrNotFound))
	}

	s.put("table/part-0", data)
	s.put("/table/part-00", []byte("short"))

	info, err := s.fs.Stat(s.ctx, "/table/part-0")
	s.Require().NoError(err)
	s.Equal(int64(len(data)), info.Size())
	s.Equal("part-0", info.Name())

	file, err := s.fs.Open(s.ctx, "table/part-0")
	s.Require().NoError(err)
	s.Equal(int64(len(data)), file.Size())

	tail := make([]byte, 100)
	_, err = file.ReadAt(tail, int64(len(data)-100))
	s.Require().NoError(err)
	s.Equal(data[len(data)-100:], tail)

	all, err := io.ReadAll(file)
	s.Require().NoError(err)
	s.True(bytes.Equal(data, all))
	s.NoError(file.Close())

	// Перезапись более коротким содержимым
	s.put("table/part-0", []byte("tiny"))

	file, err = s.fs.Open(s.ctx, "table/part-0")
	s.Require().NoError(err)
	all, err = io.ReadAll(file)
	s.Require().NoError(err)
	s.Equal("tiny", string(all))

	// Соседний файл с общим префиксом имени не задет
	file, err = s.fs.Open(s.ctx, "table/part-00")
	s.Require().NoError(err)
	all, err = io.ReadAll(file)
	s.Require().NoError(err)
	s.Equal("short", string(all))

	s.put("empty", nil)
	info, err = s.fs.Stat(s.ctx, "empty")
	s.Require().NoError(err)
	s.Equal(int64(0), info.Size())

	s.NoError(s.fs.Remove(s.ctx, "table/part-0"))
	s.NoError(s.fs.Remove(s.ctx, "table/part-0"))

	if _, err = s.fs.Open(s.ctx, "table/part-0"); s.Error(err) {
		s.True(errx.Is(err, fsys.ErrNotFound))
	}
}

func (s *StoreSuite) TestNew() {
	if _, err := store.New(s.cn, ""); s.Error(err) {
		s.True(errx.Is(err, store.ErrPool))
	}

	if _, err := store.New(db.Connection{}, "pool"); s.Error(err) {
		s.True(errx.Is(err, fsys.ErrConnect))
	}
}
