package store

import (
	"encoding/binary"
	"path"

	"github.com/apple/foundationdb/bindings/go/src/fdb"
	"github.com/shestakovda/fdbscan/db"
)

// Пространства ключей внутри базы
const (
	nsFile byte = 0x10

	kindMeta byte = 'm'
	kindData byte = 'd'
)

func clean(name string) string {
	return path.Clean("/" + name)
}

func part(s string) []byte {
	buf := make([]byte, 2+len(s))
	binary.BigEndian.PutUint16(buf, uint16(len(s)))
	copy(buf[2:], s)
	return buf
}

// Общий префикс всех ключей файла
func (s *Store) prefix(name string) fdb.Key {
	return db.Key([]byte{nsFile}, s.pool, part(clean(name)))
}

func (s *Store) metaKey(name string) fdb.Key {
	return db.Key(s.prefix(name), []byte{kindMeta})
}

func (s *Store) dataKey(name string, idx uint32) fdb.Key {
	var num [4]byte
	binary.BigEndian.PutUint32(num[:], idx)
	return db.Key(s.prefix(name), []byte{kindData}, num[:])
}
