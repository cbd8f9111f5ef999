package rpc

import (
	"encoding/binary"
	"math/rand"
	"sync"
	"time"

	"github.com/apple/foundationdb/bindings/go/src/fdb"
	"github.com/oklog/ulid"
	"github.com/shestakovda/fdbscan/db"
)

const nsRPC byte = 0x20

// Суффиксы элементов очереди метода
const (
	qList      byte = 'l'
	qWork      byte = 'p'
	qTrigger   byte = 't'
	qTotalWait byte = 'w'
	qTotalWork byte = 'k'
	nsRequest  byte = 'r'
	nsResponse byte = 'a'
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func part(s string) []byte {
	buf := make([]byte, 2+len(s))
	binary.BigEndian.PutUint16(buf, uint16(len(s)))
	copy(buf[2:], s)
	return buf
}

// Префикс всех ключей очереди метода класса
func queueKey(class, method string) fdb.Key {
	return db.Key([]byte{nsRPC}, part(class), part(method))
}

func sub(q fdb.Key, kind byte, parts ...[]byte) fdb.Key {
	return db.Key(append([][]byte{q, {kind}}, parts...)...)
}

// Элемент очереди упорядочен по времени публикации
func newItem() []byte {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	uid := ulid.MustNew(ulid.Now(), entropy)
	return uid[:]
}

// Граница очереди: все элементы, опубликованные не позже момента
func itemsUntil(when time.Time) []byte {
	var uid ulid.ULID

	if err := uid.SetTime(ulid.Timestamp(when)); err != nil {
		return nil
	}

	return uid[:6]
}

func counter(buf []byte) int64 {
	if len(buf) != 8 {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(buf))
}
