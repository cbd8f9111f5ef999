package db

import (
	"time"

	"github.com/apple/foundationdb/bindings/go/src/fdb"
)

func connectV610(id byte, opts []Option) (cn Connection, err error) {
	const verID = 610
	const badID = "Invalid database ID: %X"

	start := time.Now()

	if id == 0xFF {
		return cn, ErrConnect.WithDetail(badID, id)
	}

	cn = Connection{
		ID: id,
	}

	for i := range opts {
		if err = opts[i](&cn.options); err != nil {
			return cn, ErrConnect.WithReason(err)
		}
	}

	defer func() { cn.measure(opConnect, start, err) }()

	if err = fdb.APIVersion(verID); err != nil {
		return cn, ErrConnect.WithReason(err)
	}

	if len(cn.ClusterFile) > 0 {
		if cn.db, err = fdb.OpenDatabase(cn.ClusterFile); err != nil {
			return cn, ErrConnect.WithReason(err)
		}
	} else {
		if cn.db, err = fdb.OpenDefault(); err != nil {
			return cn, ErrConnect.WithReason(err)
		}
	}

	cn.ok = true
	return cn, nil
}

// Connection - подключение к одной базе данных кластера
type Connection struct {
	ID byte

	options
	ok bool
	db fdb.Database
}

// Empty - подключение еще не установлено
func (cn Connection) Empty() bool { return !cn.ok }

// Read - физическая транзакция чтения, повторяется при конфликтах
func (cn Connection) Read(hdl ReadHandler) (err error) {
	start := time.Now()
	defer func() { cn.measure(opRead, start, err) }()

	if _, err = cn.db.ReadTransact(func(tx fdb.ReadTransaction) (interface{}, error) {
		cn.count(opRead)
		return nil, hdl(Reader{Connection: cn, tx: tx})
	}); err != nil {
		return ErrRead.WithReason(err)
	}
	return nil
}

// Write - физическая транзакция записи, повторяется при конфликтах
func (cn Connection) Write(hdl WriteHandler) (err error) {
	start := time.Now()
	defer func() { cn.measure(opWrite, start, err) }()

	if _, err = cn.db.Transact(func(tx fdb.Transaction) (interface{}, error) {
		cn.count(opWrite)
		return nil, hdl(Writer{Reader: Reader{Connection: cn, tx: tx}, tx: tx})
	}); err != nil {
		return ErrWrite.WithReason(err)
	}
	return nil
}

// Clear - ОПАСНО! Единовременная и полная очистка всех данных в БД
// Рекомендуется использовать только в unit-тестах!
func (cn Connection) Clear() (err error) {
	start := time.Now()
	defer func() { cn.measure(opClear, start, err) }()

	if _, err = cn.db.Transact(func(tx fdb.Transaction) (interface{}, error) {
		tx.ClearRange(fdb.KeyRange{Begin: cn.usrWrap(nil), End: cn.endWrap(nil)})
		return nil, nil
	}); err != nil {
		return ErrClear.WithReason(err)
	}
	return nil
}

func (cn Connection) usrWrap(key fdb.Key) fdb.Key {
	return Key([]byte{cn.ID}, key)
}

func (cn Connection) endWrap(key fdb.Key) fdb.Key {
	return Key([]byte{cn.ID}, key, tail)
}
