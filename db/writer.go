package db

import (
	"encoding/binary"

	"github.com/apple/foundationdb/bindings/go/src/fdb"
)

// Writer - модификация значений внутри физической транзакции
type Writer struct {
	Reader
	tx fdb.Transaction
}

// Delete - удаление конкретного значения. Не расстраивается, если его нет
func (w Writer) Delete(key fdb.Key) {
	w.tx.Clear(w.usrWrap(key))
}

// Upsert - вставка или обновление значений по ключам
func (w Writer) Upsert(pairs ...fdb.KeyValue) {
	for i := range pairs {
		w.tx.Set(w.usrWrap(pairs[i].Key), pairs[i].Value)
	}
}

// Increment - атомарный инкремент (или декремент) LittleEndian-значения по ключу
func (w Writer) Increment(key fdb.Key, delta int64) {
	var data [8]byte
	binary.LittleEndian.PutUint64(data[:], uint64(delta))
	w.tx.Add(w.usrWrap(key), data[:])
}

// Erase - очистка всех данных интервала [from, to]
func (w Writer) Erase(from, to fdb.Key) {
	w.tx.ClearRange(fdb.KeyRange{
		Begin: w.usrWrap(from),
		End:   w.endWrap(to),
	})
}

// Watch - ожидание изменения значения ключа после фиксации транзакции
func (w Writer) Watch(key fdb.Key) Waiter {
	return &keyWatch{
		key: key,
		fut: w.tx.Watch(w.usrWrap(key)),
	}
}

// Lock - эксклюзивная блокировка интервала
func (w Writer) Lock(from, to fdb.Key) {
	w.tx.AddWriteConflictRange(fdb.KeyRange{
		Begin: w.usrWrap(from),
		End:   w.endWrap(to),
	})
}
