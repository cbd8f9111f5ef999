package db

import (
	"github.com/apple/foundationdb/bindings/go/src/fdb"
)

// Reader - чтение значений внутри физической транзакции
type Reader struct {
	Connection
	tx fdb.ReadTransaction
}

// Data - значение по конкретному ключу, nil если его нет
func (r Reader) Data(key fdb.Key) []byte {
	return r.tx.Get(r.usrWrap(key)).MustGet()
}

// List - значения в интервале [from, last], ключи в результате без префикса базы
//
// С флагом skip граничный ключ начала (или конца, при реверсе) исключается.
func (r Reader) List(from, last fdb.Key, limit uint64, reverse, skip bool) []fdb.KeyValue {
	var rng fdb.Range

	if !skip {
		rng = fdb.KeyRange{
			Begin: r.usrWrap(from),
			End:   r.endWrap(last),
		}
	} else if reverse {
		rng = fdb.SelectorRange{
			Begin: fdb.FirstGreaterOrEqual(r.usrWrap(from)),
			End: fdb.KeySelector{
				Key:     r.usrWrap(last),
				OrEqual: true,
				Offset:  -1,
			},
		}
	} else {
		rng = fdb.SelectorRange{
			Begin: fdb.KeySelector{
				Key:     r.usrWrap(from),
				OrEqual: true,
				Offset:  1,
			},
			End: fdb.FirstGreaterOrEqual(r.endWrap(last)),
		}
	}

	list := r.tx.GetRange(rng, fdb.RangeOptions{Limit: int(limit), Reverse: reverse}).GetSliceOrPanic()

	for i := range list {
		list[i].Key = list[i].Key[1:]
	}

	return list
}
