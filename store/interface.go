package store

import (
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/db"
)

// ChunkSize - максимальный размер значения одного куска файла
//
// FDB не принимает значения больше 100 КБ.
const ChunkSize = 90000

// New - хранилище файлов пула данных поверх FoundationDB
//
// Файл делится на куски не больше ChunkSize, описание лежит отдельной записью.
// Описание пишется последним, поэтому недописанный файл не виден.
func New(cn db.Connection, pool string, args ...Option) (*Store, error) {
	return newStoreV1(cn, pool, args)
}

// Ошибки модуля
var (
	ErrPool  = errx.New("Некорректное имя пула данных")
	ErrMeta  = errx.New("Ошибка разбора описания файла")
	ErrChunk = errx.New("Файл поврежден")
)
