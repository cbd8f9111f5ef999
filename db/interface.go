package db

import (
	"bytes"

	"github.com/apple/foundationdb/bindings/go/src/fdb"
	"github.com/shestakovda/errx"
)

// Верхняя граница интервала ключей с общим префиксом
var tail fdb.Key = bytes.Repeat([]byte{0xFF}, 256)

// ReadHandler - обработчик физической транзакции чтения, должен быть идемпотентным
type ReadHandler func(Reader) error

// WriteHandler - обработчик физической транзакции записи, должен быть идемпотентным
type WriteHandler func(Writer) error

// Connect - создание нового подключения к серверу FDB и базе данных.
//
// Идентификатор базы всего 1 байт, все ключи подключения начинаются с него.
// Особое значение 0xFF (255) запрещено, т.к. с этого байта начинается служебная область видимости FDB.
//
// Если указан путь к файлу, то подключается к нему. Иначе идет по стандартному (зависит от ОС).
func Connect(id byte, opts ...Option) (Connection, error) {
	return connectV610(id, opts)
}

// Key - сборка ключа из частей без лишних копирований
func Key(parts ...[]byte) fdb.Key {
	size := 0

	for i := range parts {
		size += len(parts[i])
	}

	key := make(fdb.Key, 0, size)

	for i := range parts {
		key = append(key, parts[i]...)
	}

	return key
}

// Ошибки модуля
var (
	ErrWait    = errx.New("Ключ не изменился до отмены ожидания")
	ErrRead    = errx.New("Ошибка чтения из FoundationDB")
	ErrWrite   = errx.New("Ошибка записи в FoundationDB")
	ErrClear   = errx.New("Ошибка очистки базы")
	ErrConnect = errx.New("Нет подключения к FoundationDB")
)
