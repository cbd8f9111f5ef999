package cls

import (
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/fsys"
)

// New - класс исполнителя над хранилищем пула данных
func New(fs fsys.FileSystem, args ...Option) *Class {
	return newClassV1(fs, args)
}

// Ошибки модуля
var (
	ErrMethod    = errx.New("Неизвестный метод исполнителя")
	ErrForbidden = errx.New("Вызов отклонен исполнителем")
	ErrStale     = errx.New("Размер объекта не совпадает с запросом")
)
