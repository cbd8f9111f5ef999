package rpc

import (
	"time"

	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/db"
)

// ListenHandler - обработчик ошибки подписки с возможностью перезапуска
type ListenHandler func(error) (bool, time.Duration)

// NewClient - клиент очередей вызовов поверх FoundationDB
func NewClient(cn db.Connection, args ...Option) *Client { return newClientV1(cn, args) }

// NewServer - служба, которая слушает очереди всех методов класса и запускает их обработку
func NewServer(cn db.Connection, class string, args ...Option) *Server {
	return newServerV1(cn, class, args)
}

// Ошибки модуля
var (
	ErrListen      = errx.New("Ошибка обработки очереди")
	ErrBadEndpoint = errx.New("Ошибка регистрации обработчика")
	ErrExec        = errx.New("Ошибка синхронной обработки")
	ErrResult      = errx.New("Ошибка загрузки результата обработки")
	ErrClaim       = errx.New("Ошибка получения задач из очереди")
	ErrConfirm     = errx.New("Ошибка подтверждения обработки")
	ErrStat        = errx.New("Ошибка получения статистики очереди")
)
