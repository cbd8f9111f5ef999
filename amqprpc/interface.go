package amqprpc

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shestakovda/errx"
)

// Dial - подключение к брокеру RabbitMQ
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, ErrConnect.WithReason(err)
	}
	return conn, nil
}

// NewClient - клиент вызовов классов через брокер
//
// Ответы приходят в собственную эксклюзивную очередь клиента, по correlation id.
func NewClient(conn *amqp.Connection, args ...Option) (*Client, error) {
	return newClientV1(conn, args)
}

// NewServer - обработчики методов класса, по одной устойчивой очереди на метод
func NewServer(conn *amqp.Connection, class string, args ...Option) *Server {
	return newServerV1(conn, class, args)
}

// QueueName - имя очереди метода класса
func QueueName(class, method string) string {
	return "fdbscan." + class + "." + method
}

// Заголовки сообщения с адресом вызова
const (
	hdrObject  = "object"
	hdrUser    = "user"
	hdrPool    = "pool"
	hdrCluster = "cluster"
)

// Ошибки модуля
var (
	ErrConnect     = errx.New("Ошибка подключения к брокеру")
	ErrChannel     = errx.New("Ошибка открытия канала")
	ErrDeclare     = errx.New("Ошибка объявления очереди")
	ErrExec        = errx.New("Ошибка синхронной обработки")
	ErrTimeout     = errx.New("Превышено время ожидания ответа")
	ErrClosed      = errx.New("Клиент закрыт")
	ErrBadEndpoint = errx.New("Ошибка регистрации обработчика")
	ErrListen      = errx.New("Ошибка обработки очереди")
)
