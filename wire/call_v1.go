package wire

import (
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/models"
)

// MarshalCall - сериализация вызова для транспортов без собственных заголовков
func MarshalCall(call Call) []byte {
	mod := models.CallT{
		Class:   call.Class,
		Method:  call.Method,
		Object:  call.Object,
		User:    call.User,
		Pool:    call.Pool,
		Cluster: call.Cluster,
		Body:    call.Body,
	}

	buf := flatbuffers.NewBuilder(128 + len(call.Object) + len(call.Body))
	buf.Finish(mod.Pack(buf))
	return buf.FinishedBytes()
}

// UnmarshalCall - разбор вызова
func UnmarshalCall(buf []byte) (call Call, err error) {
	// Отлавливаем панику и превращаем в ошибку
	defer func() {
		if rec := recover(); rec != nil {
			call = Call{}
			err = ErrCall.WithDebug(errx.Debug{"panic": rec})
		}
	}()

	if len(buf) < flatbuffers.SizeUOffsetT {
		return call, ErrCall.WithDetail("Слишком короткий вызов: %d", len(buf))
	}

	mod := models.GetRootAsCall(buf, 0).UnPack()

	if mod.Method == "" {
		return call, ErrCall.WithDetail("Не указан метод")
	}

	return Call{
		Class:   mod.Class,
		Method:  mod.Method,
		Object:  mod.Object,
		User:    mod.User,
		Pool:    mod.Pool,
		Cluster: mod.Cluster,
		Body:    mod.Body,
	}, nil
}
