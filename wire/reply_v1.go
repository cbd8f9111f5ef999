package wire

import (
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/models"
)

// EncodeReply - конверт ответа исполнителя
func EncodeReply(code Code, text string, data []byte) []byte {
	mod := models.ReplyT{
		Code: int32(code),
		Text: text,
		Data: data,
	}

	buf := flatbuffers.NewBuilder(64 + len(text) + len(data))
	buf.Finish(mod.Pack(buf))
	return buf.FinishedBytes()
}

// ReplyOK - успешный ответ с данными
func ReplyOK(data []byte) []byte { return EncodeReply(CodeOK, "", data) }

// ReplyError - ответ с кодом ошибки, текст ошибки уходит в подробности
func ReplyError(err error) []byte {
	code := CodeOf(err)

	if code == CodeOK {
		code = CodeScanFragment
	}

	text := code.Message()

	if err != nil {
		text = err.Error()
	}

	return EncodeReply(code, text, nil)
}

// DecodeReply - разбор конверта, для ненулевого кода возвращает ошибку этого кода
func DecodeReply(buf []byte) (data []byte, err error) {
	// Отлавливаем панику и превращаем в ошибку
	defer func() {
		if rec := recover(); rec != nil {
			data = nil
			err = ErrReply.WithDebug(errx.Debug{"panic": rec})
		}
	}()

	if len(buf) < flatbuffers.SizeUOffsetT {
		return nil, ErrReply.WithDetail("Слишком короткий ответ: %d", len(buf))
	}

	mod := models.GetRootAsReply(buf, 0).UnPack()

	if code := Code(mod.Code); code != CodeOK {
		return nil, code.Err(mod.Text)
	}

	return mod.Data, nil
}
