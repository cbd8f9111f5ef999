package wire

import "github.com/shestakovda/errx"

// Code - стабильный числовой код ошибки в ответе исполнителя
type Code int32

// Коды ошибок, значения фиксированы в протоколе
const (
	CodeOK                 Code = 0
	CodeScanFragment       Code = 25
	CodeDeserializeRequest Code = 26
	CodeSerializeTable     Code = 27
)

// Message - стабильный текст ошибки
func (c Code) Message() string {
	switch c {
	case CodeOK:
		return ""
	case CodeScanFragment:
		return MsgScanFragment
	case CodeDeserializeRequest:
		return MsgDeserializeRequest
	case CodeSerializeTable:
		return MsgSerializeTable
	}
	return "unknown error"
}

// Err - ошибка модуля, соответствующая коду, с подробностями от исполнителя
func (c Code) Err(text string) error {
	switch c {
	case CodeOK:
		return nil
	case CodeScanFragment:
		return ErrScanFragment.WithDetail("%s", text)
	case CodeDeserializeRequest:
		return ErrDeserializeRequest.WithDetail("%s", text)
	case CodeSerializeTable:
		return ErrSerializeTable.WithDetail("%s", text)
	}
	return ErrReply.WithDetail("Неизвестный код %d: %s", int32(c), text)
}

// CodeOf - стабильный код ошибки
//
// Любая ошибка без стабильного кода считается ошибкой сканирования фрагмента.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errx.Is(err, ErrScanFragment):
		return CodeScanFragment
	case errx.Is(err, ErrDeserializeRequest):
		return CodeDeserializeRequest
	case errx.Is(err, ErrSerializeTable):
		return CodeSerializeTable
	}
	return CodeScanFragment
}
