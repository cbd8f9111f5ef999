package expr

import (
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/shestakovda/errx"
	"github.com/shestakovda/fdbscan/models"
)

// Виды узлов в сериализованном дереве
const (
	kindField   byte = 1
	kindLiteral byte = 2
	kindCall    byte = 3
)

// Типы констант в сериализованном дереве
const (
	litNull   byte = 0
	litBool   byte = 1
	litInt    byte = 2
	litFloat  byte = 3
	litString byte = 4
)

// Предельная глубина дерева при разборе чужих байт
const maxDepth = 256

// Marshal - сериализация выражения в flatbuffers
func Marshal(e Expr) (_ []byte, err error) {
	var mod *models.ExpressionT

	if mod, err = pack(e, 0); err != nil {
		return nil, ErrMarshal.WithReason(err)
	}

	buf := flatbuffers.NewBuilder(256)
	buf.Finish(mod.Pack(buf))
	return buf.FinishedBytes(), nil
}

// Unmarshal - разбор выражения с проверкой структуры дерева
func Unmarshal(buf []byte) (e Expr, err error) {
	// Отлавливаем панику и превращаем в ошибку
	defer func() {
		if rec := recover(); rec != nil {
			e = nil
			err = ErrUnmarshal.WithDebug(errx.Debug{"panic": rec})
		}
	}()

	if len(buf) < flatbuffers.SizeUOffsetT {
		return nil, ErrUnmarshal.WithDetail("Слишком короткий буфер: %d", len(buf))
	}

	if int(flatbuffers.GetUOffsetT(buf)) >= len(buf) {
		return nil, ErrUnmarshal.WithDetail("Корневое смещение за пределами буфера")
	}

	// Каждый узел занимает в буфере хотя бы одно смещение, это ограничивает размер дерева
	dec := decoder{budget: len(buf) / flatbuffers.SizeUOffsetT}

	if e, err = dec.unpack(models.GetRootAsExpression(buf, 0), 0); err != nil {
		return nil, ErrUnmarshal.WithReason(err)
	}

	return e, nil
}

func pack(e Expr, depth int) (*models.ExpressionT, error) {
	if depth > maxDepth {
		return nil, ErrMarshal.WithDetail("Превышена глубина выражения")
	}

	switch x := e.(type) {
	case nil:
		return nil, ErrMarshal.WithDetail("Пустое выражение")
	case FieldRef:
		if x.Name == "" {
			return nil, ErrMarshal.WithDetail("Пустое имя колонки")
		}
		return &models.ExpressionT{Kind: kindField, Name: x.Name}, nil
	case Literal:
		mod := &models.ExpressionT{Kind: kindLiteral}
		switch v := x.Value.(type) {
		case nil:
			mod.LitType = litNull
		case bool:
			mod.LitType, mod.LitBool = litBool, v
		case int64:
			mod.LitType, mod.LitInt = litInt, v
		case float64:
			mod.LitType, mod.LitFloat = litFloat, v
		case string:
			mod.LitType, mod.LitStr = litString, v
		default:
			return nil, ErrMarshal.WithDetail("Неподдерживаемый тип константы: %T", v)
		}
		return mod, nil
	case Call:
		if err := checkArity(x.Func, len(x.Args)); err != nil {
			return nil, err
		}

		mod := &models.ExpressionT{Kind: kindCall, Name: x.Func, Args: make([]*models.ExpressionT, len(x.Args))}

		for i := range x.Args {
			arg, err := pack(x.Args[i], depth+1)
			if err != nil {
				return nil, err
			}
			mod.Args[i] = arg
		}
		return mod, nil
	}

	return nil, ErrMarshal.WithDetail("Неизвестный узел выражения: %T", e)
}

type decoder struct {
	budget int
}

func (d *decoder) unpack(mod *models.Expression, depth int) (Expr, error) {
	if depth > maxDepth {
		return nil, ErrUnmarshal.WithDetail("Превышена глубина выражения")
	}

	if d.budget--; d.budget < 0 {
		return nil, ErrUnmarshal.WithDetail("Узлов больше, чем помещается в буфер")
	}

	switch mod.Kind() {
	case kindField:
		name := string(mod.Name())
		if name == "" {
			return nil, ErrUnmarshal.WithDetail("Пустое имя колонки")
		}
		return FieldRef{Name: name}, nil
	case kindLiteral:
		switch mod.LitType() {
		case litNull:
			return Literal{}, nil
		case litBool:
			return Literal{Value: mod.LitBool()}, nil
		case litInt:
			return Literal{Value: mod.LitInt()}, nil
		case litFloat:
			return Literal{Value: mod.LitFloat()}, nil
		case litString:
			return Literal{Value: string(mod.LitStr())}, nil
		}
		return nil, ErrUnmarshal.WithDetail("Неизвестный тип константы: %d", mod.LitType())
	case kindCall:
		name := string(mod.Name())
		size := mod.ArgsLength()

		if err := checkArity(name, size); err != nil {
			return nil, ErrUnmarshal.WithReason(err)
		}

		if size > d.budget {
			return nil, ErrUnmarshal.WithDetail("Длина списка аргументов %s за пределами буфера: %d", name, size)
		}

		call := Call{Func: name, Args: make([]Expr, size)}

		for i := 0; i < size; i++ {
			var arg models.Expression

			if !mod.Args(&arg, i) {
				return nil, ErrUnmarshal.WithDetail("Отсутствует аргумент %d функции %s", i, name)
			}

			sub, err := d.unpack(&arg, depth+1)
			if err != nil {
				return nil, err
			}
			call.Args[i] = sub
		}
		return call, nil
	}

	return nil, ErrUnmarshal.WithDetail("Неизвестный вид узла: %d", mod.Kind())
}

func checkArity(name string, size int) error {
	switch name {
	case FuncEqual, FuncNotEqual, FuncLess, FuncLessEqual, FuncGreater, FuncGreaterEqual:
		if size == 2 {
			return nil
		}
	case FuncNot, FuncIsNull, FuncIsValid:
		if size == 1 {
			return nil
		}
	case FuncAnd, FuncOr:
		if size >= 1 {
			return nil
		}
	default:
		return ErrEvaluate.WithDetail("Неизвестная функция: %s", name)
	}

	return ErrEvaluate.WithDetail("Неверное число аргументов функции %s: %d", name, size)
}
