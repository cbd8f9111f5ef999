package expr

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/scalar"
)

// Имена ядер compute для функций, которые зарегистрированы под другим именем
const (
	kernelXor       = "xor"
	kernelIsNotNull = "is_not_null"
)

// Filter - отбор строк батча, для которых выражение истинно
//
// Строки, где выражение равно null, отбрасываются. Результат принадлежит вызывающему.
func Filter(ctx context.Context, e Expr, rec arrow.Record, mem memory.Allocator) (_ arrow.Record, err error) {
	var mask arrow.Array

	if IsTrue(e) {
		rec.Retain()
		return rec, nil
	}

	ev := newEvaluator(ctx, rec, mem)

	if mask, err = ev.predicate(e); err != nil {
		return nil, err
	}
	defer mask.Release()

	res, err := compute.FilterRecordBatch(ev.ctx, rec, mask, compute.DefaultFilterOptions())
	if err != nil {
		return nil, ErrEvaluate.WithReason(err)
	}

	return res, nil
}

// Mask - булева маска выражения по строкам батча, null превращается в false
func Mask(ctx context.Context, e Expr, rec arrow.Record, mem memory.Allocator) (_ *array.Boolean, err error) {
	var res arrow.Array

	ev := newEvaluator(ctx, rec, mem)

	if res, err = ev.predicate(e); err != nil {
		return nil, err
	}
	defer res.Release()

	data := res.Data()
	rows := int64(res.Len())

	if res.NullN() == 0 {
		return array.NewBooleanData(data), nil
	}

	// Значения под null у ядер Клини не определены, поэтому гасим их битами валидности
	vals := bitutil.BitmapAndAlloc(mem, data.Buffers()[1].Bytes(), data.Buffers()[0].Bytes(),
		int64(data.Offset()), int64(data.Offset()), rows, 0)
	defer vals.Release()

	return array.NewBoolean(int(rows), vals, nil, 0), nil
}

type evaluator struct {
	ctx  context.Context
	mem  memory.Allocator
	rec  arrow.Record
	rows int
}

func newEvaluator(ctx context.Context, rec arrow.Record, mem memory.Allocator) *evaluator {
	return &evaluator{
		ctx:  compute.WithAllocator(ctx, mem),
		mem:  mem,
		rec:  rec,
		rows: int(rec.NumRows()),
	}
}

func (ev *evaluator) predicate(e Expr) (arrow.Array, error) {
	res, err := ev.eval(e, arrow.FixedWidthTypes.Boolean)
	if err != nil {
		return nil, err
	}

	if res.DataType().ID() != arrow.BOOL {
		res.Release()
		return nil, ErrEvaluate.WithDetail("Выражение %s имеет тип %s вместо bool", e, res.DataType())
	}

	return res, nil
}

// Значение узла в виде колонки длиной в батч, hint задает тип для null-константы
func (ev *evaluator) eval(e Expr, hint arrow.DataType) (arrow.Array, error) {
	switch x := e.(type) {
	case FieldRef:
		idx := ev.rec.Schema().FieldIndices(x.Name)
		if len(idx) == 0 {
			return nil, ErrEvaluate.WithDetail("Колонка %s отсутствует в батче", x.Name)
		}
		col := ev.rec.Column(idx[0])
		col.Retain()
		return col, nil
	case Literal:
		return ev.constant(x, hint)
	case Call:
		return ev.call(x)
	}

	return nil, ErrEvaluate.WithDetail("Неизвестный узел выражения: %T", e)
}

func (ev *evaluator) constant(lit Literal, hint arrow.DataType) (arrow.Array, error) {
	var sc scalar.Scalar

	switch v := lit.Value.(type) {
	case nil:
		if hint == nil {
			hint = arrow.FixedWidthTypes.Boolean
		}
		return array.MakeArrayOfNull(ev.mem, hint, ev.rows), nil
	case bool:
		sc = scalar.NewBooleanScalar(v)
	case int64:
		sc = scalar.NewInt64Scalar(v)
	case float64:
		sc = scalar.NewFloat64Scalar(v)
	case string:
		sc = scalar.NewStringScalar(v)
	default:
		return nil, ErrEvaluate.WithDetail("Неподдерживаемый тип константы: %T", v)
	}

	arr, err := scalar.MakeArrayFromScalar(sc, ev.rows, ev.mem)
	if err != nil {
		return nil, ErrEvaluate.WithReason(err).WithDetail("Константа %s", lit)
	}
	return arr, nil
}

func (ev *evaluator) call(c Call) (_ arrow.Array, err error) {
	if err = checkArity(c.Func, len(c.Args)); err != nil {
		return nil, err
	}

	args, err := ev.args(c)
	if err != nil {
		return nil, err
	}
	defer release(args)

	switch c.Func {
	case FuncAnd, FuncOr:
		if err = logical(c, args); err != nil {
			return nil, err
		}

		acc := args[0]
		acc.Retain()

		// Ядра Клини бинарные, сворачиваем слева направо
		for i := 1; i < len(args); i++ {
			next, err := ev.apply(c.Func, acc, args[i])
			acc.Release()
			if err != nil {
				return nil, err
			}
			acc = next
		}
		return acc, nil
	case FuncNot:
		if err = logical(c, args); err != nil {
			return nil, err
		}

		ones, err := ev.constant(Literal{Value: true}, nil)
		if err != nil {
			return nil, err
		}
		defer ones.Release()

		return ev.apply(kernelXor, args[0], ones)
	case FuncIsNull:
		return ev.apply(FuncIsNull, args[0])
	case FuncIsValid:
		return ev.apply(kernelIsNotNull, args[0])
	}

	if args, err = ev.physical(args); err != nil {
		return nil, err
	}
	defer release(args)

	return ev.apply(c.Func, args...)
}

// Сначала вычисляются аргументы с известным типом, null-константы получают тип соседа
func (ev *evaluator) args(c Call) (_ []arrow.Array, err error) {
	args := make([]arrow.Array, len(c.Args))

	defer func() {
		if err != nil {
			release(args)
		}
	}()

	var hint arrow.DataType = arrow.FixedWidthTypes.Boolean

	for i := range c.Args {
		if isNullLiteral(c.Args[i]) {
			continue
		}

		if args[i], err = ev.eval(c.Args[i], nil); err != nil {
			return nil, err
		}

		if comparison(c.Func) {
			hint = args[i].DataType()
		}
	}

	for i := range c.Args {
		if args[i] == nil {
			if args[i], err = ev.eval(c.Args[i], hint); err != nil {
				return nil, err
			}
		}
	}

	return args, nil
}

// Временные колонки сравниваются с числами по своему физическому представлению
func (ev *evaluator) physical(args []arrow.Array) ([]arrow.Array, error) {
	res := make([]arrow.Array, len(args))

	numeric := false
	for i := range args {
		if arrow.IsInteger(args[i].DataType().ID()) {
			numeric = true
		}
	}

	for i := range args {
		var to arrow.DataType

		switch args[i].DataType().ID() {
		case arrow.DATE32, arrow.TIME32:
			to = arrow.PrimitiveTypes.Int32
		case arrow.DATE64, arrow.TIME64, arrow.TIMESTAMP, arrow.DURATION:
			to = arrow.PrimitiveTypes.Int64
		}

		if to == nil || !numeric {
			args[i].Retain()
			res[i] = args[i]
			continue
		}

		arr, err := compute.CastArray(ev.ctx, args[i], compute.SafeCastOptions(to))
		if err != nil {
			release(res)
			return nil, ErrEvaluate.WithReason(err).WithDetail("Приведение %s к %s", args[i].DataType(), to)
		}
		res[i] = arr
	}

	return res, nil
}

func (ev *evaluator) apply(name string, args ...arrow.Array) (arrow.Array, error) {
	data := make([]compute.Datum, len(args))

	for i := range args {
		data[i] = compute.NewDatumWithoutOwning(args[i])
	}

	out, err := compute.CallFunction(ev.ctx, name, nil, data...)
	if err != nil {
		return nil, ErrEvaluate.WithReason(err).WithDetail("Функция %s над %s", name, types(args))
	}
	defer out.Release()

	res, ok := out.(*compute.ArrayDatum)
	if !ok {
		return nil, ErrEvaluate.WithDetail("Функция %s вернула %T вместо колонки", name, out)
	}

	return res.MakeArray(), nil
}

func logical(c Call, args []arrow.Array) error {
	for i := range args {
		if args[i].DataType().ID() != arrow.BOOL {
			return ErrEvaluate.WithDetail("Функция %s над типом %s", c.Func, args[i].DataType())
		}
	}
	return nil
}

func comparison(name string) bool {
	switch name {
	case FuncEqual, FuncNotEqual, FuncLess, FuncLessEqual, FuncGreater, FuncGreaterEqual:
		return true
	}
	return false
}

func isNullLiteral(e Expr) bool {
	lit, ok := e.(Literal)
	return ok && lit.Value == nil
}

func types(args []arrow.Array) []string {
	list := make([]string, len(args))
	for i := range args {
		list[i] = args[i].DataType().String()
	}
	return list
}

func release(args []arrow.Array) {
	for i := range args {
		if args[i] != nil {
			args[i].Release()
		}
	}
}
