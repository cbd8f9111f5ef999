package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shestakovda/errx"
)

// Имена поддерживаемых функций
const (
	FuncEqual        = "equal"
	FuncNotEqual     = "not_equal"
	FuncLess         = "less"
	FuncLessEqual    = "less_equal"
	FuncGreater      = "greater"
	FuncGreaterEqual = "greater_equal"
	FuncAnd          = "and_kleene"
	FuncOr           = "or_kleene"
	FuncNot          = "invert"
	FuncIsNull       = "is_null"
	FuncIsValid      = "is_valid"
)

// Expr - узел дерева выражения фильтрации или гарантии раздела
type Expr interface {
	String() string
}

// FieldRef - ссылка на колонку по имени
type FieldRef struct {
	Name string
}

// Literal - константа одного из типов: nil, bool, int64, float64, string
type Literal struct {
	Value interface{}
}

// Call - вызов функции над аргументами
type Call struct {
	Func string
	Args []Expr
}

// Field - ссылка на колонку
func Field(name string) Expr { return FieldRef{Name: name} }

// Lit - константа, целые и дробные числа приводятся к int64 и float64
func Lit(v interface{}) Expr {
	switch x := v.(type) {
	case int:
		return Literal{Value: int64(x)}
	case int8:
		return Literal{Value: int64(x)}
	case int16:
		return Literal{Value: int64(x)}
	case int32:
		return Literal{Value: int64(x)}
	case uint8:
		return Literal{Value: int64(x)}
	case uint16:
		return Literal{Value: int64(x)}
	case uint32:
		return Literal{Value: int64(x)}
	case float32:
		return Literal{Value: float64(x)}
	}
	return Literal{Value: v}
}

// True - выражение "без фильтра"
func True() Expr { return Literal{Value: true} }

// Null - пустое значение
func Null() Expr { return Literal{} }

func Equal(a, b Expr) Expr        { return Call{Func: FuncEqual, Args: []Expr{a, b}} }
func NotEqual(a, b Expr) Expr     { return Call{Func: FuncNotEqual, Args: []Expr{a, b}} }
func Less(a, b Expr) Expr         { return Call{Func: FuncLess, Args: []Expr{a, b}} }
func LessEqual(a, b Expr) Expr    { return Call{Func: FuncLessEqual, Args: []Expr{a, b}} }
func Greater(a, b Expr) Expr      { return Call{Func: FuncGreater, Args: []Expr{a, b}} }
func GreaterEqual(a, b Expr) Expr { return Call{Func: FuncGreaterEqual, Args: []Expr{a, b}} }
func Not(a Expr) Expr             { return Call{Func: FuncNot, Args: []Expr{a}} }
func IsNull(a Expr) Expr          { return Call{Func: FuncIsNull, Args: []Expr{a}} }
func IsValid(a Expr) Expr         { return Call{Func: FuncIsValid, Args: []Expr{a}} }

// And - конъюнкция, одиночный аргумент возвращается как есть
func And(args ...Expr) Expr {
	if len(args) == 1 {
		return args[0]
	}
	return Call{Func: FuncAnd, Args: args}
}

// Or - дизъюнкция, одиночный аргумент возвращается как есть
func Or(args ...Expr) Expr {
	if len(args) == 1 {
		return args[0]
	}
	return Call{Func: FuncOr, Args: args}
}

// IsTrue - признак выражения, которое пропускает все строки
func IsTrue(e Expr) bool {
	if e == nil {
		return true
	}
	lit, ok := e.(Literal)
	if !ok {
		return false
	}
	val, ok := lit.Value.(bool)
	return ok && val
}

func (f FieldRef) String() string { return f.Name }

func (l Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

var infix = map[string]string{
	FuncEqual:        "==",
	FuncNotEqual:     "!=",
	FuncLess:         "<",
	FuncLessEqual:    "<=",
	FuncGreater:      ">",
	FuncGreaterEqual: ">=",
	FuncAnd:          "and",
	FuncOr:           "or",
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i := range c.Args {
		args[i] = c.Args[i].String()
	}

	if op, ok := infix[c.Func]; ok {
		return "(" + strings.Join(args, " "+op+" ") + ")"
	}

	return c.Func + "(" + strings.Join(args, ", ") + ")"
}

// Ошибки модуля
var (
	ErrMarshal   = errx.New("Ошибка сериализации выражения")
	ErrUnmarshal = errx.New("Ошибка десериализации выражения")
	ErrEvaluate  = errx.New("Ошибка вычисления выражения")
	ErrParse     = errx.New("Ошибка разбора выражения")
)
