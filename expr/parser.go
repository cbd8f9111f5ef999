package expr

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
	{Name: "Number", Pattern: `-?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.]*`},
	{Name: "Operator", Pattern: `==|!=|<>|<=|>=|[=<>()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var filterParser = participle.MustBuild[orNode](
	participle.Lexer(filterLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
	participle.UseLookahead(2),
)

type orNode struct {
	Terms []*andNode `@@ ( "or" @@ )*`
}

type andNode struct {
	Terms []*unaryNode `@@ ( "and" @@ )*`
}

type unaryNode struct {
	Not *unaryNode `  "not" @@`
	Cmp *cmpNode   `| @@`
}

type cmpNode struct {
	Left  *operand  `@@`
	Null  *nullTest `( @@`
	Op    string    `| @( "==" | "=" | "!=" | "<>" | "<=" | ">=" | "<" | ">" )`
	Right *operand  `  @@ )?`
}

type nullTest struct {
	Not bool `"is" @"not"? "null"`
}

type operand struct {
	Sub   *orNode `  "(" @@ ")"`
	Str   *string `| @String`
	Num   *string `| @Number`
	Bool  *string `| @( "true" | "false" )`
	Null  bool    `| @"null"`
	Field *string `| @Ident`
}

var comparators = map[string]func(a, b Expr) Expr{
	"=":  Equal,
	"==": Equal,
	"!=": NotEqual,
	"<>": NotEqual,
	"<":  Less,
	"<=": LessEqual,
	">":  Greater,
	">=": GreaterEqual,
}

// Parse - разбор текстового условия вида "a > 5 and (b == 'x' or c is null)"
//
// Пустая строка означает "без условия".
func Parse(src string) (_ Expr, err error) {
	var root *orNode

	if strings.TrimSpace(src) == "" {
		return True(), nil
	}

	if root, err = filterParser.ParseString("", src); err != nil {
		return nil, ErrParse.WithReason(err).WithDetail("Условие: %s", src)
	}

	return root.build()
}

func (n *orNode) build() (Expr, error) {
	list := make([]Expr, len(n.Terms))

	for i := range n.Terms {
		e, err := n.Terms[i].build()
		if err != nil {
			return nil, err
		}
		list[i] = e
	}

	return Or(list...), nil
}

func (n *andNode) build() (Expr, error) {
	list := make([]Expr, len(n.Terms))

	for i := range n.Terms {
		e, err := n.Terms[i].build()
		if err != nil {
			return nil, err
		}
		list[i] = e
	}

	return And(list...), nil
}

func (n *unaryNode) build() (Expr, error) {
	if n.Not == nil {
		return n.Cmp.build()
	}

	e, err := n.Not.build()
	if err != nil {
		return nil, err
	}
	return Not(e), nil
}

func (n *cmpNode) build() (Expr, error) {
	left, err := n.Left.build()
	if err != nil {
		return nil, err
	}

	switch {
	case n.Null != nil && n.Null.Not:
		return IsValid(left), nil
	case n.Null != nil:
		return IsNull(left), nil
	case n.Op == "":
		return left, nil
	}

	right, err := n.Right.build()
	if err != nil {
		return nil, err
	}

	return comparators[n.Op](left, right), nil
}

func (n *operand) build() (Expr, error) {
	switch {
	case n.Sub != nil:
		return n.Sub.build()
	case n.Str != nil:
		// Кавычки любого вида, экранирования внутри нет
		return Lit((*n.Str)[1 : len(*n.Str)-1]), nil
	case n.Num != nil:
		if i, err := strconv.ParseInt(*n.Num, 10, 64); err == nil {
			return Lit(i), nil
		}

		f, err := strconv.ParseFloat(*n.Num, 64)
		if err != nil {
			return nil, ErrParse.WithReason(err).WithDetail("Неверное число: %s", *n.Num)
		}
		return Lit(f), nil
	case n.Bool != nil:
		return Lit(strings.EqualFold(*n.Bool, "true")), nil
	case n.Null:
		return Null(), nil
	case n.Field != nil:
		return Field(*n.Field), nil
	}

	return nil, ErrParse.WithDetail("Пустой операнд")
}
