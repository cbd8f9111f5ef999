package expr

import "sort"

// Fields - отсортированный список колонок, на которые ссылается выражение
func Fields(e Expr) []string {
	set := make(map[string]struct{}, 4)
	collect(e, set)

	list := make([]string, 0, len(set))
	for name := range set {
		list = append(list, name)
	}

	sort.Strings(list)
	return list
}

func collect(e Expr, set map[string]struct{}) {
	switch x := e.(type) {
	case FieldRef:
		set[x.Name] = struct{}{}
	case Call:
		for i := range x.Args {
			collect(x.Args[i], set)
		}
	}
}

// KnownValues - значения колонок, зафиксированные гарантией раздела
//
// Учитываются только конъюнкции вида field == literal, остальные условия игнорируются.
func KnownValues(e Expr) map[string]Literal {
	known := make(map[string]Literal, 4)
	conjuncts(e, known)
	return known
}

func conjuncts(e Expr, known map[string]Literal) {
	call, ok := e.(Call)
	if !ok || len(call.Args) == 0 {
		return
	}

	switch call.Func {
	case FuncAnd:
		for i := range call.Args {
			conjuncts(call.Args[i], known)
		}
	case FuncEqual:
		if len(call.Args) != 2 {
			return
		}

		if ref, ok := call.Args[0].(FieldRef); ok {
			if lit, ok := call.Args[1].(Literal); ok {
				known[ref.Name] = lit
			}
		} else if ref, ok := call.Args[1].(FieldRef); ok {
			if lit, ok := call.Args[0].(Literal); ok {
				known[ref.Name] = lit
			}
		}
	}
}
