package fdbscan

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/scalar"
	"github.com/shestakovda/fdbscan/expr"
)

// План вычисления батча: дополнение колонок раздела, фильтр, проекция
type plan struct {
	mem     memory.Allocator
	filter  expr.Expr
	output  *arrow.Schema
	dataset *arrow.Schema
	known   map[string]expr.Literal
}

func newPlan(mem memory.Allocator, opts *ScanOptions, frag Fragment) *plan {
	p := plan{
		mem:   mem,
		known: expr.KnownValues(frag.Partition),
	}

	if opts != nil {
		p.filter = opts.Filter
		p.dataset = opts.Dataset
		p.output = opts.Projection

		if p.output == nil {
			p.output = opts.Dataset
		}
	}

	if expr.IsTrue(p.filter) {
		p.filter = nil
	}

	return &p
}

// Evaluate - применение фильтра и проекции к батчу файла
//
// Колонки, которых нет в файле, берутся из гарантии раздела (field == literal),
// иначе заполняются null с типом из схемы набора. Результат принадлежит вызывающему.
func Evaluate(ctx context.Context, mem memory.Allocator, opts *ScanOptions, frag Fragment, rec arrow.Record) (arrow.Record, error) {
	return newPlan(mem, opts, frag).apply(ctx, rec)
}

func (p *plan) apply(ctx context.Context, rec arrow.Record) (_ arrow.Record, err error) {
	var work, kept arrow.Record

	output := p.output
	if output == nil {
		output = rec.Schema()
	}

	if work, err = p.materialize(rec, output); err != nil {
		return nil, err
	}
	defer work.Release()

	if kept, err = expr.Filter(ctx, p.filter, work, p.mem); err != nil {
		return nil, ErrEvaluate.WithReason(err)
	}
	defer kept.Release()

	return p.project(ctx, kept, output)
}

func (p *plan) materialize(rec arrow.Record, output *arrow.Schema) (_ arrow.Record, err error) {
	names := make([]string, 0, output.NumFields()+4)
	seen := make(map[string]struct{}, cap(names))

	for _, fld := range output.Fields() {
		names = append(names, fld.Name)
		seen[fld.Name] = struct{}{}
	}

	if p.filter != nil {
		for _, name := range expr.Fields(p.filter) {
			if _, ok := seen[name]; !ok {
				names = append(names, name)
			}
		}
	}

	rows := int(rec.NumRows())
	cols := make([]arrow.Array, 0, len(names))
	flds := make([]arrow.Field, 0, len(names))

	defer func() {
		for i := range cols {
			cols[i].Release()
		}
	}()

	for _, name := range names {
		var col arrow.Array

		if idx := rec.Schema().FieldIndices(name); len(idx) > 0 {
			col = rec.Column(idx[0])
			col.Retain()
		} else if col, err = p.missing(name, output, rows); err != nil {
			return nil, err
		}

		cols = append(cols, col)
		flds = append(flds, arrow.Field{Name: name, Type: col.DataType(), Nullable: true})
	}

	return array.NewRecord(arrow.NewSchema(flds, nil), cols, rec.NumRows()), nil
}

func (p *plan) missing(name string, output *arrow.Schema, rows int) (arrow.Array, error) {
	var dt arrow.DataType = arrow.Null

	for _, sch := range []*arrow.Schema{p.dataset, output} {
		if sch == nil {
			continue
		}

		if idx := sch.FieldIndices(name); len(idx) > 0 {
			dt = sch.Field(idx[0]).Type
			break
		}
	}

	lit, ok := p.known[name]
	if !ok || lit.Value == nil {
		return array.MakeArrayOfNull(p.mem, dt, rows), nil
	}

	val := scalar.MakeScalar(lit.Value)

	if dt.ID() != arrow.NULL {
		var err error

		if val, err = val.CastTo(dt); err != nil {
			return nil, ErrEvaluate.WithReason(err).WithDetail("Значение раздела для колонки %s", name)
		}
	}

	arr, err := scalar.MakeArrayFromScalar(val, rows, p.mem)
	if err != nil {
		return nil, ErrEvaluate.WithReason(err).WithDetail("Значение раздела для колонки %s", name)
	}

	return arr, nil
}

func (p *plan) project(ctx context.Context, rec arrow.Record, output *arrow.Schema) (_ arrow.Record, err error) {
	cols := make([]arrow.Array, 0, output.NumFields())

	defer func() {
		for i := range cols {
			cols[i].Release()
		}
	}()

	for _, fld := range output.Fields() {
		idx := rec.Schema().FieldIndices(fld.Name)
		if len(idx) == 0 {
			return nil, ErrEvaluate.WithDetail("Колонка %s отсутствует после фильтрации", fld.Name)
		}

		col := rec.Column(idx[0])

		if arrow.TypeEqual(col.DataType(), fld.Type) {
			col.Retain()
		} else if col, err = compute.CastArray(compute.WithAllocator(ctx, p.mem), col, compute.SafeCastOptions(fld.Type)); err != nil {
			return nil, ErrEvaluate.WithReason(err).WithDetail("Колонку %s нельзя привести к %s", fld.Name, fld.Type)
		}

		cols = append(cols, col)
	}

	return array.NewRecord(output, cols, rec.NumRows()), nil
}
