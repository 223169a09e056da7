package godb

import (
	"errors"
)

// Project re-indexes each child tuple down to selectFields, renamed to
// outputNames, optionally suppressing duplicate output tuples.
//
// Grounded on the teacher's project_op.go; selectFields is a plain list of
// child field indices rather than the teacher's Expr list, for the same
// reason as Filter (see DESIGN.md). Distinct tracking via tupleKey() is
// kept verbatim from the teacher's approach.
type Project struct {
	opBase
	selectFields []int
	outputNames  []string
	distinct     bool
	child        Operator
}

// NewProjectOp constructs a projection operator; len(selectFields) must
// equal len(outputNames).
func NewProjectOp(selectFields []int, outputNames []string, distinct bool, child Operator) (Operator, error) {
	if len(selectFields) != len(outputNames) {
		return nil, errors.New("selectFields and outputNames must have the same length")
	}
	return &Project{selectFields: selectFields, outputNames: outputNames, distinct: distinct, child: child}, nil
}

func (p *Project) Children() []Operator {
	return []Operator{p.child}
}

func (p *Project) SetChildren(children []Operator) {
	p.child = children[0]
}

func (p *Project) Descriptor() *TupleDesc {
	childDesc := p.child.Descriptor()
	desc := &TupleDesc{Fields: make([]FieldType, len(p.selectFields))}
	for i, idx := range p.selectFields {
		ft := childDesc.Fields[idx]
		ft.Fname = p.outputNames[i]
		desc.Fields[i] = ft
	}
	return desc
}

func (p *Project) Open() error {
	if err := p.child.Open(); err != nil {
		return err
	}
	desc := *p.Descriptor()
	var seen map[any]struct{}
	if p.distinct {
		seen = make(map[any]struct{})
	}

	p.start(&desc, func() (*Tuple, error) {
		for {
			has, err := p.child.HasNext()
			if err != nil || !has {
				return nil, err
			}
			t, err := p.child.Next()
			if err != nil {
				return nil, err
			}
			out := &Tuple{Desc: desc, Fields: make([]DBValue, len(p.selectFields))}
			for i, idx := range p.selectFields {
				out.Fields[i] = t.Fields[idx]
			}
			if p.distinct {
				key := out.tupleKey()
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			return out, nil
		}
	})
	return nil
}

func (p *Project) Rewind() error {
	if err := p.child.Rewind(); err != nil {
		return err
	}
	return p.Open()
}

func (p *Project) Close() error {
	p.stop()
	return p.child.Close()
}
