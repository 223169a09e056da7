package godb

import (
	"sort"
)

// OrderBy sorts its child into memory on Open, then replays the sorted
// tuples one by one. It does not change the fields emitted, only their
// order.
//
// Grounded on the teacher's order_by_op.go for the blocking-sort design and
// sort.Sort usage; orderByFields is a plain field-index list rather than
// the teacher's Expr list, for the same reason as Filter (see DESIGN.md).
type OrderBy struct {
	opBase
	orderByFields []int
	ascending     []bool
	child         Operator
}

// NewOrderBy constructs a blocking sort over child, ordering by
// orderByFields in sequence; ascending[i] selects ascending/descending
// order for orderByFields[i].
func NewOrderBy(orderByFields []int, child Operator, ascending []bool) (*OrderBy, error) {
	return &OrderBy{orderByFields: orderByFields, ascending: ascending, child: child}, nil
}

func (o *OrderBy) Children() []Operator {
	return []Operator{o.child}
}

func (o *OrderBy) SetChildren(children []Operator) {
	o.child = children[0]
}

func (o *OrderBy) Descriptor() *TupleDesc {
	return o.child.Descriptor()
}

func (o *OrderBy) Open() error {
	if err := o.child.Open(); err != nil {
		return err
	}
	var all []*Tuple
	for {
		has, err := o.child.HasNext()
		if err != nil {
			return err
		}
		if !has {
			break
		}
		t, err := o.child.Next()
		if err != nil {
			return err
		}
		all = append(all, t)
	}
	sort.Sort(sortTuples{fields: o.orderByFields, ascending: o.ascending, all: all})

	i := 0
	o.start(o.child.Descriptor(), func() (*Tuple, error) {
		if i >= len(all) {
			return nil, nil
		}
		t := all[i]
		i++
		return t, nil
	})
	return nil
}

func (o *OrderBy) Rewind() error {
	if err := o.child.Rewind(); err != nil {
		return err
	}
	return o.Open()
}

func (o *OrderBy) Close() error {
	o.stop()
	return o.child.Close()
}

type sortTuples struct {
	fields    []int
	ascending []bool
	all       []*Tuple
}

func (s sortTuples) Less(a, b int) bool {
	tupleA, tupleB := s.all[a], s.all[b]
	for i, field := range s.fields {
		valA, valB := tupleA.Fields[field], tupleB.Fields[field]
		if valA.EvalPred(valB, OpEq) {
			continue
		}
		if s.ascending[i] {
			return valA.EvalPred(valB, OpLt)
		}
		return !valA.EvalPred(valB, OpLt)
	}
	return false
}

func (s sortTuples) Swap(a, b int) {
	s.all[a], s.all[b] = s.all[b], s.all[a]
}

func (s sortTuples) Len() int {
	return len(s.all)
}
