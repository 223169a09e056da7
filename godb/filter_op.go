package godb

// Filter yields only the tuples from its child for which field fieldIndex
// compares true against literal under op.
//
// Grounded on the teacher's filter_op.go; the teacher's Expr-tree predicate
// (built to accept parser output) is replaced by a plain (fieldIndex, op,
// literal) triple, since the parser that produced Expr trees is out of
// scope (see DESIGN.md).
type Filter struct {
	opBase
	fieldIndex int
	op         BoolOp
	literal    DBValue
	child      Operator
}

// NewFilter constructs a filter operator.
func NewFilter(fieldIndex int, op BoolOp, literal DBValue, child Operator) (*Filter, error) {
	return &Filter{fieldIndex: fieldIndex, op: op, literal: literal, child: child}, nil
}

func (f *Filter) Children() []Operator {
	return []Operator{f.child}
}

func (f *Filter) SetChildren(children []Operator) {
	f.child = children[0]
}

func (f *Filter) Descriptor() *TupleDesc {
	return f.child.Descriptor()
}

func (f *Filter) Open() error {
	if err := f.child.Open(); err != nil {
		return err
	}
	f.start(f.child.Descriptor(), func() (*Tuple, error) {
		for {
			has, err := f.child.HasNext()
			if err != nil || !has {
				return nil, err
			}
			t, err := f.child.Next()
			if err != nil {
				return nil, err
			}
			if t.Fields[f.fieldIndex].EvalPred(f.literal, f.op) {
				return t, nil
			}
		}
	})
	return nil
}

func (f *Filter) Rewind() error {
	if err := f.child.Rewind(); err != nil {
		return err
	}
	return f.Open()
}

func (f *Filter) Close() error {
	f.stop()
	return f.child.Close()
}
