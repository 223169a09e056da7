package godb

// LimitOp passes through at most limit tuples from its child, then reports
// exhausted.
//
// Grounded on the teacher's limit_op.go; limit is a plain int rather than
// the teacher's Expr (see DESIGN.md).
type LimitOp struct {
	opBase
	limit int
	child Operator
}

// NewLimitOp constructs a limit operator yielding at most limit tuples.
func NewLimitOp(limit int, child Operator) *LimitOp {
	return &LimitOp{limit: limit, child: child}
}

func (l *LimitOp) Children() []Operator {
	return []Operator{l.child}
}

func (l *LimitOp) SetChildren(children []Operator) {
	l.child = children[0]
}

func (l *LimitOp) Descriptor() *TupleDesc {
	return l.child.Descriptor()
}

func (l *LimitOp) Open() error {
	if err := l.child.Open(); err != nil {
		return err
	}
	count := 0
	l.start(l.child.Descriptor(), func() (*Tuple, error) {
		if count >= l.limit {
			return nil, nil
		}
		has, err := l.child.HasNext()
		if err != nil || !has {
			return nil, err
		}
		t, err := l.child.Next()
		if err != nil {
			return nil, err
		}
		count++
		return t, nil
	})
	return nil
}

func (l *LimitOp) Rewind() error {
	if err := l.child.Rewind(); err != nil {
		return err
	}
	return l.Open()
}

func (l *LimitOp) Close() error {
	l.stop()
	return l.child.Close()
}
