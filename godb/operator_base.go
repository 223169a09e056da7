package godb

// opBase is the shared state every operator embeds to satisfy the Operator
// contract's one-tuple lookahead: hasNext must be idempotent between calls
// to next, so it memoizes the next tuple the first time it is asked rather
// than re-pulling on every call. This replaces the teacher's closure-typed
// `Iterator(tid) (func() (*Tuple, error), error)` operators with the
// explicit open/hasNext/next/rewind/close capability spec.md section 9
// calls for.
type opBase struct {
	desc     *TupleDesc
	children []Operator

	pull      func() (*Tuple, error)
	lookahead *Tuple
	done      bool
	opened    bool
}

func (b *opBase) start(desc *TupleDesc, pull func() (*Tuple, error)) {
	b.desc = desc
	b.pull = pull
	b.lookahead = nil
	b.done = false
	b.opened = true
}

func (b *opBase) stop() {
	b.opened = false
	b.pull = nil
	b.lookahead = nil
	b.done = false
}

func (b *opBase) Descriptor() *TupleDesc {
	return b.desc
}

func (b *opBase) Children() []Operator {
	return b.children
}

func (b *opBase) SetChildren(children []Operator) {
	b.children = children
}

func (b *opBase) HasNext() (bool, error) {
	if !b.opened {
		return false, newErr(DbError, "operator is not open")
	}
	if b.lookahead != nil {
		return true, nil
	}
	if b.done {
		return false, nil
	}
	t, err := b.pull()
	if err != nil {
		return false, err
	}
	if t == nil {
		b.done = true
		return false, nil
	}
	b.lookahead = t
	return true, nil
}

func (b *opBase) Next() (*Tuple, error) {
	has, err := b.HasNext()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, newErr(NoSuchElementError, "operator exhausted")
	}
	t := b.lookahead
	b.lookahead = nil
	return t, nil
}
