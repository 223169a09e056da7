package godb

// DeleteOp drains its child, deleting every tuple via the buffer pool, then
// reports a {count} tuple exactly as InsertOp does.
//
// Grounded on the teacher's delete_op.go; rewritten to route through
// BufferPool.DeleteTuple and the Operator capability.
type DeleteOp struct {
	opBase
	bp    *BufferPool
	tid   TransactionID
	child Operator
}

// NewDeleteOp constructs a delete operator.
func NewDeleteOp(bp *BufferPool, tid TransactionID, child Operator) (*DeleteOp, error) {
	return &DeleteOp{bp: bp, tid: tid, child: child}, nil
}

func (d *DeleteOp) Children() []Operator {
	return []Operator{d.child}
}

func (d *DeleteOp) SetChildren(children []Operator) {
	d.child = children[0]
}

func (d *DeleteOp) Descriptor() *TupleDesc {
	return countDesc
}

func (d *DeleteOp) Open() error {
	if err := d.child.Open(); err != nil {
		return err
	}
	done := false
	d.start(countDesc, func() (*Tuple, error) {
		if done {
			return nil, nil
		}
		count := int32(0)
		for {
			has, err := d.child.HasNext()
			if err != nil {
				return nil, err
			}
			if !has {
				break
			}
			t, err := d.child.Next()
			if err != nil {
				return nil, err
			}
			if err := d.bp.DeleteTuple(d.tid, t); err != nil {
				return nil, err
			}
			count++
		}
		done = true
		return &Tuple{Desc: *countDesc, Fields: []DBValue{IntField{Value: count}}}, nil
	})
	return nil
}

func (d *DeleteOp) Rewind() error {
	if err := d.child.Rewind(); err != nil {
		return err
	}
	return d.Open()
}

func (d *DeleteOp) Close() error {
	d.stop()
	return d.child.Close()
}
