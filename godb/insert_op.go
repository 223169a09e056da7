package godb

// InsertOp drains its child operator, inserting every tuple into tableId via
// the buffer pool, then on its first Next returns a single-field {count}
// tuple; Next is exhausted on any call after that.
//
// Grounded on the teacher's insert_op.go for the one-column "count"
// descriptor and drain-then-report shape; rewritten to route through
// BufferPool.InsertTuple (spec.md section 4.6) instead of calling DBFile's
// insertTuple directly, and to implement the Operator capability instead of
// the teacher's closure iterator.
type InsertOp struct {
	opBase
	bp      *BufferPool
	tid     TransactionID
	tableId int
	child   Operator

	reported bool
}

var countDesc = &TupleDesc{Fields: []FieldType{{Fname: "count", Ftype: IntType}}}

// NewInsertOp constructs an insert operator. child's descriptor must match
// the target table's descriptor.
func NewInsertOp(bp *BufferPool, tid TransactionID, tableId int, child Operator) (*InsertOp, error) {
	return &InsertOp{bp: bp, tid: tid, tableId: tableId, child: child}, nil
}

func (i *InsertOp) Children() []Operator {
	return []Operator{i.child}
}

func (i *InsertOp) SetChildren(children []Operator) {
	i.child = children[0]
}

func (i *InsertOp) Descriptor() *TupleDesc {
	return countDesc
}

func (i *InsertOp) Open() error {
	if err := i.child.Open(); err != nil {
		return err
	}
	i.reported = false
	done := false
	i.start(countDesc, func() (*Tuple, error) {
		if done {
			return nil, nil
		}
		count := int32(0)
		for {
			has, err := i.child.HasNext()
			if err != nil {
				return nil, err
			}
			if !has {
				break
			}
			t, err := i.child.Next()
			if err != nil {
				return nil, err
			}
			if err := i.bp.InsertTuple(i.tid, i.tableId, t); err != nil {
				return nil, err
			}
			count++
		}
		done = true
		return &Tuple{Desc: *countDesc, Fields: []DBValue{IntField{Value: count}}}, nil
	})
	return nil
}

func (i *InsertOp) Rewind() error {
	if err := i.child.Rewind(); err != nil {
		return err
	}
	return i.Open()
}

func (i *InsertOp) Close() error {
	i.stop()
	return i.child.Close()
}
