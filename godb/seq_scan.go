package godb

// SeqScan wraps a HeapFile's tuple iterator as an Operator, exposing the
// table's descriptor with every field name prefixed by alias.
//
// No teacher file implements this directly (the teacher's lab1_query.go
// drove HeapFile.Iterator by hand); grounded on the HeapFile.iterator
// contract itself (heap_file.go) and the Operator shape spec.md section
// 4.6 assigns it.
type SeqScan struct {
	opBase
	tid     TransactionID
	file    DBFile
	alias   string
	scanned *TupleDesc
}

// NewSeqScan constructs a sequential scan over file's tuples under tid,
// with every emitted field's name prefixed by alias.
func NewSeqScan(tid TransactionID, file DBFile, alias string) (*SeqScan, error) {
	return &SeqScan{tid: tid, file: file, alias: alias, scanned: file.Descriptor().copy().setTableAlias(alias)}, nil
}

func (s *SeqScan) Children() []Operator {
	return nil
}

func (s *SeqScan) SetChildren(children []Operator) {}

func (s *SeqScan) Descriptor() *TupleDesc {
	return s.scanned
}

func (s *SeqScan) Open() error {
	iter, err := s.file.iterator(s.tid)
	if err != nil {
		return err
	}
	s.start(s.scanned, func() (*Tuple, error) {
		t, err := iter()
		if err != nil || t == nil {
			return nil, err
		}
		aliased := &Tuple{Desc: *s.scanned, Fields: t.Fields, Rid: t.Rid}
		return aliased, nil
	})
	return nil
}

func (s *SeqScan) Rewind() error {
	return s.Open()
}

func (s *SeqScan) Close() error {
	s.stop()
	return nil
}
