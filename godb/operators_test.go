package godb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, op Operator) []*Tuple {
	t.Helper()
	require.NoError(t, op.Open())
	defer op.Close()
	var out []*Tuple
	for {
		has, err := op.HasNext()
		require.NoError(t, err)
		if !has {
			break
		}
		tup, err := op.Next()
		require.NoError(t, err)
		out = append(out, tup)
	}
	return out
}

func TestSeqScanYieldsInsertionOrder(t *testing.T) {
	desc := intTestDesc()
	hf, bp := newTestHeapFile(t, "seqscan", desc)
	tid := NewTID()
	for _, v := range []int32{1, 2, 3} {
		require.NoError(t, bp.InsertTuple(tid, hf.ID(), &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: v}}}))
	}

	scan, err := NewSeqScan(tid, hf, "a")
	require.NoError(t, err)

	got := drain(t, scan)
	require.Len(t, got, 3)
	for i, v := range []int32{1, 2, 3} {
		require.Equal(t, v, got[i].Fields[0].(IntField).Value)
	}
}

func TestFilterGreaterThan(t *testing.T) {
	desc := intTestDesc()
	hf, bp := newTestHeapFile(t, "filter", desc)
	tid := NewTID()
	for _, v := range []int32{1, 2, 3} {
		require.NoError(t, bp.InsertTuple(tid, hf.ID(), &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: v}}}))
	}

	scan, err := NewSeqScan(tid, hf, "a")
	require.NoError(t, err)
	filt, err := NewFilter(0, OpGt, IntField{Value: 1}, scan)
	require.NoError(t, err)

	got := drain(t, filt)
	require.Len(t, got, 2)
	require.Equal(t, int32(2), got[0].Fields[0].(IntField).Value)
	require.Equal(t, int32(3), got[1].Fields[0].(IntField).Value)
}

func TestJoinEquality(t *testing.T) {
	descA := &TupleDesc{Fields: []FieldType{{Fname: "id", Ftype: IntType}}}
	descB := &TupleDesc{Fields: []FieldType{{Fname: "id", Ftype: IntType}, {Fname: "name", Ftype: StringType}}}
	hfA, bp := newTestHeapFile(t, "joinA", descA)
	hfB, err := NewHeapFile(t.TempDir()+"/joinB.dat", descB, bp)
	require.NoError(t, err)

	tid := NewTID()
	for _, v := range []int32{1, 2, 3} {
		require.NoError(t, bp.InsertTuple(tid, hfA.ID(), &Tuple{Desc: *descA, Fields: []DBValue{IntField{Value: v}}}))
	}
	for _, row := range []struct {
		id   int32
		name string
	}{{2, "x"}, {3, "y"}, {4, "z"}} {
		require.NoError(t, bp.InsertTuple(tid, hfB.ID(), &Tuple{Desc: *descB, Fields: []DBValue{IntField{Value: row.id}, StringField{Value: row.name}}}))
	}

	scanA, err := NewSeqScan(tid, hfA, "a")
	require.NoError(t, err)
	scanB, err := NewSeqScan(tid, hfB, "b")
	require.NoError(t, err)
	join, err := NewJoin(scanA, 0, scanB, 0, OpEq)
	require.NoError(t, err)

	got := drain(t, join)
	require.Len(t, got, 2)
	require.Equal(t, int32(2), got[0].Fields[0].(IntField).Value)
	require.Equal(t, "x", got[0].Fields[2].(StringField).Value)
	require.Equal(t, int32(3), got[1].Fields[0].(IntField).Value)
	require.Equal(t, "y", got[1].Fields[2].(StringField).Value)
}

func TestAggregateCountNoGrouping(t *testing.T) {
	desc := intTestDesc()
	hf, bp := newTestHeapFile(t, "countagg", desc)
	tid := NewTID()
	for _, v := range []int32{1, 2, 3} {
		require.NoError(t, bp.InsertTuple(tid, hf.ID(), &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: v}}}))
	}

	scan, err := NewSeqScan(tid, hf, "a")
	require.NoError(t, err)
	agg, err := NewAggregator(scan, 0, NoGrouping, func() AggState {
		s := &CountAggState{}
		s.Init("count", 0)
		return s
	})
	require.NoError(t, err)

	got := drain(t, agg)
	require.Len(t, got, 1)
	require.Equal(t, int32(3), got[0].Fields[0].(IntField).Value)
}

func TestInsertOpReportsCountThenExhausts(t *testing.T) {
	desc := intTestDesc()
	hf, bp := newTestHeapFile(t, "insertop", desc)
	tid := NewTID()

	var rows []*Tuple
	for _, v := range []int32{1, 2, 3} {
		rows = append(rows, &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: v}}})
	}
	source := &sliceOp{desc: desc, rows: rows}

	ins, err := NewInsertOp(bp, tid, hf.ID(), source)
	require.NoError(t, err)
	require.NoError(t, ins.Open())
	defer ins.Close()

	has, err := ins.HasNext()
	require.NoError(t, err)
	require.True(t, has)
	tup, err := ins.Next()
	require.NoError(t, err)
	require.Equal(t, int32(3), tup.Fields[0].(IntField).Value)

	has, err = ins.HasNext()
	require.NoError(t, err)
	require.False(t, has)

	scan, err := NewSeqScan(tid, hf, "a")
	require.NoError(t, err)
	require.Len(t, drain(t, scan), 3)
}

func TestDeleteOpReportsCount(t *testing.T) {
	desc := intTestDesc()
	hf, bp := newTestHeapFile(t, "deleteop", desc)
	tid := NewTID()

	var toDelete []*Tuple
	for _, v := range []int32{1, 2} {
		tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: v}}}
		require.NoError(t, bp.InsertTuple(tid, hf.ID(), tup))
		toDelete = append(toDelete, tup)
	}
	source := &sliceOp{desc: desc, rows: toDelete}

	del, err := NewDeleteOp(bp, tid, source)
	require.NoError(t, err)
	got := drain(t, del)
	require.Len(t, got, 1)
	require.Equal(t, int32(2), got[0].Fields[0].(IntField).Value)

	scan, err := NewSeqScan(tid, hf, "a")
	require.NoError(t, err)
	require.Empty(t, drain(t, scan))
}

func TestOrderByDescending(t *testing.T) {
	desc := intTestDesc()
	hf, bp := newTestHeapFile(t, "orderby", desc)
	tid := NewTID()
	for _, v := range []int32{1, 3, 2} {
		require.NoError(t, bp.InsertTuple(tid, hf.ID(), &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: v}}}))
	}

	scan, err := NewSeqScan(tid, hf, "a")
	require.NoError(t, err)
	ob, err := NewOrderBy([]int{0}, scan, []bool{false})
	require.NoError(t, err)

	got := drain(t, ob)
	require.Len(t, got, 3)
	require.Equal(t, []int32{3, 2, 1}, []int32{
		got[0].Fields[0].(IntField).Value,
		got[1].Fields[0].(IntField).Value,
		got[2].Fields[0].(IntField).Value,
	})
}

func TestProjectRenamesAndDedups(t *testing.T) {
	desc := intTestDesc()
	hf, bp := newTestHeapFile(t, "project", desc)
	tid := NewTID()
	for _, v := range []int32{1, 1, 2} {
		require.NoError(t, bp.InsertTuple(tid, hf.ID(), &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: v}}}))
	}

	scan, err := NewSeqScan(tid, hf, "a")
	require.NoError(t, err)
	proj, err := NewProjectOp([]int{0}, []string{"renamed"}, true, scan)
	require.NoError(t, err)
	require.Equal(t, "renamed", proj.Descriptor().Fields[0].Fname)

	got := drain(t, proj)
	require.Len(t, got, 2)
}

func TestLimitOpStopsAtLimit(t *testing.T) {
	desc := intTestDesc()
	hf, bp := newTestHeapFile(t, "limit", desc)
	tid := NewTID()
	for _, v := range []int32{1, 2, 3} {
		require.NoError(t, bp.InsertTuple(tid, hf.ID(), &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: v}}}))
	}

	scan, err := NewSeqScan(tid, hf, "a")
	require.NoError(t, err)
	lim := NewLimitOp(2, scan)

	got := drain(t, lim)
	require.Len(t, got, 2)
}

// sliceOp is a minimal Operator yielding a fixed, in-memory tuple slice; used
// by tests that need an Insert/Delete source not backed by a heap file scan.
type sliceOp struct {
	opBase
	desc *TupleDesc
	rows []*Tuple
}

func (s *sliceOp) Children() []Operator   { return nil }
func (s *sliceOp) SetChildren([]Operator) {}
func (s *sliceOp) Descriptor() *TupleDesc { return s.desc }

func (s *sliceOp) Open() error {
	i := 0
	s.start(s.desc, func() (*Tuple, error) {
		if i >= len(s.rows) {
			return nil, nil
		}
		t := s.rows[i]
		i++
		return t, nil
	})
	return nil
}

func (s *sliceOp) Rewind() error {
	return s.Open()
}

func (s *sliceOp) Close() error {
	s.stop()
	return nil
}

func TestAggregateAvgTruncates(t *testing.T) {
	desc := intTestDesc()
	hf, bp := newTestHeapFile(t, "avgagg", desc)
	tid := NewTID()
	for _, v := range []int32{2, 4, 5} {
		require.NoError(t, bp.InsertTuple(tid, hf.ID(), &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: v}}}))
	}

	scan, err := NewSeqScan(tid, hf, "a")
	require.NoError(t, err)
	agg, err := NewAggregator(scan, 0, NoGrouping, func() AggState {
		s := &AvgAggState{}
		s.Init("avg", 0)
		return s
	})
	require.NoError(t, err)

	got := drain(t, agg)
	require.Len(t, got, 1)
	require.Equal(t, int32(3), got[0].Fields[0].(IntField).Value)
}
