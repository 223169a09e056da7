package godb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeapFileScanInsertionOrder(t *testing.T) {
	desc := intTestDesc()
	hf, bp := newTestHeapFile(t, "scan", desc)
	tid := NewTID()

	for _, v := range []int32{1, 2, 3} {
		require.NoError(t, bp.InsertTuple(tid, hf.ID(), &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: v}}}))
	}

	iter, err := hf.iterator(tid)
	require.NoError(t, err)

	var got []int32
	for {
		tup, err := iter()
		require.NoError(t, err)
		if tup == nil {
			break
		}
		got = append(got, tup.Fields[0].(IntField).Value)
	}
	require.Equal(t, []int32{1, 2, 3}, got)

	tup, err := iter()
	require.NoError(t, err)
	require.Nil(t, tup)
}

func TestHeapFileSpansMultiplePages(t *testing.T) {
	desc := intTestDesc()
	hf, bp := newTestHeapFile(t, "multipage", desc)
	tid := NewTID()

	page, err := newHeapPage(desc, 0, hf)
	require.NoError(t, err)
	n := page.getNumSlots()

	for i := 0; i < n*3; i++ {
		require.NoError(t, bp.InsertTuple(tid, hf.ID(), &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: int32(i)}}}))
	}
	require.GreaterOrEqual(t, hf.logicalNumPages(), 3)
	bp.transactionComplete(tid, true)
	require.GreaterOrEqual(t, hf.numPages(), 3)

	iter, err := hf.iterator(NewTID())
	require.NoError(t, err)
	count := 0
	for {
		tup, err := iter()
		require.NoError(t, err)
		if tup == nil {
			break
		}
		count++
	}
	require.Equal(t, n*3, count)
}

func TestHeapFileDeleteFreesSlot(t *testing.T) {
	desc := intTestDesc()
	hf, bp := newTestHeapFile(t, "delete", desc)
	tid := NewTID()

	tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 5}}}
	require.NoError(t, bp.InsertTuple(tid, hf.ID(), tup))
	require.NotNil(t, tup.Rid)

	require.NoError(t, bp.DeleteTuple(tid, tup))

	err := bp.DeleteTuple(tid, tup)
	require.Error(t, err)
}
