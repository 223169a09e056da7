package godb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intTestDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{{Fname: "a", Ftype: IntType}}}
}

func newTestHeapFile(t *testing.T, name string, desc *TupleDesc) (*HeapFile, *BufferPool) {
	t.Helper()
	bp := NewBufferPool(10)
	hf, err := NewHeapFile(t.TempDir()+"/"+name+".dat", desc, bp)
	require.NoError(t, err)
	return hf, bp
}

func TestHeapPageBijectionAndBitmap(t *testing.T) {
	desc := intTestDesc()
	hf, _ := newTestHeapFile(t, "bijection", desc)
	page, err := newHeapPage(desc, 0, hf)
	require.NoError(t, err)

	n := page.getNumSlots()
	require.Equal(t, n, page.getNumEmptySlots())

	rid, err := page.insertTuple(&Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 7}}})
	require.NoError(t, err)

	got, err := page.getTuple(rid.Slot)
	require.NoError(t, err)
	require.Equal(t, rid, *got.Rid)
	require.Equal(t, int32(7), got.Fields[0].(IntField).Value)

	require.Equal(t, n-1, page.getNumEmptySlots())
	require.Equal(t, n-popcount(page.bitmap, n), page.getNumEmptySlots())
}

func TestHeapPageInsertRoundTrip(t *testing.T) {
	desc := intTestDesc()
	hf, _ := newTestHeapFile(t, "roundtrip", desc)
	page, err := newHeapPage(desc, 0, hf)
	require.NoError(t, err)

	tup := &Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 42}}}
	rid, err := page.insertTuple(tup)
	require.NoError(t, err)

	got, err := page.getTuple(rid.Slot)
	require.NoError(t, err)
	require.Equal(t, tup.Fields[0], got.Fields[0])
}

func TestHeapPageDeleteIdempotence(t *testing.T) {
	desc := intTestDesc()
	hf, _ := newTestHeapFile(t, "delete", desc)
	page, err := newHeapPage(desc, 0, hf)
	require.NoError(t, err)

	rid, err := page.insertTuple(&Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 1}}})
	require.NoError(t, err)

	require.NoError(t, page.deleteTuple(rid))

	err = page.deleteTuple(rid)
	require.Error(t, err)
	gerr, ok := err.(GoDBError)
	require.True(t, ok)
	require.Equal(t, DbError, gerr.Code())
}

func TestHeapPageSerializationRoundTrip(t *testing.T) {
	desc := intTestDesc()
	hf, _ := newTestHeapFile(t, "serialize", desc)
	page, err := newHeapPage(desc, 0, hf)
	require.NoError(t, err)
	_, err = page.insertTuple(&Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 99}}})
	require.NoError(t, err)

	data1, err := page.getPageData()
	require.NoError(t, err)

	reparsed, err := newHeapPageFromBytes(page.id, desc, hf, data1)
	require.NoError(t, err)

	data2, err := reparsed.getPageData()
	require.NoError(t, err)
	require.Equal(t, data1, data2)
}

func TestHeapPageFullFailsInsert(t *testing.T) {
	desc := intTestDesc()
	hf, _ := newTestHeapFile(t, "full", desc)
	page, err := newHeapPage(desc, 0, hf)
	require.NoError(t, err)

	n := page.getNumSlots()
	for i := 0; i < n; i++ {
		_, err := page.insertTuple(&Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: int32(i)}}})
		require.NoError(t, err)
	}
	_, err = page.insertTuple(&Tuple{Desc: *desc, Fields: []DBValue{IntField{Value: 999}}})
	require.Error(t, err)
}
