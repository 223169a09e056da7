package godb

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogAddTableAndLookup(t *testing.T) {
	c := NewCatalog()
	desc := intTestDesc()
	hf, _ := newTestHeapFile(t, "cat", desc)

	c.AddTable(hf, "widgets", "a")

	id, err := c.GetTableId("widgets")
	require.NoError(t, err)
	require.Equal(t, hf.ID(), id)

	td, err := c.GetTupleDesc(id)
	require.NoError(t, err)
	require.Equal(t, desc.Fields, td.Fields)

	pk, err := c.GetPrimaryKey(id)
	require.NoError(t, err)
	require.Equal(t, "a", pk)

	name, err := c.GetTableName(id)
	require.NoError(t, err)
	require.Equal(t, "widgets", name)

	require.Contains(t, c.TableIds(), id)
}

func TestCatalogAddTableLastWriterWinsOnRename(t *testing.T) {
	c := NewCatalog()
	desc := intTestDesc()
	hf1, _ := newTestHeapFile(t, "cat1", desc)
	hf2, _ := newTestHeapFile(t, "cat2", desc)

	c.AddTable(hf1, "widgets", "a")
	c.AddTable(hf2, "widgets", "")

	id, err := c.GetTableId("widgets")
	require.NoError(t, err)
	require.Equal(t, hf2.ID(), id)

	_, err = c.GetTupleDesc(hf1.ID())
	require.Error(t, err)
}

func TestCatalogMissingTableErrors(t *testing.T) {
	c := NewCatalog()
	_, err := c.GetTableId("nope")
	require.Error(t, err)
	gerr, ok := err.(GoDBError)
	require.True(t, ok)
	require.Equal(t, NoSuchElementError, gerr.Code())

	_, err = c.GetDatabaseFile(99)
	require.Error(t, err)
	_, err = c.GetPrimaryKey(99)
	require.Error(t, err)
	_, err = c.GetTableName(99)
	require.Error(t, err)
}

func TestCatalogAddTableAnonymousIsUnique(t *testing.T) {
	c := NewCatalog()
	desc := intTestDesc()
	hf1, _ := newTestHeapFile(t, "anon1", desc)
	hf2, _ := newTestHeapFile(t, "anon2", desc)

	c.AddTableAnonymous(hf1)
	c.AddTableAnonymous(hf2)

	name1, err := c.GetTableName(hf1.ID())
	require.NoError(t, err)
	name2, err := c.GetTableName(hf2.ID())
	require.NoError(t, err)
	require.NotEqual(t, name1, name2)
}

func TestCatalogClearRemovesEverything(t *testing.T) {
	c := NewCatalog()
	desc := intTestDesc()
	hf, _ := newTestHeapFile(t, "clear", desc)
	c.AddTable(hf, "widgets", "")

	c.Clear()
	require.Empty(t, c.TableIds())
	_, err := c.GetTableId("widgets")
	require.Error(t, err)
}

func TestCatalogLoadSchemaParsesColumnsAndPrimaryKey(t *testing.T) {
	dir := t.TempDir()
	schemaPath := dir + "/catalog.txt"
	require.NoError(t, os.WriteFile(schemaPath, []byte("widgets (id int pk, name string)\n"), 0o644))

	bp := NewBufferPool(10)
	c := NewCatalog()
	require.NoError(t, c.LoadSchema(schemaPath, dir, bp))

	id, err := c.GetTableId("widgets")
	require.NoError(t, err)

	td, err := c.GetTupleDesc(id)
	require.NoError(t, err)
	require.Len(t, td.Fields, 2)
	require.Equal(t, "id", td.Fields[0].Fname)
	require.Equal(t, IntType, td.Fields[0].Ftype)
	require.Equal(t, "name", td.Fields[1].Fname)
	require.Equal(t, StringType, td.Fields[1].Ftype)

	pk, err := c.GetPrimaryKey(id)
	require.NoError(t, err)
	require.Equal(t, "id", pk)
}

func TestCatalogLoadSchemaRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	schemaPath := dir + "/catalog.txt"
	require.NoError(t, os.WriteFile(schemaPath, []byte("widgets id int pk)\n"), 0o644))

	bp := NewBufferPool(10)
	c := NewCatalog()
	require.Error(t, c.LoadSchema(schemaPath, dir, bp))
}
