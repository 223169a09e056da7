package godb

// Database bundles a Catalog and a BufferPool and is passed explicitly to
// operator constructors, rather than exposed as process-wide state via
// package-level getters -- the adaptation spec.md section 9's "Catalog
// singletons" note calls for.
type Database struct {
	Catalog *Catalog
	Buffer  *BufferPool
}

// NewDatabase constructs an empty Database backed by a buffer pool with
// capacity numPages.
func NewDatabase(numPages int) *Database {
	return &Database{
		Catalog: NewCatalog(),
		Buffer:  NewBufferPool(numPages),
	}
}

// NewDatabaseFromConfig constructs an empty Database whose buffer pool
// capacity and lock-wait timeout ceiling come from cfg. cfg.Apply is not
// called here; callers that also need PageSize/StringLength applied should
// call it themselves before opening any table.
func NewDatabaseFromConfig(cfg Config) *Database {
	return &Database{
		Catalog: NewCatalog(),
		Buffer:  NewBufferPoolFromConfig(cfg.BufferPoolPages, cfg.LockTimeoutCeilMs),
	}
}

// OpenTable opens (creating if needed) a heap file at path with descriptor
// td, registers it in the catalog under name with primary key pk, and
// returns it.
func (d *Database) OpenTable(path string, td *TupleDesc, name string, pk string) (*HeapFile, error) {
	hf, err := NewHeapFile(path, td, d.Buffer)
	if err != nil {
		return nil, err
	}
	d.Catalog.AddTable(hf, name, pk)
	return hf, nil
}
