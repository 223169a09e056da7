package godb

// HeapFile is an unordered collection of tuples backed by a sequence of
// fixed-size heap pages on disk.
//
// Grounded on the teacher's heap_file.go: NewHeapFile's availablePages
// free-space cache, readPage/flushPage's file-offset math, the Iterator
// page-cursor shape, and LoadFromCSV (kept for bulk loading in tests) are
// all adapted from it. insertTuple/deleteTuple/Iterator are rewritten to
// route every page access through BufferPool.GetPage with explicit
// read/write permission, returning the dirtied-page set spec.md section 4.2
// describes, rather than the teacher's direct-mutation shortcut. pageKey
// changed from an ad hoc heapHash{FileName,PageNo} into the PageID{TableID,
// PageNo} pair spec.md section 3 defines, with TableID derived from
// hash(canonicalPath).

import (
	"bufio"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// HeapFile is the sole on-disk table representation in this package.
type HeapFile struct {
	backingFile string
	tableID     int
	tupleDesc   *TupleDesc
	bufPool     *BufferPool

	mu             sync.Mutex
	availablePages []bool
}

// tableIDFromPath derives a stable table id from the file's canonical path,
// per spec.md section 3 ("Table id equals the file's stable identifier
// (hash of its canonical on-disk path)"). hash/fnv is the standard library's
// general-purpose non-cryptographic hash; no library in the corpus offers
// path hashing, so stdlib is the natural fit here (see DESIGN.md).
func tableIDFromPath(path string) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, newErr(IoError, "resolving canonical path for %s: %v", path, err)
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(abs))
	return int(h.Sum32()), nil
}

// NewHeapFile constructs a HeapFile backed by fromFile (created if it does
// not exist) with tuple descriptor td, caching pages through bp.
func NewHeapFile(fromFile string, td *TupleDesc, bp *BufferPool) (*HeapFile, error) {
	tid, err := tableIDFromPath(fromFile)
	if err != nil {
		return nil, err
	}
	if _, err := os.OpenFile(fromFile, os.O_CREATE|os.O_RDWR, 0666); err != nil {
		return nil, newErr(IoError, "opening backing file %s: %v", fromFile, err)
	}
	hf := &HeapFile{
		backingFile: fromFile,
		tableID:     tid,
		tupleDesc:   td,
		bufPool:     bp,
	}
	n := hf.numPages()
	hf.availablePages = make([]bool, n)
	for i := range hf.availablePages {
		hf.availablePages[i] = true
	}
	bp.registerFile(hf)
	return hf, nil
}

// BackingFile returns the name of the file backing this table.
func (f *HeapFile) BackingFile() string {
	return f.backingFile
}

// ID returns the table id derived from this file's canonical path.
func (f *HeapFile) ID() int {
	return f.tableID
}

// numPages returns floor(fileLength/PageSize); spec.md's open question
// between floor and ceiling is resolved in favor of floor (DESIGN.md),
// since the on-disk format requires exact-page files. This reflects only
// what has actually been flushed to disk, which lags logicalNumPages for
// pages a still-open transaction has created but not yet committed.
func (f *HeapFile) numPages() int {
	info, err := os.Stat(f.backingFile)
	if err != nil {
		return 0
	}
	return int(info.Size() / int64(PageSize))
}

// logicalNumPages returns the number of pages this HeapFile has allocated
// page numbers for, including pages a transaction has created but not yet
// committed (and so not yet flushed to disk). insertTuple's free-space
// search and iterator both use this instead of numPages, so a transaction
// can read back a page it just created before committing.
func (f *HeapFile) logicalNumPages() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.availablePages)
}

// LoadFromCSV bulk-loads file (fields separated by sep, optionally headered)
// into this table inside its own transaction. Kept from the teacher for
// test data setup.
func (f *HeapFile) LoadFromCSV(file *os.File, hasHeader bool, sep string, skipLastField bool) error {
	scanner := bufio.NewScanner(file)
	cnt := 0
	tid := NewTID()
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Split(line, sep)
		if skipLastField {
			fields = fields[:len(fields)-1]
		}
		cnt++
		if cnt == 1 && hasHeader {
			continue
		}
		if len(fields) != len(f.tupleDesc.Fields) {
			f.bufPool.transactionComplete(tid, false)
			return newErr(DbError, "line %d (%s): expected %d fields, got %d", cnt, line, len(f.tupleDesc.Fields), len(fields))
		}
		newFields := make([]DBValue, 0, len(fields))
		for i, raw := range fields {
			switch f.tupleDesc.Fields[i].Ftype {
			case IntType:
				v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
				if err != nil {
					f.bufPool.transactionComplete(tid, false)
					return newErr(DbError, "line %d: cannot convert %q to int", cnt, raw)
				}
				newFields = append(newFields, IntField{Value: int32(v)})
			case StringType:
				if len(raw) > StringLength {
					raw = raw[:StringLength]
				}
				newFields = append(newFields, StringField{Value: raw})
			}
		}
		t := &Tuple{Desc: *f.tupleDesc, Fields: newFields}
		if _, err := f.insertTuple(tid, t); err != nil {
			f.bufPool.transactionComplete(tid, false)
			return err
		}
	}
	f.bufPool.transactionComplete(tid, true)
	return nil
}

// readPage reads page pageNo directly off disk, bypassing the buffer pool.
// Called by BufferPool.GetPage on a cache miss.
func (f *HeapFile) readPage(pageNo int) (Page, error) {
	fh, err := os.OpenFile(f.backingFile, os.O_RDWR, 0666)
	if err != nil {
		return nil, newErr(IoError, "opening %s: %v", f.backingFile, err)
	}
	defer fh.Close()

	data := make([]byte, PageSize)
	offset := int64(pageNo) * int64(PageSize)
	if _, err := fh.ReadAt(data, offset); err != nil && err != io.EOF {
		return nil, newErr(IoError, "reading page %d of %s: %v", pageNo, f.backingFile, err)
	}
	id := PageID{TableID: f.tableID, PageNo: pageNo}
	return newHeapPageFromBytes(id, f.tupleDesc, f, data)
}

// writePage forces p to its offset in the backing file, extending the file
// if necessary.
func (f *HeapFile) writePage(p Page) error {
	hp, ok := p.(*heapPage)
	if !ok {
		return newErr(DbError, "writePage: not a heap page")
	}
	fh, err := os.OpenFile(f.backingFile, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return newErr(IoError, "opening %s: %v", f.backingFile, err)
	}
	defer fh.Close()

	data, err := hp.getPageData()
	if err != nil {
		return err
	}
	offset := int64(hp.id.PageNo) * int64(PageSize)
	if _, err := fh.WriteAt(data, offset); err != nil {
		return newErr(IoError, "writing page %d of %s: %v", hp.id.PageNo, f.backingFile, err)
	}
	return nil
}

// flushPage is an alias kept for symmetry with the teacher's naming; the
// buffer pool calls writePage directly.
func (f *HeapFile) flushPage(p Page) error {
	return f.writePage(p)
}

// insertTuple scans pages for free space, inserting into the first one
// found; if none has room, it appends a new page. Returns the single
// dirtied page, per spec.md section 4.2.
func (f *HeapFile) insertTuple(tid TransactionID, t *Tuple) ([]Page, error) {
	if !t.Desc.equals(f.tupleDesc) {
		return nil, newErr(DbError, "tuple descriptor does not match table descriptor")
	}

	f.mu.Lock()
	n := len(f.availablePages)
	f.mu.Unlock()

	for pageNo := 0; pageNo < n; pageNo++ {
		f.mu.Lock()
		idle := pageNo < len(f.availablePages) && f.availablePages[pageNo]
		f.mu.Unlock()
		if !idle {
			continue
		}
		page, err := f.bufPool.GetPage(f, pageNo, tid, WritePerm)
		if err != nil {
			return nil, err
		}
		hp := page.(*heapPage)
		if hp.getNumEmptySlots() == 0 {
			f.mu.Lock()
			f.availablePages[pageNo] = false
			f.mu.Unlock()
			continue
		}
		if _, err := hp.insertTuple(t); err != nil {
			return nil, err
		}
		hp.markDirty(tid)
		return []Page{hp}, nil
	}

	return f.createNewPage(tid, t)
}

func (f *HeapFile) createNewPage(tid TransactionID, t *Tuple) ([]Page, error) {
	f.mu.Lock()
	pageNo := len(f.availablePages)
	f.mu.Unlock()

	// Acquire the write lock on the page id up front, even though the page
	// does not exist on disk yet, so the lock manager records it under tid
	// for transactionComplete's later flush/discard bookkeeping.
	if err := f.bufPool.lockManager.acquireLock(tid, PageID{TableID: f.tableID, PageNo: pageNo}, WritePerm); err != nil {
		return nil, err
	}

	page, err := newHeapPage(f.tupleDesc, pageNo, f)
	if err != nil {
		return nil, err
	}
	if _, err := page.insertTuple(t); err != nil {
		return nil, err
	}
	page.markDirty(tid)

	// The page is not written through to disk here: doing so would extend
	// the backing file before tid commits, which NO-STEAL/FORCE forbids (an
	// aborting tid must leave no trace on disk). BufferPool.InsertTuple
	// caches this page as dirty; flushPage writes it at commit, and
	// abortPage simply drops the cached copy, leaving the file untouched.
	// logicalNumPages (not numPages, which reads the file) already counts
	// this page so the same transaction can read back what it just wrote.
	f.mu.Lock()
	f.availablePages = append(f.availablePages, true)
	f.mu.Unlock()

	return []Page{page}, nil
}

// deleteTuple removes t (identified by its RecordID) from its page. Returns
// DbError (WrongTable) if t did not come from this table.
func (f *HeapFile) deleteTuple(tid TransactionID, t *Tuple) (Page, error) {
	if t.Rid == nil {
		return nil, newErr(DbError, "tuple has no record id")
	}
	if t.Rid.PageID.TableID != f.tableID {
		return nil, newErr(DbError, "record id belongs to a different table")
	}
	page, err := f.bufPool.GetPage(f, t.Rid.PageID.PageNo, tid, WritePerm)
	if err != nil {
		return nil, err
	}
	hp := page.(*heapPage)
	if err := hp.deleteTuple(*t.Rid); err != nil {
		return nil, err
	}
	hp.markDirty(tid)

	f.mu.Lock()
	if t.Rid.PageID.PageNo < len(f.availablePages) {
		f.availablePages[t.Rid.PageID.PageNo] = true
	}
	f.mu.Unlock()

	return hp, nil
}

// Descriptor returns this table's schema.
func (f *HeapFile) Descriptor() *TupleDesc {
	return f.tupleDesc
}

// iterator returns a page-by-page cursor over every tuple in the table,
// fetching each page through the buffer pool with read permission.
func (f *HeapFile) iterator(tid TransactionID) (func() (*Tuple, error), error) {
	pageNo := 0
	var pageIter func() (*Tuple, error)

	return func() (*Tuple, error) {
		for {
			if pageIter == nil {
				if pageNo >= f.logicalNumPages() {
					return nil, nil
				}
				page, err := f.bufPool.GetPage(f, pageNo, tid, ReadPerm)
				if err != nil {
					return nil, err
				}
				pageIter = page.(*heapPage).tupleIter()
			}
			t, err := pageIter()
			if err != nil {
				return nil, err
			}
			if t != nil {
				return t, nil
			}
			pageIter = nil
			pageNo++
		}
	}, nil
}

// Iterator is the exported, capitalized alias the rest of the pack's forks
// expose; kept for parity with the teacher's public API.
func (f *HeapFile) Iterator(tid TransactionID) (func() (*Tuple, error), error) {
	return f.iterator(tid)
}

// pageKey returns the PageID BufferPool uses as its cache key for page
// pageNo of this file.
func (f *HeapFile) pageKey(pageNo int) PageID {
	return PageID{TableID: f.tableID, PageNo: pageNo}
}
