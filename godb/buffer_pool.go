package godb

// BufferPool caches a bounded number of pages in memory on behalf of every
// open DBFile, enforces strict two-phase locking through a lockManager, and
// implements NO-STEAL/FORCE recovery: a dirty page is never written to disk
// before its transaction commits, and every page a transaction dirtied is
// forced to disk at commit.
//
// Grounded on the teacher's buffer_pool.go for the overall shape (a
// pageNo-capacity cache keyed by PageID, GetPage, FlushAllPages,
// transactionComplete) but the teacher's own wait-for-graph deadlock
// detection and ad hoc per-call locking are replaced by delegating to
// lockManager, per spec.md section 5's chosen concurrency model.

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// BufferPool is the sole cache of in-memory pages; HeapFile never keeps a
// page around between calls.
type BufferPool struct {
	mu          sync.Mutex
	numPages    int
	pages       map[PageID]Page
	lockManager *lockManager
	files       map[int]DBFile

	log *logrus.Entry
}

// NewBufferPool constructs a buffer pool that caches at most numPages pages,
// with the default lock-wait timeout ceiling from DefaultConfig.
func NewBufferPool(numPages int) *BufferPool {
	return NewBufferPoolFromConfig(numPages, DefaultConfig().LockTimeoutCeilMs)
}

// NewBufferPoolFromConfig constructs a buffer pool that caches at most
// numPages pages, with lock waiters timing out after a random duration in
// [0, lockTimeoutCeilMs).
func NewBufferPoolFromConfig(numPages int, lockTimeoutCeilMs int) *BufferPool {
	return &BufferPool{
		numPages:    numPages,
		pages:       make(map[PageID]Page),
		lockManager: newLockManager(lockTimeoutCeilMs),
		files:       make(map[int]DBFile),
		log:         logrus.WithField("component", "bufferPool"),
	}
}

// registerFile makes f's pages reachable by BufferPool.InsertTuple and
// BufferPool.DeleteTuple, which take a bare table id. Called automatically
// by NewHeapFile; keeps BufferPool decoupled from Catalog (see DESIGN.md).
func (bp *BufferPool) registerFile(f DBFile) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.files[f.ID()] = f
}

// FlushAllPages forces every dirty cached page to disk, ignoring
// NO-STEAL/FORCE discipline -- intended for orderly shutdown, not mid-
// transaction use.
func (bp *BufferPool) FlushAllPages() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	for _, p := range bp.pages {
		if p.isDirty() != (TransactionID{}) {
			if err := p.getFile().writePage(p); err != nil {
				return err
			}
			p.setClean()
		}
	}
	return nil
}

// abortPage discards tid's in-memory changes to pid by dropping it from the
// cache; the next GetPage re-reads the clean copy from disk.
func (bp *BufferPool) abortPage(pid PageID) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	delete(bp.pages, pid)
}

// flushPage forces pid's cached copy to disk and marks it clean, if cached
// and dirty; a clean page is already consistent with disk and is skipped.
func (bp *BufferPool) flushPage(pid PageID) error {
	bp.mu.Lock()
	p, ok := bp.pages[pid]
	bp.mu.Unlock()
	if !ok || p.isDirty() == (TransactionID{}) {
		return nil
	}
	if err := p.getFile().writePage(p); err != nil {
		return err
	}
	p.setClean()
	return nil
}

// transactionComplete ends tid, committing or aborting its effects on every
// page it holds a lock on, then releasing all of those locks.
//
// On commit, each page tid dirtied is forced to disk (FORCE). On abort,
// each such page is dropped from the cache so the next reader re-reads the
// clean on-disk copy (NO-STEAL made this safe: no dirty page from tid was
// ever written out ahead of commit).
func (bp *BufferPool) transactionComplete(tid TransactionID, commit bool) {
	pages := bp.lockManager.pagesHeldBy(tid)
	for _, pid := range pages {
		if commit {
			if err := bp.flushPage(pid); err != nil {
				bp.log.WithFields(logrus.Fields{"tid": tid, "page": pid, "err": err}).Error("flush at commit failed")
			}
		} else {
			bp.abortPage(pid)
		}
	}
	bp.lockManager.releaseAll(tid)
	bp.log.WithFields(logrus.Fields{"tid": tid, "commit": commit, "pages": len(pages)}).Debug("transaction complete")
}

// GetPage returns the page identified by (f, pageNo), acquiring perm on its
// PageID first. A cache hit returns the shared in-memory copy directly; a
// miss reads it from disk through f and, evicting a clean victim first if
// the pool is full, caches it.
func (bp *BufferPool) GetPage(f DBFile, pageNo int, tid TransactionID, perm RWPerm) (Page, error) {
	pid := f.pageKey(pageNo)
	if err := bp.lockManager.acquireLock(tid, pid, perm); err != nil {
		return nil, err
	}

	bp.mu.Lock()
	defer bp.mu.Unlock()

	if p, ok := bp.pages[pid]; ok {
		return p, nil
	}

	if len(bp.pages) >= bp.numPages {
		if err := bp.evictLocked(); err != nil {
			return nil, err
		}
	}

	p, err := f.readPage(pageNo)
	if err != nil {
		return nil, err
	}
	bp.pages[pid] = p
	return p, nil
}

// evictLocked evicts one clean page to make room for a new one, per
// NO-STEAL: a dirty page may never be written out to free space, since that
// would expose an uncommitted transaction's writes. Victim order follows
// Go's randomized map iteration, matching the teacher's own evictPage,
// which does the same (see DESIGN.md). Returns DbError if every cached page
// is dirty.
func (bp *BufferPool) evictLocked() error {
	for pid, p := range bp.pages {
		if p.isDirty() == (TransactionID{}) {
			delete(bp.pages, pid)
			return nil
		}
	}
	return newErr(DbError, "buffer pool full: every cached page is dirty")
}

// InsertTuple inserts t into table tableId under tid: resolves tableId to
// its DBFile, delegates to the file's own insertTuple, marks every page it
// returns dirty with tid, and re-caches each one (replacing any existing
// cached copy for that page), per spec.md section 4.5.
func (bp *BufferPool) InsertTuple(tid TransactionID, tableId int, t *Tuple) error {
	bp.mu.Lock()
	f, ok := bp.files[tableId]
	bp.mu.Unlock()
	if !ok {
		return newErr(NoSuchElementError, "no table with id %d", tableId)
	}

	dirtied, err := f.insertTuple(tid, t)
	if err != nil {
		return err
	}
	bp.cacheDirtied(tid, dirtied)
	return nil
}

// DeleteTuple removes t from its table under tid, resolving the owning
// DBFile from t's RecordID.
func (bp *BufferPool) DeleteTuple(tid TransactionID, t *Tuple) error {
	if t.Rid == nil {
		return newErr(DbError, "tuple has no record id")
	}
	bp.mu.Lock()
	f, ok := bp.files[t.Rid.PageID.TableID]
	bp.mu.Unlock()
	if !ok {
		return newErr(NoSuchElementError, "no table with id %d", t.Rid.PageID.TableID)
	}

	p, err := f.deleteTuple(tid, t)
	if err != nil {
		return err
	}
	bp.cacheDirtied(tid, []Page{p})
	return nil
}

func (bp *BufferPool) cacheDirtied(tid TransactionID, pages []Page) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	for _, p := range pages {
		p.markDirty(tid)
		bp.pages[p.pageID()] = p
	}
}
