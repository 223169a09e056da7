package godb

// lockManager implements strict two-phase locking over PageIDs: shared locks
// for readers, exclusive locks for writers, granted under a single mutex and
// condition variable rather than one queue per page. A waiter that cannot be
// granted its lock within a random timeout in [0, timeoutCeilMs) (2000ms by
// default) aborts with
// TransactionAbortedError, per spec.md section 5's deadlock-handling choice.
//
// No teacher file implements this -- the course skeleton supplies it as
// unmodifiable starter code -- so the design is taken directly from spec.md
// section 5, following the same single-monitor style the teacher's own
// buffer_pool.go uses for its own (different) synchronization.

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// lockManager tracks, per page, the set of transactions currently holding a
// lock and in what mode, plus the reverse index from transaction to the
// pages it holds -- the latter is what BufferPool.transactionComplete uses
// to find every page to flush or discard.
type lockManager struct {
	mu   sync.Mutex
	cond *sync.Cond

	// holders[pid] is the set of tids holding a lock on pid, and the mode
	// they hold it in. Shared locks may have multiple holders; exclusive
	// locks have exactly one.
	holders map[PageID]map[TransactionID]RWPerm

	// heldBy[tid] is the set of pages tid currently holds a lock on.
	heldBy map[TransactionID]map[PageID]bool

	timeoutCeilMs int
	log           *logrus.Entry
}

// newLockManager constructs a lock manager whose waiters time out after a
// random duration in [0, timeoutCeilMs).
func newLockManager(timeoutCeilMs int) *lockManager {
	if timeoutCeilMs <= 0 {
		timeoutCeilMs = 2000
	}
	lm := &lockManager{
		holders:       make(map[PageID]map[TransactionID]RWPerm),
		heldBy:        make(map[TransactionID]map[PageID]bool),
		timeoutCeilMs: timeoutCeilMs,
		log:           logrus.WithField("component", "lockManager"),
	}
	lm.cond = sync.NewCond(&lm.mu)
	return lm
}

// canGrant reports whether tid can be granted perm on pid given the current
// holder set, assuming mu is held.
func (lm *lockManager) canGrant(pid PageID, tid TransactionID, perm RWPerm) bool {
	holders := lm.holders[pid]
	if len(holders) == 0 {
		return true
	}
	if len(holders) == 1 {
		if existing, already := holders[tid]; already {
			// Already holds some lock on pid: re-acquiring the same or a
			// weaker mode is free; upgrading Read->Write is only free if
			// tid is the sole holder, which it is here.
			return perm == ReadPerm || existing == WritePerm || perm == WritePerm
		}
	}
	if perm == ReadPerm {
		for _, mode := range holders {
			if mode == WritePerm {
				return false
			}
		}
		return true
	}
	// perm == WritePerm: granted only if tid is the sole holder (checked
	// above) or there are no holders at all.
	return false
}

// acquireLock blocks the caller until tid holds perm on pid, or aborts with
// TransactionAbortedError after a random per-call timeout elapses.
func (lm *lockManager) acquireLock(tid TransactionID, pid PageID, perm RWPerm) error {
	deadline := time.Now().Add(time.Duration(rand.Intn(lm.timeoutCeilMs)) * time.Millisecond)

	lm.mu.Lock()
	defer lm.mu.Unlock()

	for !lm.canGrant(pid, tid, perm) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			lm.log.WithFields(logrus.Fields{"tid": tid, "page": pid}).Debug("lock wait timed out")
			return newErr(TransactionAbortedError, "timed out waiting for %s lock on %v", perm, pid)
		}
		// Wake this waiter (and every other waiter on this page, harmlessly)
		// at its own deadline even if nobody releases a lock in the meantime.
		timer := time.AfterFunc(remaining, func() {
			lm.mu.Lock()
			lm.cond.Broadcast()
			lm.mu.Unlock()
		})
		lm.cond.Wait()
		timer.Stop()
	}

	if lm.holders[pid] == nil {
		lm.holders[pid] = make(map[TransactionID]RWPerm)
	}
	// Never lower a held mode: a re-request that finds tid already holding
	// an X lock must leave it at X (spec.md section 4.4 rule 2), even if
	// the re-request only asked for a read.
	mode := perm
	if existing, already := lm.holders[pid][tid]; already && existing == WritePerm {
		mode = WritePerm
	}
	lm.holders[pid][tid] = mode
	if lm.heldBy[tid] == nil {
		lm.heldBy[tid] = make(map[PageID]bool)
	}
	lm.heldBy[tid][pid] = true
	return nil
}

// holdsLock reports whether tid currently holds any lock on pid.
func (lm *lockManager) holdsLock(tid TransactionID, pid PageID) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	_, ok := lm.holders[pid][tid]
	return ok
}

// releaseLock releases tid's lock on pid, if any, waking any waiters.
func (lm *lockManager) releaseLock(tid TransactionID, pid PageID) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.releaseLocked(tid, pid)
	lm.cond.Broadcast()
}

func (lm *lockManager) releaseLocked(tid TransactionID, pid PageID) {
	if holders := lm.holders[pid]; holders != nil {
		delete(holders, tid)
		if len(holders) == 0 {
			delete(lm.holders, pid)
		}
	}
	if pages := lm.heldBy[tid]; pages != nil {
		delete(pages, pid)
		if len(pages) == 0 {
			delete(lm.heldBy, tid)
		}
	}
}

// pagesHeldBy returns every page tid currently holds a lock on.
func (lm *lockManager) pagesHeldBy(tid TransactionID) []PageID {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	pages := make([]PageID, 0, len(lm.heldBy[tid]))
	for pid := range lm.heldBy[tid] {
		pages = append(pages, pid)
	}
	return pages
}

// releaseAll releases every lock tid holds, waking any waiters.
func (lm *lockManager) releaseAll(tid TransactionID) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	for pid := range lm.heldBy[tid] {
		lm.releaseLocked(tid, pid)
	}
	lm.cond.Broadcast()
}
