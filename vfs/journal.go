package vfs

import "time"

// OpKind identifies a journaled operation.
type OpKind string

const (
	OpCreate     OpKind = "CREATE"
	OpDelete     OpKind = "DELETE"
	OpRead       OpKind = "READ"
	OpWrite      OpKind = "WRITE"
	OpChdir      OpKind = "CHDIR"
	OpReaddir    OpKind = "READDIR"
	OpCacheClear OpKind = "CACHE_CLEAR"
)

// Operation is one immutable journal record. Every command surface call,
// success or failure, appends exactly one.
type Operation struct {
	Time       time.Time
	Kind       OpKind
	Path       string
	Filesystem FilesystemType
	Success    bool
}

// journal is the append-only operation history. It is never rewritten or
// truncated; access is guarded by the owning VFS lock.
type journal struct {
	ops []Operation
}

func (j *journal) append(op Operation) {
	j.ops = append(j.ops, op)
}

func (j *journal) size() int {
	return len(j.ops)
}

// tail returns a copy of the last n records, most recent first. n <= 0 or
// n larger than the journal yields the whole history.
func (j *journal) tail(n int) []Operation {
	if n <= 0 || n > len(j.ops) {
		n = len(j.ops)
	}
	out := make([]Operation, n)
	for i := 0; i < n; i++ {
		out[i] = j.ops[len(j.ops)-1-i]
	}
	return out
}

// Statistics are the derived counters kept alongside the store and
// caches. TotalFiles and TotalDirs are recomputed by a full store scan
// after each mutation; the rest increment in place.
type Statistics struct {
	TotalFiles  int
	TotalDirs   int
	Operations  int
	CacheHits   int
	CacheMisses int
}

// HitRate returns the cache hit fraction in [0,1]; 0 when no lookups
// have happened yet.
func (s Statistics) HitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}
