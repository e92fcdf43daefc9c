package vfs

import "github.com/puzpuzpuz/xsync/v4"

// cacheTables are the two advisory lookup tables: dentries keyed by
// absolute path and inodes keyed by inode number. They are unbounded and
// never evict; entries disappear only on clear() or when the underlying
// node is deleted. The namespace store stays the source of truth, so a
// dropped entry is only ever a future miss, never data loss.
type cacheTables struct {
	dentries *xsync.Map[string, *Node]
	inodes   *xsync.Map[uint64, *Node]
}

func newCacheTables() *cacheTables {
	return &cacheTables{
		dentries: xsync.NewMap[string, *Node](),
		inodes:   xsync.NewMap[uint64, *Node](),
	}
}

// lookupDentry returns the cached node for path and whether it was a hit.
// On a miss the freshly resolved node is inserted so the next lookup hits.
func (c *cacheTables) lookupDentry(path string, resolved *Node) (*Node, bool) {
	if cached, ok := c.dentries.Load(path); ok {
		return cached, true
	}
	c.dentries.Store(path, resolved)
	return resolved, false
}

// lookupInode is symmetric to lookupDentry, keyed by inode number.
func (c *cacheTables) lookupInode(ino uint64, resolved *Node) (*Node, bool) {
	if cached, ok := c.inodes.Load(ino); ok {
		return cached, true
	}
	c.inodes.Store(ino, resolved)
	return resolved, false
}

// purge drops any entry for the given path or inode number. Called when
// the store deletes a node so neither table can serve a stale reference.
func (c *cacheTables) purge(path string, ino uint64) {
	c.dentries.Delete(path)
	c.inodes.Delete(ino)
}

func (c *cacheTables) clear() {
	c.dentries = xsync.NewMap[string, *Node]()
	c.inodes = xsync.NewMap[uint64, *Node]()
}

func (c *cacheTables) sizes() (dentries, inodes int) {
	return c.dentries.Size(), c.inodes.Size()
}
