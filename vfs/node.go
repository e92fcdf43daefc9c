package vfs

import (
	"sort"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// Kind distinguishes the two node variants.
type Kind uint8

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Node is one file or directory in the namespace store. Fields are
// mutated only by the owning VFS under its lock; Content and Size change
// together on every write and are meaningless for directories.
type Node struct {
	Name    string
	Kind    Kind
	Ino     uint64 // monotonic, assigned at creation, never reused
	Created time.Time
	Content string
	Size    int

	children *xsync.Map[string, struct{}] // leaf names; nil for files
}

func newNode(name string, kind Kind, ino uint64, created time.Time) *Node {
	n := &Node{
		Name:    name,
		Kind:    kind,
		Ino:     ino,
		Created: created,
	}
	if kind == KindDirectory {
		n.children = xsync.NewMap[string, struct{}]()
	}
	return n
}

func (n *Node) IsDir() bool {
	return n.Kind == KindDirectory
}

// ChildCount returns the number of entries in a directory; 0 for files.
func (n *Node) ChildCount() int {
	if n.children == nil {
		return 0
	}
	return n.children.Size()
}

// ChildNames returns the directory's child leaf names sorted
// lexicographically. Names are unique within a directory so the order is
// total.
func (n *Node) ChildNames() []string {
	if n.children == nil {
		return nil
	}
	names := make([]string, 0, n.children.Size())
	n.children.Range(func(name string, _ struct{}) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

func (n *Node) addChild(name string) {
	n.children.Store(name, struct{}{})
}

func (n *Node) removeChild(name string) {
	n.children.Delete(name)
}
