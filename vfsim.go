// Package vfsim simulates the metadata layer of a Unix-like virtual
// filesystem: an in-memory namespace tree with dentry/inode cache
// bookkeeping, an operation journal, and running statistics.
package vfsim

import (
	"github.com/vfsim/vfsim/config"
	"github.com/vfsim/vfsim/vfs"
)

// New creates a simulator instance given your config.
func New(cfg *config.Config) *vfs.VFS {
	return vfs.New(cfg)
}

// Re-exported engine types so simple consumers only import the root
// package.
type (
	Node           = vfs.Node
	Kind           = vfs.Kind
	Operation      = vfs.Operation
	Statistics     = vfs.Statistics
	FilesystemType = vfs.FilesystemType
)

const (
	KindFile      = vfs.KindFile
	KindDirectory = vfs.KindDirectory
)
