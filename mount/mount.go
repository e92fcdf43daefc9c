// Package mount exposes a simulator instance as a real FUSE mountpoint
// so the simulated tree can be browsed with ordinary shell tools. Every
// kernel request is translated onto the engine's path-addressed command
// surface, so mounted traffic shows up in the journal and statistics
// like any other caller.
package mount

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/vfsim/vfsim/config"
	"github.com/vfsim/vfsim/internal/util"
	"github.com/vfsim/vfsim/vfs"
)

// Mount serves sim at mountpoint and returns the running server. Callers
// own the lifecycle: server.Wait() to block, server.Unmount() to stop.
func Mount(mountpoint string, sim *vfs.VFS, cfg *config.Config) (*fuse.Server, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	attrTimeout := secondsToDuration(cfg.AttrTimeout)
	entryTimeout := secondsToDuration(cfg.EntryTimeout)

	root := &simNode{sim: sim, path: "/"}
	server, err := fs.Mount(mountpoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:       "vfsim",
			FsName:     "vfsim-" + string(sim.Label()),
			AllowOther: cfg.AllowOther,
			Logger:     util.NewLogLogger("fuse"),
		},
		AttrTimeout:  &attrTimeout,
		EntryTimeout: &entryTimeout,
	})
	if err != nil {
		return nil, err
	}
	return server, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// simNode bridges one simulator path into the kernel's node tree. The
// engine remains the source of truth; simNode holds only the path.
type simNode struct {
	fs.Inode
	sim  *vfs.VFS
	path string
}

var (
	_ = (fs.NodeGetattrer)((*simNode)(nil))
	_ = (fs.NodeLookuper)((*simNode)(nil))
	_ = (fs.NodeReaddirer)((*simNode)(nil))
	_ = (fs.NodeOpener)((*simNode)(nil))
	_ = (fs.NodeReader)((*simNode)(nil))
	_ = (fs.NodeWriter)((*simNode)(nil))
	_ = (fs.NodeSetattrer)((*simNode)(nil))
	_ = (fs.NodeCreater)((*simNode)(nil))
	_ = (fs.NodeMkdirer)((*simNode)(nil))
	_ = (fs.NodeUnlinker)((*simNode)(nil))
	_ = (fs.NodeRmdirer)((*simNode)(nil))
)

func (n *simNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	node, ok := n.sim.Resolve(n.path)
	if !ok {
		return syscall.ENOENT
	}
	fillAttr(node, &out.Attr)
	return fs.OK
}

func (n *simNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	childPath := join(n.path, name)
	node, ok := n.sim.Resolve(childPath)
	if !ok {
		return nil, syscall.ENOENT
	}

	child := &simNode{sim: n.sim, path: childPath}
	fillAttr(node, &out.Attr)
	stable := fs.StableAttr{Mode: modeFor(node), Ino: node.Ino}
	return n.NewPersistentInode(ctx, child, stable), fs.OK
}

func (n *simNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	children := n.sim.List(n.path)

	entries := make([]fuse.DirEntry, 0, len(children))
	for _, child := range children {
		entries = append(entries, fuse.DirEntry{
			Name: child.Name,
			Mode: modeFor(child),
			Ino:  child.Ino,
		})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (n *simNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if _, err := n.sim.ReadAt(n.path); err != nil {
		return nil, 0, errnoFor(err)
	}
	// Direct IO keeps the kernel from caching content the simulator may
	// rewrite wholesale.
	return nil, fuse.FOPEN_DIRECT_IO, fs.OK
}

func (n *simNode) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	node, err := n.sim.ReadAt(n.path)
	if err != nil {
		return nil, errnoFor(err)
	}
	content := []byte(node.Content)
	if off >= int64(len(content)) {
		return fuse.ReadResultData(nil), fs.OK
	}
	end := off + int64(len(dest))
	if end > int64(len(content)) {
		end = int64(len(content))
	}
	return fuse.ReadResultData(content[off:end]), fs.OK
}

func (n *simNode) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	node, ok := n.sim.Resolve(n.path)
	if !ok {
		return 0, syscall.ENOENT
	}
	spliced := splice(node.Content, data, off)
	if _, err := n.sim.WriteAt(n.path, spliced); err != nil {
		return 0, errnoFor(err)
	}
	return uint32(len(data)), fs.OK
}

func (n *simNode) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	if size, ok := in.GetSize(); ok {
		node, found := n.sim.Resolve(n.path)
		if !found {
			return syscall.ENOENT
		}
		if !node.IsDir() {
			truncated := truncate(node.Content, size)
			if _, err := n.sim.WriteAt(n.path, truncated); err != nil {
				return errnoFor(err)
			}
		}
	}
	if node, ok := n.sim.Resolve(n.path); ok {
		fillAttr(node, &out.Attr)
	}
	return fs.OK
}

func (n *simNode) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	node, err := n.sim.CreateAt(n.path, name, vfs.KindFile)
	if err != nil {
		return nil, nil, 0, errnoFor(err)
	}

	childPath := join(n.path, name)
	child := &simNode{sim: n.sim, path: childPath}
	fillAttr(node, &out.Attr)
	stable := fs.StableAttr{Mode: modeFor(node), Ino: node.Ino}
	return n.NewPersistentInode(ctx, child, stable), nil, fuse.FOPEN_DIRECT_IO, fs.OK
}

func (n *simNode) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	node, err := n.sim.CreateAt(n.path, name, vfs.KindDirectory)
	if err != nil {
		return nil, errnoFor(err)
	}

	childPath := join(n.path, name)
	child := &simNode{sim: n.sim, path: childPath}
	fillAttr(node, &out.Attr)
	stable := fs.StableAttr{Mode: modeFor(node), Ino: node.Ino}
	return n.NewPersistentInode(ctx, child, stable), fs.OK
}

func (n *simNode) Unlink(ctx context.Context, name string) syscall.Errno {
	if _, err := n.sim.Remove(join(n.path, name)); err != nil {
		return errnoFor(err)
	}
	return fs.OK
}

func (n *simNode) Rmdir(ctx context.Context, name string) syscall.Errno {
	if _, err := n.sim.Remove(join(n.path, name)); err != nil {
		return errnoFor(err)
	}
	return fs.OK
}

func modeFor(node *vfs.Node) uint32 {
	if node.IsDir() {
		return fuse.S_IFDIR
	}
	return fuse.S_IFREG
}

func fillAttr(node *vfs.Node, out *fuse.Attr) {
	out.Ino = node.Ino
	if node.IsDir() {
		out.Mode = fuse.S_IFDIR | 0o755
	} else {
		out.Mode = fuse.S_IFREG | 0o644
		out.Size = uint64(node.Size)
	}
	created := uint64(node.Created.Unix())
	out.Atime = created
	out.Mtime = created
	out.Ctime = created
	out.Nlink = 1
	out.Blksize = 4096
}

// errnoFor maps the engine's failure taxonomy onto POSIX errnos.
func errnoFor(err error) syscall.Errno {
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, vfs.ErrAlreadyExists):
		return syscall.EEXIST
	case errors.Is(err, vfs.ErrNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, vfs.ErrNotAFile):
		return syscall.EISDIR
	case errors.Is(err, vfs.ErrNotEmpty):
		return syscall.ENOTEMPTY
	case errors.Is(err, vfs.ErrInvalidName), errors.Is(err, vfs.ErrAtRoot):
		return syscall.EINVAL
	default:
		return syscall.EIO
	}
}

// splice writes data into content at off, zero-padding any gap and
// growing the content as needed.
func splice(content string, data []byte, off int64) string {
	buf := []byte(content)
	end := off + int64(len(data))
	if int64(len(buf)) < end {
		grown := make([]byte, end)
		copy(grown, buf)
		buf = grown
	}
	copy(buf[off:], data)
	return string(buf)
}

// truncate shrinks or zero-extends content to size bytes.
func truncate(content string, size uint64) string {
	if uint64(len(content)) >= size {
		return content[:size]
	}
	grown := make([]byte, size)
	copy(grown, content)
	return string(grown)
}

func join(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}
