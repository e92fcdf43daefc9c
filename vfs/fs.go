package vfs

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog"

	"github.com/vfsim/vfsim/config"
	"github.com/vfsim/vfsim/internal/util"
)

// VFS simulates the metadata layer of a Unix-like virtual filesystem: a
// path-indexed namespace store plus advisory dentry/inode caches, an
// append-only operation journal, and running statistics.
//
// A single mutex guards every command end to end, so create/delete/write
// and their cache bookkeeping are atomic with respect to one another and
// no partially applied mutation is ever observable.
type VFS struct {
	cfg     *config.Config
	label   FilesystemType
	mountID string
	clk     clock.Clock
	logger  zerolog.Logger

	mu          sync.Mutex
	store       *xsync.Map[string, *Node] // absolute path -> node; source of truth
	currentPath string
	lastIno     atomic.Uint64
	caches      *cacheTables
	journal     *journal
	stats       Statistics
}

// New creates a VFS instance with its own current-path cursor and, unless
// disabled in cfg, the canonical starter hierarchy. Unknown filesystem
// labels fall back to ext4.
func New(cfg *config.Config) *VFS {
	return newVFS(cfg, clock.New())
}

func newVFS(cfg *config.Config, clk clock.Clock) *VFS {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	label, err := ParseFilesystemType(cfg.Filesystem)
	if err != nil {
		lg := util.GetLogger("vfs")
		lg.Warn().Err(err).Msg("Falling back to ext4")
		label = Ext4
	}

	mountID := uuid.NewString()
	fs := &VFS{
		cfg:         cfg,
		label:       label,
		mountID:     mountID,
		clk:         clk,
		logger:      util.GetLogger("vfs").With().Str("fs", string(label)).Str("mount", mountID[:8]).Logger(),
		store:       xsync.NewMap[string, *Node](),
		currentPath: "/",
		caches:      newCacheTables(),
		journal:     &journal{},
	}

	root := newNode("/", KindDirectory, fs.lastIno.Add(1), clk.Now())
	fs.store.Store("/", root)

	if cfg.SeedTree {
		fs.seed()
	}
	fs.refreshCounts()
	fs.logger.Info().Int("nodes", fs.store.Size()).Msg("Filesystem initialized")
	return fs
}

// seed builds the canonical starter tree. Seeding bypasses the journal so
// a fresh instance starts with clean statistics.
func (fs *VFS) seed() {
	fs.mustSeedDir("/", "home")
	fs.mustSeedDir("/home", "user")
	fs.mustSeedDir("/home/user", "documents")
	fs.mustSeedDir("/home/user", "downloads")

	readme, _ := fs.createLocked("/home/user", "readme.txt", KindFile)
	readme.Content = "Welcome to the VFS simulator.\n" +
		"This instance demonstrates virtual filesystem operations.\n\n" +
		"Features:\n" +
		"- Multiple filesystem labels\n" +
		"- Dentry and inode caching\n" +
		"- Operation journaling\n" +
		"- Performance statistics"
	readme.Size = len(readme.Content)

	fs.mustSeedDir("/", "etc")
	cfgFile, _ := fs.createLocked("/etc", "config.txt", KindFile)
	cfgFile.Content = fmt.Sprintf("filesystem=%s\ncache_enabled=true\nversion=2.0\narchitecture=x64", fs.label)
	cfgFile.Size = len(cfgFile.Content)

	fs.mustSeedDir("/", "var")
	fs.mustSeedDir("/var", "log")
	now := fs.clk.Now().Format("2006-01-02 15:04:05")
	sysLog, _ := fs.createLocked("/var/log", "system.log", KindFile)
	sysLog.Content = fmt.Sprintf("[%s] System initialized\n[%s] File system mounted: %s", now, now, fs.label)
	sysLog.Size = len(sysLog.Content)
}

func (fs *VFS) mustSeedDir(parentPath, name string) {
	if _, err := fs.createLocked(parentPath, name, KindDirectory); err != nil {
		// Seed paths are fixed at compile time; a failure here is a bug.
		panic(fmt.Sprintf("seed %s/%s: %v", parentPath, name, err))
	}
}

// Label returns the simulated filesystem label.
func (fs *VFS) Label() FilesystemType {
	return fs.label
}

// MountID returns the uuid identity of this instance.
func (fs *VFS) MountID() string {
	return fs.mountID
}

// CurrentPath returns the instance's working-directory cursor. It always
// denotes an existing directory.
func (fs *VFS) CurrentPath() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.currentPath
}

// Stats returns a snapshot of the derived counters.
func (fs *VFS) Stats() Statistics {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.stats
}

// CacheSizes returns the current entry counts of the dentry and inode
// caches.
func (fs *VFS) CacheSizes() (dentries, inodes int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.caches.sizes()
}

// JournalTail returns a copy of the last n journal records, most recent
// first. n <= 0 returns the full history.
func (fs *VFS) JournalTail(n int) []Operation {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.journal.tail(n)
}

// Resolve is the exact store lookup: no wildcards, no cache accounting.
// Absence is not an error; callers decide whether it is.
func (fs *VFS) Resolve(p string) (*Node, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.store.Load(p)
}

/* Command surface. Each command appends exactly one journal record,
success or failure, and never leaves the store, caches, or statistics
partially mutated. */

// Create makes a new file or directory under the current path. Fails
// with ErrInvalidName for empty names or names containing a separator,
// and ErrAlreadyExists if the target path is taken.
func (fs *VFS) Create(name string, kind Kind) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, err := fs.createAt(fs.currentPath, name, kind); err != nil {
		return "", err
	}
	return fmt.Sprintf("Created %s: %s", kind, name), nil
}

// CreateAt is the path-addressed variant of Create, used by the FUSE
// bridge. It journals a CREATE record like the cursor-relative command.
func (fs *VFS) CreateAt(parentPath, name string, kind Kind) (*Node, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.createAt(parentPath, name, kind)
}

func (fs *VFS) createAt(parentPath, name string, kind Kind) (*Node, error) {
	node, err := fs.createLocked(parentPath, name, kind)
	fs.record(OpCreate, joinPath(parentPath, name), err == nil)
	return node, err
}

// createLocked mutates the store and parent children as one step; it
// does not journal, so the seeder can share it.
func (fs *VFS) createLocked(parentPath, name string, kind Kind) (*Node, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	full := joinPath(parentPath, name)
	if _, exists := fs.store.Load(full); exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, full)
	}
	parent, ok := fs.store.Load(parentPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, parentPath)
	}
	if !parent.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, parentPath)
	}

	node := newNode(name, kind, fs.lastIno.Add(1), fs.clk.Now())
	fs.store.Store(full, node)
	parent.addChild(name)
	fs.refreshCounts()
	return node, nil
}

// Delete removes the named entry under the current path. Directories
// must be empty; the matching dentry and inode cache entries are purged
// so neither table can serve the destroyed node.
func (fs *VFS) Delete(name string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	target := joinPath(fs.currentPath, name)
	if name == "" || strings.Contains(name, "/") {
		fs.record(OpDelete, target, false)
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return fs.removeAt(target)
}

// Remove is the path-addressed variant of Delete.
func (fs *VFS) Remove(p string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.removeAt(p)
}

func (fs *VFS) removeAt(p string) (string, error) {
	if p == "/" {
		fs.record(OpDelete, p, false)
		return "", fmt.Errorf("%w: cannot delete root", ErrInvalidName)
	}
	node, ok := fs.store.Load(p)
	if !ok {
		fs.record(OpDelete, p, false)
		return "", fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if node.IsDir() && node.ChildCount() > 0 {
		fs.record(OpDelete, p, false)
		return "", fmt.Errorf("%w: %s", ErrNotEmpty, p)
	}

	leaf := path.Base(p)
	fs.store.Delete(p)
	if parent, ok := fs.store.Load(path.Dir(p)); ok {
		parent.removeChild(leaf)
	}
	fs.caches.purge(p, node.Ino)
	// The cursor must keep denoting an existing directory. Path-addressed
	// removal can target the cursor itself (the cursor-relative command
	// never can); fall back to the parent, which still exists. Deeper
	// cursors are unreachable because the target had to be empty.
	if p == fs.currentPath {
		fs.currentPath = path.Dir(p)
	}
	fs.refreshCounts()
	fs.record(OpDelete, p, true)
	return "Deleted: " + leaf, nil
}

// ChangeDirectory moves the cursor. ".." goes to the parent and fails
// with ErrAtRoot at "/"; any other name must resolve to an existing
// directory and counts one dentry cache hit or miss.
func (fs *VFS) ChangeDirectory(name string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if name == ".." {
		if fs.currentPath == "/" {
			fs.record(OpChdir, "/", false)
			return "", ErrAtRoot
		}
		parent := path.Dir(fs.currentPath)
		fs.currentPath = parent
		fs.record(OpChdir, parent, true)
		return "Changed to " + parent, nil
	}

	target := joinPath(fs.currentPath, name)
	node, ok := fs.store.Load(target)
	if !ok {
		fs.record(OpChdir, target, false)
		return "", fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	if !node.IsDir() {
		fs.record(OpChdir, target, false)
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, target)
	}

	if _, hit := fs.caches.lookupDentry(target, node); hit {
		fs.stats.CacheHits++
	} else {
		fs.stats.CacheMisses++
	}
	fs.currentPath = target
	fs.record(OpChdir, target, true)
	return "Changed to " + target, nil
}

// ReadFile resolves the named file under the current path and counts one
// inode cache hit or miss. Absence or a directory target yields a nil
// node and a taxonomy error rather than a panic or partial result.
func (fs *VFS) ReadFile(name string) (*Node, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.readAt(joinPath(fs.currentPath, name))
}

// ReadAt is the path-addressed variant of ReadFile.
func (fs *VFS) ReadAt(p string) (*Node, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.readAt(p)
}

func (fs *VFS) readAt(p string) (*Node, error) {
	node, ok := fs.store.Load(p)
	if !ok {
		fs.record(OpRead, p, false)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if node.IsDir() {
		fs.record(OpRead, p, false)
		return nil, fmt.Errorf("%w: %s", ErrNotAFile, p)
	}

	cached, hit := fs.caches.lookupInode(node.Ino, node)
	if hit {
		fs.stats.CacheHits++
	} else {
		fs.stats.CacheMisses++
	}
	fs.record(OpRead, p, true)
	return cached, nil
}

// WriteFile replaces the named file's content and recomputes its size.
func (fs *VFS) WriteFile(name, content string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.writeAt(joinPath(fs.currentPath, name), content)
}

// WriteAt is the path-addressed variant of WriteFile.
func (fs *VFS) WriteAt(p, content string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.writeAt(p, content)
}

func (fs *VFS) writeAt(p, content string) (string, error) {
	node, ok := fs.store.Load(p)
	if !ok {
		fs.record(OpWrite, p, false)
		return "", fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if node.IsDir() {
		fs.record(OpWrite, p, false)
		return "", fmt.Errorf("%w: %s", ErrNotAFile, p)
	}

	node.Content = content
	node.Size = len(content)
	fs.record(OpWrite, p, true)
	return "File saved: " + node.Name, nil
}

// ListCurrentDirectory returns the cursor directory's children sorted by
// name and journals a READDIR record.
func (fs *VFS) ListCurrentDirectory() []*Node {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.listAt(fs.currentPath)
}

// List is the path-addressed variant of ListCurrentDirectory. A missing
// path or a file target yields an empty sequence.
func (fs *VFS) List(dirPath string) []*Node {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.listAt(dirPath)
}

func (fs *VFS) listAt(dirPath string) []*Node {
	dir, ok := fs.store.Load(dirPath)
	if !ok || !dir.IsDir() {
		fs.record(OpReaddir, dirPath, false)
		return nil
	}

	names := dir.ChildNames()
	out := make([]*Node, 0, len(names))
	for _, name := range names {
		if child, ok := fs.store.Load(joinPath(dirPath, name)); ok {
			out = append(out, child)
		}
	}
	fs.record(OpReaddir, dirPath, true)
	return out
}

// ClearCache empties both advisory tables. The namespace store is
// untouched; subsequent lookups repopulate the tables as misses.
func (fs *VFS) ClearCache() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.caches.clear()
	fs.record(OpCacheClear, "system", true)
	return "Dentry and inode caches cleared"
}

// record appends the journal entry for one command attempt and bumps the
// unconditional operation counter.
func (fs *VFS) record(kind OpKind, p string, success bool) {
	fs.journal.append(Operation{
		Time:       fs.clk.Now(),
		Kind:       kind,
		Path:       p,
		Filesystem: fs.label,
		Success:    success,
	})
	fs.stats.Operations++
	fs.logger.Debug().Str("op", string(kind)).Str("path", p).Bool("success", success).Msg("Operation journaled")
}

// refreshCounts rescans the whole store after each mutation. Dataset
// sizes are tens of entries, so the O(n) walk is deliberate.
func (fs *VFS) refreshCounts() {
	files, dirs := 0, 0
	fs.store.Range(func(_ string, n *Node) bool {
		if n.IsDir() {
			dirs++
		} else {
			files++
		}
		return true
	})
	fs.stats.TotalFiles = files
	fs.stats.TotalDirs = dirs
}

// joinPath builds a child path; a bare child of root is "/" + name.
func joinPath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}
