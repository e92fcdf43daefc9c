package config

import "github.com/vfsim/vfsim/internal/util"

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultFilesystem is the simulated filesystem label for new instances
	DefaultFilesystem = "ext4"

	// DefaultJournalTail is how many journal records the shell's log
	// command shows by default
	DefaultJournalTail = 50

	// DefaultSeedTree controls whether new instances get the canonical
	// starter hierarchy (/home/user, /etc, /var/log, ...)
	DefaultSeedTree = true

	// DefaultAttrTimeout is the FUSE attribute cache timeout in seconds
	DefaultAttrTimeout = 1.0

	// DefaultEntryTimeout is the FUSE directory entry cache timeout in seconds
	DefaultEntryTimeout = 1.0

	// DefaultAllowOther determines whether other users can access a mount
	DefaultAllowOther = false
)

// DefaultLogLvl is the log verbosity for new instances
const DefaultLogLvl = util.InfoLevel
