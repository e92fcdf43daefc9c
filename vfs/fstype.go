package vfs

import "fmt"

// FilesystemType is the label of the simulated mounted filesystem.
// It flavors journal records and the seeded /etc/config.txt file but
// carries no behavioral branching.
type FilesystemType string

const (
	Ext4  FilesystemType = "ext4"
	NTFS  FilesystemType = "ntfs"
	FAT32 FilesystemType = "fat32"
	Btrfs FilesystemType = "btrfs"
	XFS   FilesystemType = "xfs"
	NFS   FilesystemType = "nfs"
)

func (t FilesystemType) String() string {
	return string(t)
}

// FilesystemTypes returns all supported labels in a stable order.
func FilesystemTypes() []FilesystemType {
	return []FilesystemType{Ext4, NTFS, FAT32, Btrfs, XFS, NFS}
}

// ParseFilesystemType maps a label string to its FilesystemType.
func ParseFilesystemType(s string) (FilesystemType, error) {
	for _, t := range FilesystemTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown filesystem type: %q", s)
}
