package cache

import "golang.org/x/sys/unix"

// availableBytes returns the bytes available to unprivileged users on the
// filesystem holding dir.
func availableBytes(dir string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, err
	}

	// Available blocks * size of byte blocks on the system
	return stat.Bavail * uint64(stat.Bsize), nil
}
