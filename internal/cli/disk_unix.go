//go:build unix

package cli

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// diskPrecondition refuses a run when the output volume has less than
// minBytes free. An unreadable filesystem does not block the run.
func diskPrecondition(path string, minBytes uint64) func() error {
	return func() error {
		var stat unix.Statfs_t
		if err := unix.Statfs(path, &stat); err != nil {
			return nil
		}
		free := stat.Bavail * uint64(stat.Bsize)
		if free < minBytes {
			return fmt.Errorf("%d MB free on %s, need %d MB",
				free/(1<<20), path, minBytes/(1<<20))
		}
		return nil
	}
}
