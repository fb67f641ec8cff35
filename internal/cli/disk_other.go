//go:build !unix

package cli

// diskPrecondition is a no-op where statfs is unavailable.
func diskPrecondition(path string, minBytes uint64) func() error {
	return func() error {
		return nil
	}
}
