package capture

import (
	"fmt"
	"os"
)

// Silence redirects os.Stdout and os.Stderr to the null device and
// returns a function that restores them. Callers are expected to defer
// the restore so the streams come back on every exit path:
//
//	restore, err := capture.Silence()
//	if err != nil {
//		return err
//	}
//	defer restore()
//
// Calling restore more than once is safe.
func Silence() (restore func(), err error) {
	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", os.DevNull, err)
	}

	stdout, stderr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = devnull, devnull

	restored := false
	return func() {
		if restored {
			return
		}
		restored = true
		os.Stdout, os.Stderr = stdout, stderr
		_ = devnull.Close()
	}, nil
}
