package attachcrypto

import (
	"os"
	"path/filepath"
)

// withGuardedOutput is the temp-file guard of spec.md §4.6: ensure
// directory, create an empty file, open a write handle, run fn, and on
// any error close the handle (if still open) and unlink the path,
// swallowing a non-existence error. An unlink that fails for any other
// reason is logged but does not replace the original error.
func withGuardedOutput(path string, fn func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return wrapErr(KindIoOpen, "", "creating output directory", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return wrapErr(KindIoOpen, "", "creating output file", err)
	}

	runErr := fn(f)
	closeErr := f.Close()

	if runErr == nil && closeErr == nil {
		return nil
	}

	if unlinkErr := os.Remove(path); unlinkErr != nil && !os.IsNotExist(unlinkErr) {
		logError("guard.unlink", wrapErr(KindIoUnlink, "", "removing partial output", unlinkErr))
	}

	if runErr != nil {
		return runErr
	}
	return wrapErr(KindIoWrite, "", "closing output file", closeErr)
}
