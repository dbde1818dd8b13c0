package attachcrypto

import "sync/atomic"

// testEnvironment gates DangerousIV{Reason: test} and
// DangerousSkipPadding (spec.md §4.3, §9). Production builds never
// flip this; it exists so the package's own tests can reach the
// hardcoded-IV and skip-padding paths without a separate build tag.
var testEnvironment atomic.Bool

// IsTestEnvironment is the nowIsTestEnvironment collaborator hook of
// spec.md §6.
func IsTestEnvironment() bool { return testEnvironment.Load() }

// SetTestEnvironment flips the gate. Exported only for use by this
// module's own tests and by integration tests that need to exercise
// the backup-reencryption IV override.
func SetTestEnvironment(v bool) { testEnvironment.Store(v) }
