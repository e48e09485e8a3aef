//go:build !unix

package packager

import "os/exec"

// setProcessGroup keeps the default cancellation (kill the direct child).
// Orphaned grandchildren are cut off by WaitDelay.
func setProcessGroup(cmd *exec.Cmd) {}
