//go:build !unix

package command

import "os/exec"

// setProcessGroup keeps the default cancellation, which kills the process.
func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) {}
