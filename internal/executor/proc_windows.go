//go:build windows

package executor

import (
	"os"
	"os/exec"
)

// setProcessGroup на Windows не настраивает группу:
// убийство поддерева здесь не гарантируется.
func setProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup убивает только верхний процесс.
func killProcessGroup(pid int) {
	if p, err := os.FindProcess(pid); err == nil {
		_ = p.Kill()
	}
}
