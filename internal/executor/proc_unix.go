//go:build unix

package executor

import (
	"os/exec"
	"syscall"
)

// setProcessGroup помещает дочерний процесс в собственную process group.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup убивает всю process group процесса.
// Отрицательный PID адресует сигнал группе, а не одному процессу.
func killProcessGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
