//go:build !windows

package dev

import (
	"context"
	"os"
	"os/exec"
	"syscall"
	"time"
)

type processHandle struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func startProcess(ctx context.Context, binary, dir string, env []string) (*processHandle, error) {
	cmd := exec.CommandContext(ctx, binary)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Env = env
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	h := &processHandle{cmd: cmd, done: make(chan struct{})}
	go func() {
		h.err = cmd.Wait()
		close(h.done)
	}()
	return h, nil
}

// stopProcess sends SIGTERM to the child's process group, escalating to
// SIGKILL when the child is still alive after the grace period.
func stopProcess(proc *processHandle, grace time.Duration) {
	if proc == nil || proc.cmd == nil || proc.cmd.Process == nil {
		return
	}

	select {
	case <-proc.done:
		return
	default:
	}

	pgid, err := syscall.Getpgid(proc.cmd.Process.Pid)
	if err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGTERM)
	} else {
		_ = proc.cmd.Process.Signal(syscall.SIGTERM)
	}

	select {
	case <-proc.done:
		return
	case <-time.After(grace):
		if pgid > 0 {
			_ = syscall.Kill(-pgid, syscall.SIGKILL)
		} else {
			_ = proc.cmd.Process.Kill()
		}
		<-proc.done
	}
}
