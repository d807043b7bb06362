//go:build unix && !linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// No SOCK_CLOEXEC/accept4 here; close-on-exec is set under ForkLock so a
// concurrent fork+exec cannot inherit the descriptor.

package tcp

import (
	"syscall"

	"golang.org/x/sys/unix"
)

const acceptSetsFlags = false

func newSocket() (int, error) {
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err == nil {
		unix.CloseOnExec(fd)
	}
	return fd, err
}

func acceptConn(fd int) (int, unix.Sockaddr, error) {
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()
	nfd, sa, err := unix.Accept(fd)
	if err == nil {
		unix.CloseOnExec(nfd)
	}
	return nfd, sa, err
}
