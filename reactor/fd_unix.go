//go:build unix

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Descriptor I/O for Unix-like systems.

package reactor

import (
	"errors"

	"golang.org/x/sys/unix"
)

func sysRead(fd int, p []byte) (int, error) {
	n, err := unix.Read(fd, p)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func sysWrite(fd int, p []byte) (int, error) {
	n, err := unix.Write(fd, p)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func sysClose(fd int) error { return unix.Close(fd) }

func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR)
}
