//go:build !unix

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package reactor

import "github.com/momentics/webserv/api"

var errUnsupported = api.NewError(api.KindIO, "fd", "unsupported platform")

func sysRead(fd int, p []byte) (int, error)  { return 0, errUnsupported }
func sysWrite(fd int, p []byte) (int, error) { return 0, errUnsupported }
func sysClose(fd int) error                  { return nil }
func isWouldBlock(err error) bool            { return false }
