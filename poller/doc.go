// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package poller provides the readiness-wait substrate for the reactor: a
// poll(2) backend on Linux and Darwin and an epoll(7) backend on Linux.
package poller
