// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp implements the non-blocking listening socket used by the reactor.
// Accept treats "would block" as an empty result rather than an error, and no
// failing constructor leaks a descriptor.
package tcp
