// Command webserv runs the single-threaded TCP reactor until SIGINT or
// SIGTERM, then closes every descriptor and exits.
package main

import (
	"fmt"
	"os"

	"github.com/zeromicro/go-zero/core/logx"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// zerolog is the only log stream; go-zero's signal hooks, linked in
	// through its config loader, would otherwise write logx lines into it.
	logx.Disable()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "webserv: %s\n", err)
		os.Exit(1)
	}
}
