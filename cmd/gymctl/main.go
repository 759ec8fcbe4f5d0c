// Command gymctl runs one-off maintenance tasks against the gym database:
// migrations, admin creation, demo seeding, membership expiry and outbox
// delivery. It reads the same GYM_* environment as the server.
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
