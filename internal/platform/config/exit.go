package config

import (
	"fmt"
	"os"
)

// Exitf prints one formatted line to stderr and terminates the process with
// a nonzero status. One-shot commands use it for unrecoverable setup
// failures; the long-running pipeline server returns errors instead.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
