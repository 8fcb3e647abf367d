package builder

import "os"

// stdinFd isolates the os.Stdin.Fd() call so run's TTY autodetection
// has a single seam a test could stub by passing Options.IsTTY instead.
func stdinFd() uintptr {
	return os.Stdin.Fd()
}
