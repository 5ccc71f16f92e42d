package export

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// syscallSig0 is the zero-signal liveness probe: sending it never actually
// signals the target process, it only validates that the pid still exists
// and is reachable.
var syscallSig0 = syscall.Signal(0)

// acquirePidfile enforces the single-writer invariant on an export
// database (§4.I.8): a stale pidfile from a process that's no longer
// running is reclaimed automatically, but a live one blocks a second
// concurrent session against the same destination.
func acquirePidfile(path string) (release func(), err error) {
	if path == "" {
		return func() {}, nil
	}

	if existing, readErr := os.ReadFile(path); readErr == nil {
		if pid, parseErr := strconv.Atoi(strings.TrimSpace(string(existing))); parseErr == nil {
			if processAlive(pid) {
				return nil, fmt.Errorf("export: another session (pid %d) is already writing to this destination", pid)
			}
		}
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return nil, fmt.Errorf("export: writing pidfile %s: %w", path, err)
	}
	return func() { os.Remove(path) }, nil
}

// processAlive reports whether pid names a live process, using the
// portable signal-0 probe.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscallSig0) == nil
}
