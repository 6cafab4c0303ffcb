//go:build linux

package main

import "golang.org/x/sys/unix"

// suppressEcho turns off terminal echo on fd, keeping line buffering, so a
// pressed Enter does not move the cursor under the level bars. The returned
// func restores the previous mode. Non-terminals are left alone.
func suppressEcho(fd int) func() {
	saved, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return func() {}
	}
	quiet := *saved
	quiet.Lflag &^= unix.ECHO
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &quiet); err != nil {
		return func() {}
	}
	return func() { _ = unix.IoctlSetTermios(fd, unix.TCSETS, saved) }
}
