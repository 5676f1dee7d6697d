//go:build !windows

package cmd

import (
	"os"

	"golang.org/x/sys/unix"
)

// termWidth returns the terminal width via ioctl, or 0 if f is not a terminal.
func termWidth(f *os.File) int {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 0
	}
	return int(ws.Col)
}
