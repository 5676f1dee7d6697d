//go:build windows

package cmd

import (
	"os"

	"golang.org/x/sys/windows"
)

// termWidth returns the console width, or 0 if f is not a console.
func termWidth(f *os.File) int {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(windows.Handle(f.Fd()), &info); err == nil {
		if w := int(info.Window.Right-info.Window.Left) + 1; w > 0 {
			return w
		}
	}
	return 0
}
