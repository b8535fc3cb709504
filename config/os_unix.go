//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

const forbiddenNameRunes = string(os.PathSeparator) + string(os.PathListSeparator)

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
