package config

import (
	"path/filepath"
	"strings"
)

// SheetFileName turns user supplied name (usually preset name) into a file
// name for generated sheet. Characters not allowed by the platform are
// dropped, ".css" extension is added when missing.
func SheetFileName(name string) string {
	out := strings.TrimLeft(strings.Map(func(sym rune) rune {
		if sym == 0 || strings.ContainsRune(forbiddenNameRunes, sym) {
			return -1
		}
		return sym
	}, strings.TrimSpace(name)), ".")
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	if !strings.EqualFold(filepath.Ext(out), ".css") {
		out += ".css"
	}
	return out
}
