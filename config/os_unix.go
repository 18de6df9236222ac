//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// CleanFileName strips path separators from a name so template expansion
// cannot smuggle directories into a single output file name. Leading dots go
// too, hidden output files are never what the user wants.
func CleanFileName(in string) string {
	var b strings.Builder
	for _, sym := range in {
		if sym == os.PathSeparator || sym == os.PathListSeparator {
			continue
		}
		b.WriteRune(sym)
	}
	out := strings.TrimLeft(b.String(), ".")
	if len(out) == 0 {
		return "_bad_file_name_"
	}
	return out
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
