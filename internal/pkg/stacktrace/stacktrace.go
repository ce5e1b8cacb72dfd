// Package stacktrace trims goroutine dumps down to the frames of this module.
package stacktrace

import (
	"log/slog"
	"runtime/debug"
	"strings"
)

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" frames of stack.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.Lines(string(stack)) {
		line = strings.TrimSpace(line)

		_, rest, ok := strings.Cut(line, "/internal/")
		if !ok || !strings.Contains(rest, ".go:") {
			continue
		}
		rest, _, _ = strings.Cut(rest, " ")
		paths = append(paths, "internal/"+rest)
	}
	return paths
}

// Attr is the "stack" log attribute of the current goroutine: the internal
// frames when there are some, the raw dump otherwise.
func Attr() slog.Attr {
	return attr(debug.Stack())
}

func attr(stack []byte) slog.Attr {
	if paths := InternalPaths(stack); len(paths) > 0 {
		return slog.Any("stack", paths)
	}
	return slog.String("stack", string(stack))
}
