// Package vpath implements POSIX-style path handling for workspace paths.
// Every path produced here is absolute and free of empty, "." and ".." segments.
package vpath

import "strings"

// Normalize trims surrounding whitespace, converts backslashes, collapses "."
// and ".." segments and returns an absolute path. Popping past the root is a
// no-op.
func Normalize(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	stack := make([]string, 0, strings.Count(p, "/")+1)
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, part)
		}
	}
	return "/" + strings.Join(stack, "/")
}

// Join concatenates segments with "/" and normalizes the result.
func Join(segments ...string) string {
	return Normalize(strings.Join(segments, "/"))
}

// Dirname returns everything before the last "/", or "/" for top-level paths.
func Dirname(p string) string {
	p = Normalize(p)
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return "/"
	}
	return p[:i]
}

// Base returns the last segment, or "" for the root.
func Base(p string) string {
	p = Normalize(p)
	return p[strings.LastIndex(p, "/")+1:]
}

// Ext returns the extension of the last segment including the dot.
func Ext(p string) string {
	base := Base(p)
	i := strings.LastIndex(base, ".")
	if i <= 0 {
		return ""
	}
	return base[i:]
}

// IsRelative reports whether spec is a "./" or "../" style specifier.
func IsRelative(spec string) bool {
	return strings.HasPrefix(spec, ".")
}

// IsLocal reports whether spec refers to a workspace file rather than a package.
func IsLocal(spec string) bool {
	return strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/")
}
