package store

import (
	"fmt"
	"strings"
)

// PathError is returned when a durable store path cannot be constructed
// from the given raw input.
type PathError struct {
	Input  string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid store path %q: %v", e.Input, e.Reason)
}

// Path is a validated location in the durable store, a sequence of
// `/`-delimited ASCII segments. The zero value is the root path.
type Path struct {
	raw string
}

// RootPath returns the store root.
func RootPath() Path {
	return Path{}
}

func validSegmentByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '.' || b == '_' || b == '-':
		return true
	}
	return false
}

// ParsePath constructs a Path from its raw string form. The input must start
// with a slash, must not end with one, and each segment must be non-empty
// ASCII limited to `[A-Za-z0-9._-]`.
func ParsePath(raw string) (Path, error) {
	if len(raw) == 0 {
		return Path{}, &PathError{Input: raw, Reason: "empty path"}
	}

	if raw[0] != '/' {
		return Path{}, &PathError{Input: raw, Reason: "missing leading slash"}
	}

	for _, segment := range strings.Split(raw[1:], "/") {
		if len(segment) == 0 {
			return Path{}, &PathError{Input: raw, Reason: "empty path segment"}
		}

		for i := 0; i < len(segment); i++ {
			if !validSegmentByte(segment[i]) {
				return Path{}, &PathError{
					Input:  raw,
					Reason: fmt.Sprintf("invalid byte %q in path segment", segment[i]),
				}
			}
		}
	}

	return Path{raw: raw}, nil
}

// MustPath is like ParsePath but panics on malformed input. It is reserved
// for package level path constants.
func MustPath(raw string) Path {
	path, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}

	return path
}

// Join appends a single child segment to the path. The segment itself must
// not contain a slash, so Join("a/b") fails rather than aliasing
// Join("a").Join("b").
func (p Path) Join(segment string) (Path, error) {
	if len(segment) == 0 {
		return Path{}, &PathError{Input: segment, Reason: "empty path segment"}
	}

	for i := 0; i < len(segment); i++ {
		if !validSegmentByte(segment[i]) {
			return Path{}, &PathError{
				Input:  segment,
				Reason: fmt.Sprintf("invalid byte %q in path segment", segment[i]),
			}
		}
	}

	return Path{raw: p.raw + "/" + segment}, nil
}

// Concat appends another path beneath this one.
func (p Path) Concat(other Path) Path {
	return Path{raw: p.raw + other.raw}
}

// Segments splits the path into its segment sequence. The root path has none.
func (p Path) Segments() []string {
	if len(p.raw) == 0 {
		return nil
	}

	return strings.Split(p.raw[1:], "/")
}

func (p Path) String() string {
	return p.raw
}
