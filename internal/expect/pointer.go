package expect

import (
	"strconv"
	"strings"
)

// segment is one step of a path into a value tree: an object key or an
// array index.
type segment struct {
	key   string
	index int
	isKey bool
}

func keySeg(k string) segment { return segment{key: k, isKey: true} }
func indexSeg(i int) segment  { return segment{index: i} }

// escapeToken escapes JSON Pointer reserved characters ('~' as "~0" and
// '/' as "~1") per RFC 6901.
func escapeToken(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

// pointerOf renders a path as a JSON Pointer string for diagnostics.
func pointerOf(path []segment) string {
	var sb strings.Builder
	for _, seg := range path {
		sb.WriteByte('/')
		if seg.isKey {
			sb.WriteString(escapeToken(seg.key))
		} else {
			sb.WriteString(strconv.Itoa(seg.index))
		}
	}
	return sb.String()
}

// getNode resolves a path within a value tree. The boolean is false when
// any step of the path does not exist in the tree.
func getNode(root any, path []segment) (any, bool) {
	node := root
	for _, seg := range path {
		switch v := node.(type) {
		case map[string]any:
			if !seg.isKey {
				return nil, false
			}
			child, ok := v[seg.key]
			if !ok {
				return nil, false
			}
			node = child
		case []any:
			if seg.isKey || seg.index < 0 || seg.index >= len(v) {
				return nil, false
			}
			node = v[seg.index]
		default:
			return nil, false
		}
	}
	return node, true
}

// setNode overwrites the node at path and returns the (possibly new) root.
// An empty path replaces the root itself. Returns false when the path does
// not resolve.
func setNode(root any, path []segment, value any) (any, bool) {
	if len(path) == 0 {
		return value, true
	}
	parent, ok := getNode(root, path[:len(path)-1])
	if !ok {
		return root, false
	}
	last := path[len(path)-1]
	switch v := parent.(type) {
	case map[string]any:
		if !last.isKey {
			return root, false
		}
		if _, exists := v[last.key]; !exists {
			return root, false
		}
		v[last.key] = value
		return root, true
	case []any:
		if last.isKey || last.index < 0 || last.index >= len(v) {
			return root, false
		}
		v[last.index] = value
		return root, true
	default:
		return root, false
	}
}
