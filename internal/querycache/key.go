package querycache

import "strings"

// Key names a cached query, e.g. {"posts"} or {"comments", postID}.
type Key []string

func NewKey(segments ...string) Key {
	return Key(segments)
}

// String joins the segments with ":", giving "comments:<postID>".
func (k Key) String() string {
	return strings.Join(k, ":")
}

// HasPrefix reports whether prefix matches the leading segments of k.
// {"comments"} is a prefix of {"comments", "p1"}; {"comm"} is not.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (k Key) clone() Key {
	return append(Key(nil), k...)
}
