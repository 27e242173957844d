package domain

import "slices"

// LikeSet is an ordered set of user ids. It never holds the same id twice.
type LikeSet []string

// NewLikeSet builds a set from ids, dropping empty and duplicate entries.
func NewLikeSet(ids ...string) LikeSet {
	out := make(LikeSet, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (s LikeSet) Has(userID string) bool {
	return slices.Contains(s, userID)
}

// Toggle returns a new set with userID removed when present and appended when absent.
// The receiver is left untouched so cached snapshots are never mutated in place.
func (s LikeSet) Toggle(userID string) LikeSet {
	if s.Has(userID) {
		out := make(LikeSet, 0, len(s)-1)
		for _, id := range s {
			if id != userID {
				out = append(out, id)
			}
		}
		return out
	}

	out := make(LikeSet, len(s), len(s)+1)
	copy(out, s)
	return append(out, userID)
}

// Add returns a new set containing userID.
func (s LikeSet) Add(userID string) LikeSet {
	if s.Has(userID) {
		return append(LikeSet(nil), s...)
	}
	return s.Toggle(userID)
}

// Remove returns a new set without userID.
func (s LikeSet) Remove(userID string) LikeSet {
	if !s.Has(userID) {
		return append(LikeSet(nil), s...)
	}
	return s.Toggle(userID)
}

func (s LikeSet) Count() int { return len(s) }

// Normalize removes duplicates that may come back from the backend.
func (s LikeSet) Normalize() LikeSet {
	return NewLikeSet(s...)
}
