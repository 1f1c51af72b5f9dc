package playlist

// Likes is a set of liked track IDs, independent of playlist order.
type Likes struct {
	ids map[string]bool
}

// NewLikes creates an empty liked set.
func NewLikes() *Likes {
	return &Likes{
		ids: make(map[string]bool),
	}
}

// Toggle adds the ID if absent, removes it if present.
// Returns the new liked status (true = now liked).
func (l *Likes) Toggle(id string) bool {
	if l.ids[id] {
		delete(l.ids, id)
		return false
	}
	l.ids[id] = true
	return true
}

// Contains reports whether the ID is liked.
func (l *Likes) Contains(id string) bool {
	return l.ids[id]
}

// IDs returns all liked IDs as a map for efficient lookup.
func (l *Likes) IDs() map[string]bool {
	result := make(map[string]bool, len(l.ids))
	for id := range l.ids {
		result[id] = true
	}
	return result
}

// Len returns the number of liked tracks.
func (l *Likes) Len() int {
	return len(l.ids)
}
