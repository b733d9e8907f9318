// Package session holds the signed-in user's profile and preferences.
//
// A Session is an immutable value: every mutator returns a new Session with
// its own copies of the category and favorites maps, so a value handed to a
// view-model can never change underneath it. The process-wide "current
// session" lives in a Holder, which serialises updates.
package session

import (
	"sort"
	"strings"
	"sync"
)

// Profile is the plain data a Session is built from, typically decoded from
// the profile endpoint.
type Profile struct {
	ID         int64
	Username   string
	Gender     string
	Age        int
	Height     int
	Token      string
	Categories map[int64]string // subscribed category id -> name
	Favorites  map[int64]string // post id -> comma-joined favorite tags
}

// Session is the signed-in user's state. The zero value is the signed-out
// session.
type Session struct {
	ID       int64
	Username string
	Gender   string
	Age      int
	Height   int
	Token    string // bearer token issued at sign-in or sign-up

	categories map[int64]string
	favorites  map[int64]string
}

// New builds a Session from p. The maps in p are copied.
func New(p Profile) Session {
	return Session{
		ID:         p.ID,
		Username:   p.Username,
		Gender:     p.Gender,
		Age:        p.Age,
		Height:     p.Height,
		Token:      p.Token,
		categories: copyMap(p.Categories),
		favorites:  copyMap(p.Favorites),
	}
}

// SignedIn reports whether s belongs to a user.
func (s Session) SignedIn() bool { return s.ID != 0 }

// Categories returns a copy of the subscribed categories.
func (s Session) Categories() map[int64]string { return copyMap(s.categories) }

// CategoryIDs returns the subscribed category ids in ascending order.
func (s Session) CategoryIDs() []int64 { return sortedKeys(s.categories) }

// IsSubscribed reports whether s is subscribed to categoryID.
func (s Session) IsSubscribed(categoryID int64) bool {
	_, ok := s.categories[categoryID]
	return ok
}

// WithCategory returns s subscribed to the given category.
func (s Session) WithCategory(id int64, name string) Session {
	s.categories = copyMap(s.categories)
	s.categories[id] = name
	return s
}

// WithoutCategory returns s unsubscribed from the given category.
func (s Session) WithoutCategory(id int64) Session {
	s.categories = copyMap(s.categories)
	delete(s.categories, id)
	return s
}

// Favorites returns a copy of the favorites mapping.
func (s Session) Favorites() map[int64]string { return copyMap(s.favorites) }

// FavoriteKeys returns the post ids with at least one favorite tag, ascending.
func (s Session) FavoriteKeys() []int64 { return sortedKeys(s.favorites) }

// FavoriteTags returns the tags recorded under postID.
func (s Session) FavoriteTags(postID int64) []string {
	return SplitTags(s.favorites[postID])
}

// HasFavoriteTag reports whether tag is recorded under postID.
func (s Session) HasFavoriteTag(postID int64, tag string) bool {
	for _, t := range s.FavoriteTags(postID) {
		if t == tag {
			return true
		}
	}
	return false
}

// ToggleFavoriteTag removes tag from postID's list when present and appends
// it otherwise. A key whose list becomes empty is dropped.
func (s Session) ToggleFavoriteTag(postID int64, tag string) Session {
	return s.WithFavoriteTag(postID, tag, !s.HasFavoriteTag(postID, tag))
}

// WithFavoriteTag sets the presence of tag under postID.
func (s Session) WithFavoriteTag(postID int64, tag string, present bool) Session {
	tags := s.FavoriteTags(postID)
	kept := tags[:0]
	for _, t := range tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	if present {
		kept = append(kept, tag)
	}

	s.favorites = copyMap(s.favorites)
	if len(kept) == 0 {
		delete(s.favorites, postID)
	} else {
		s.favorites[postID] = strings.Join(kept, ",")
	}
	return s
}

// SplitTags splits a comma-joined tag list, dropping empty entries.
func SplitTags(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func copyMap(m map[int64]string) map[int64]string {
	out := make(map[int64]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[int64]string) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Holder publishes the current Session to every view-model.
//
// Updates are read-modify-write under one lock, so two screens toggling
// different favorites at the same time both land.
type Holder struct {
	mu  sync.RWMutex
	cur Session
}

// NewHolder returns a Holder starting at s.
func NewHolder(s Session) *Holder {
	return &Holder{cur: s}
}

// Load returns the current session.
func (h *Holder) Load() Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cur
}

// Store replaces the current session.
func (h *Holder) Store(s Session) {
	h.mu.Lock()
	h.cur = s
	h.mu.Unlock()
}

// Update applies fn to the current session and stores the result.
func (h *Holder) Update(fn func(Session) Session) Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cur = fn(h.cur)
	return h.cur
}

// Reset signs out.
func (h *Holder) Reset() {
	h.Store(Session{})
}
