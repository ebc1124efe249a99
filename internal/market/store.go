package market

import (
	mathrand "math/rand"
	"slices"
	"sync"
	"time"
)

// Store owns the authoritative in-memory collections and every transition
// that mutates them. Collections are insertion ordered; all state is volatile
// and resets on process restart. A single RWMutex serializes mutations,
// which is the only coordination the single-session model needs.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	rnd *mathrand.Rand

	users      []*User
	usersByID  map[string]*User
	assets     []*Asset
	assetsByID map[string]*Asset
	tags       []*Tag
	tagsByID   map[string]*Tag

	messages     []*Message
	messagesByID map[string]*Message
	chat         []*ChatMessage
	tickets      []*SupportTicket
	ticketsByID  map[string]*SupportTicket

	otps map[otpKey]*issuedOTP
}

// Option configures Store behavior.
type Option func(*Store)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewStore creates an empty store. Call Seed to load the default owner
// account, tags and sample catalog.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:          time.Now,
		rnd:          mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
		usersByID:    make(map[string]*User),
		assetsByID:   make(map[string]*Asset),
		tagsByID:     make(map[string]*Tag),
		messagesByID: make(map[string]*Message),
		ticketsByID:  make(map[string]*SupportTicket),
		otps:         make(map[otpKey]*issuedOTP),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserByID returns a copy of the user.
func (s *Store) UserByID(id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return cloneUser(u), nil
}

// UserByUsername returns a copy of the user with the exact username.
func (s *Store) UserByUsername(username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return User{}, ErrNotFound
}

// Users returns copies of all users in insertion order.
func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	return out
}

// Tags returns copies of all tags in insertion order.
func (s *Store) Tags() []Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, *t)
	}
	return out
}

// TagByID returns a copy of the tag.
func (s *Store) TagByID(id string) (Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tagsByID[id]
	if !ok {
		return Tag{}, ErrNotFound
	}
	return *t, nil
}

// Copies keep callers from mutating entities behind the store's back: the
// presentation layer must go through transition functions.

func cloneUser(u *User) User {
	out := *u
	out.Profile.ShowcaseAssets = slices.Clone(u.Profile.ShowcaseAssets)
	out.Tags = slices.Clone(u.Tags)
	out.Following = slices.Clone(u.Following)
	out.Followers = slices.Clone(u.Followers)
	out.PurchasedAssets = slices.Clone(u.PurchasedAssets)
	out.BlacklistedBy = slices.Clone(u.BlacklistedBy)
	out.CustomerOf = slices.Clone(u.CustomerOf)
	return out
}

func cloneAsset(a *Asset) Asset {
	out := *a
	out.Tags = slices.Clone(a.Tags)
	out.Ratings = slices.Clone(a.Ratings)
	out.Images = slices.Clone(a.Images)
	return out
}

func cloneTicket(t *SupportTicket) SupportTicket {
	out := *t
	out.Messages = slices.Clone(t.Messages)
	return out
}

// addMembership appends id if absent and reports whether the set changed.
func addMembership(set *[]string, id string) bool {
	if slices.Contains(*set, id) {
		return false
	}
	*set = append(*set, id)
	return true
}

// removeMembership removes id if present and reports whether the set changed.
func removeMembership(set *[]string, id string) bool {
	idx := slices.Index(*set, id)
	if idx < 0 {
		return false
	}
	*set = slices.Delete(*set, idx, idx+1)
	return true
}
