package market

import (
	"assethub.org/internal/authz"
	"assethub.org/internal/ids"
)

// Follow adds the follower/followed edge, keeping both sides of the relation
// symmetric in one transition. Following yourself is rejected; following
// someone twice is a no-op.
func (s *Store) Follow(followerID, targetID string) error {
	if followerID == targetID {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	follower, ok := s.usersByID[followerID]
	if !ok {
		return ErrNotFound
	}
	target, ok := s.usersByID[targetID]
	if !ok {
		return ErrNotFound
	}
	if addMembership(&follower.Following, targetID) {
		addMembership(&target.Followers, followerID)
	}
	return nil
}

// Unfollow removes the edge from both sides. Unfollowing someone you do not
// follow is a no-op.
func (s *Store) Unfollow(followerID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	follower, ok := s.usersByID[followerID]
	if !ok {
		return ErrNotFound
	}
	target, ok := s.usersByID[targetID]
	if !ok {
		return ErrNotFound
	}
	if removeMembership(&follower.Following, targetID) {
		removeMembership(&target.Followers, followerID)
	}
	return nil
}

// CreateTag defines a new user label. Requires the tag-management capability.
func (s *Store) CreateTag(actorID, name, color, textColor, icon string) (Tag, error) {
	if name == "" {
		return Tag{}, ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	actor, ok := s.usersByID[actorID]
	if !ok {
		return Tag{}, ErrNotFound
	}
	if !authz.Can(string(actor.Role), authz.ActionManageTags) {
		return Tag{}, ErrAccessDenied
	}

	t := &Tag{
		ID:        ids.New(),
		Name:      name,
		Color:     color,
		TextColor: textColor,
		Icon:      icon,
		CreatedBy: actorID,
	}
	s.tags = append(s.tags, t)
	s.tagsByID[t.ID] = t
	return *t, nil
}

// ToggleTag flips the tag's membership on the user: assigning an already
// assigned tag removes it. Requires the tag-management capability.
func (s *Store) ToggleTag(actorID, userID, tagID string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, ok := s.usersByID[actorID]
	if !ok {
		return User{}, ErrNotFound
	}
	if !authz.Can(string(actor.Role), authz.ActionManageTags) {
		return User{}, ErrAccessDenied
	}
	u, ok := s.usersByID[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	if _, ok := s.tagsByID[tagID]; !ok {
		return User{}, ErrNotFound
	}

	if !removeMembership(&u.Tags, tagID) {
		u.Tags = append(u.Tags, tagID)
	}
	return cloneUser(u), nil
}

// ToggleBlacklist flips whether the actor has blacklisted the target. The
// relation is stored on the target as the set of users who blacklisted it.
func (s *Store) ToggleBlacklist(actorID, targetID string) (User, error) {
	if actorID == targetID {
		return User{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByID[actorID]; !ok {
		return User{}, ErrNotFound
	}
	target, ok := s.usersByID[targetID]
	if !ok {
		return User{}, ErrNotFound
	}

	if !removeMembership(&target.BlacklistedBy, actorID) {
		target.BlacklistedBy = append(target.BlacklistedBy, actorID)
	}
	return cloneUser(target), nil
}
