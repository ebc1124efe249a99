package market

import (
	"time"

	"assethub.org/internal/ids"
)

// Well-known tag ids referenced by the account flows.
const (
	TagOwner     = "tag-owner"
	TagAdmin     = "tag-admin"
	TagNewMember = "tag-new"
)

// Categories lists the fixed asset categories, "All" meaning no filter.
func Categories() []string {
	return []string{"All", "Environment", "Weapons", "UI", "Scripts", "Animations",
		"Models", "Audio", "Particles", "Plugins", "Other"}
}

func defaultProfile() Profile {
	return Profile{
		BannerColor:    "#1a1a2e",
		AccentColor:    "#e2231a",
		ShowcaseAssets: []string{},
		Theme:          "default",
	}
}

// Seed loads the platform owner account, the default tag set and a small
// sample catalog. Intended to be called once at startup on an empty store.
func (s *Store) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	owner := &User{
		ID:       ids.New(),
		Username: "hubowner",
		Email:    "owner@assethub.org",
		Password: "hubowner_zxasqw_12345",
		Role:     RoleOwner,
		Profile: Profile{
			DisplayName:  "Asset Hub",
			Bio:          "Platform owner and lead developer",
			BannerColor:  "#0a0a0a",
			AccentColor:  "#e2231a",
			CustomStatus: "Managing the platform",
			AboutMe:      "Welcome to Asset Hub!",
			Theme:        "default",
		},
		Tags:     []string{TagOwner},
		Balance:  999999,
		JoinDate: now,
		LastSeen: now,
		IsOnline: true,
	}
	s.users = append(s.users, owner)
	s.usersByID[owner.ID] = owner

	defaultTags := []*Tag{
		{ID: TagOwner, Name: "OWNER", Color: "#e2231a", TextColor: "#ffffff", Icon: "crown", CreatedBy: owner.ID},
		{ID: TagAdmin, Name: "ADMIN", Color: "#f59e0b", TextColor: "#000000", Icon: "shield", CreatedBy: owner.ID},
		{ID: "tag-verified", Name: "Verified Creator", Color: "#3b82f6", TextColor: "#ffffff", Icon: "check-circle", CreatedBy: owner.ID},
		{ID: "tag-top", Name: "Top Creator", Color: "#8b5cf6", TextColor: "#ffffff", Icon: "star", CreatedBy: owner.ID},
		{ID: "tag-special", Name: "Special User", Color: "#ec4899", TextColor: "#ffffff", Icon: "sparkles", CreatedBy: owner.ID},
		{ID: "tag-community", Name: "Community", Color: "#10b981", TextColor: "#ffffff", Icon: "users", CreatedBy: owner.ID},
		{ID: TagNewMember, Name: "New Member", Color: "#6b7280", TextColor: "#ffffff", Icon: "user-plus", CreatedBy: owner.ID},
		{ID: "tag-official", Name: "Official", Color: "#e2231a", TextColor: "#ffffff", Icon: "badge-check", CreatedBy: owner.ID},
	}
	for _, t := range defaultTags {
		s.tags = append(s.tags, t)
		s.tagsByID[t.ID] = t
	}

	samples := []*Asset{
		{
			Title:       "Low Poly City Pack",
			Description: "Complete low poly city environment with buildings, roads, vehicles and props.",
			Category:    "Environment", Tags: []string{"low-poly", "city", "buildings"},
			IsFree: true, DownloadCount: 1247, Rating: 4.8, RatingCount: 89,
			CreatedAt: now.Add(-80 * 24 * time.Hour), FileSize: "12.5 MB",
		},
		{
			Title:       "Fantasy Sword Collection",
			Description: "Twenty unique fantasy swords with custom animations, VFX and sound effects.",
			Category:    "Weapons", Tags: []string{"fantasy", "swords", "animated"},
			Price: 250, DownloadCount: 567, Rating: 4.9, RatingCount: 45,
			CreatedAt: now.Add(-95 * 24 * time.Hour), FileSize: "8.3 MB",
		},
		{
			Title:       "Modern UI Kit",
			Description: "Professional UI kit with buttons, frames and menus. Fully customizable.",
			Category:    "UI", Tags: []string{"ui", "modern", "clean"},
			IsFree: true, DownloadCount: 2341, Rating: 4.7, RatingCount: 156,
			CreatedAt: now.Add(-120 * 24 * time.Hour), FileSize: "3.1 MB",
		},
		{
			Title:       "Advanced Combat System",
			Description: "Full combat system with combos, blocking, dodging and special abilities.",
			Category:    "Scripts", Tags: []string{"combat", "system", "pvp"},
			Price: 500, DownloadCount: 312, Rating: 4.6, RatingCount: 28,
			CreatedAt: now.Add(-160 * 24 * time.Hour), FileSize: "1.8 MB",
		},
		{
			Title:       "Nature Environment Pack",
			Description: "Trees, rocks, grass, flowers and terrain textures for outdoor scenes.",
			Category:    "Environment", Tags: []string{"nature", "outdoor", "terrain"},
			Price: 150, DownloadCount: 891, Rating: 4.5, RatingCount: 67,
			CreatedAt: now.Add(-50 * 24 * time.Hour), FileSize: "25.6 MB",
		},
		{
			Title:       "Character Animation Pack",
			Description: "Over 50 character animations including idle, walk, run, jump and emotes.",
			Category:    "Animations", Tags: []string{"animation", "character", "emotes"},
			IsFree: true, DownloadCount: 3456, Rating: 4.9, RatingCount: 234,
			CreatedAt: now.Add(-190 * 24 * time.Hour), FileSize: "5.2 MB",
		},
	}
	for _, a := range samples {
		a.ID = ids.New()
		a.CreatorID = owner.ID
		a.Status = StatusApproved
		a.Ratings = []Rating{}
		if a.Price == 0 {
			a.IsFree = true
		}
		s.assets = append(s.assets, a)
		s.assetsByID[a.ID] = a
	}
}

// OwnerID returns the id of the seeded owner account.
func (s *Store) OwnerID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Role == RoleOwner {
			return u.ID, nil
		}
	}
	return "", ErrNotFound
}
