package market

import (
	"slices"
	"sort"
	"strings"

	"assethub.org/internal/authz"
	"assethub.org/internal/ids"
)

// PriceFilter narrows the catalog to free or paid assets.
type PriceFilter string

const (
	PriceAll  PriceFilter = "all"
	PriceFree PriceFilter = "free"
	PricePaid PriceFilter = "paid"
)

// SortOrder selects the catalog sort key.
type SortOrder string

const (
	SortNewest  SortOrder = "newest"
	SortPopular SortOrder = "popular"
	SortRating  SortOrder = "rating"
)

// Filter describes a catalog query. Zero values mean "no restriction".
type Filter struct {
	Query    string
	Category string
	Price    PriceFilter
	Sort     SortOrder
}

// ListApproved returns approved assets matching the filter. The query is a
// case-insensitive substring match on title and description. Deterministic
// for a given collection snapshot.
func (s *Store) ListApproved(f Filter) []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(f.Query)
	out := make([]Asset, 0)
	for _, a := range s.assets {
		if a.Status != StatusApproved {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(a.Title), query) &&
			!strings.Contains(strings.ToLower(a.Description), query) {
			continue
		}
		if f.Category != "" && f.Category != "All" && a.Category != f.Category {
			continue
		}
		switch f.Price {
		case PriceFree:
			if !a.IsFree {
				continue
			}
		case PricePaid:
			if a.IsFree {
				continue
			}
		}
		out = append(out, cloneAsset(a))
	}

	switch f.Sort {
	case SortPopular:
		sort.SliceStable(out, func(i, j int) bool { return out[i].DownloadCount > out[j].DownloadCount })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	default: // newest
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

// TopDownloaded returns up to n approved assets by download count.
func (s *Store) TopDownloaded(n int) []Asset {
	return truncate(s.ListApproved(Filter{Sort: SortPopular}), n)
}

// Newest returns up to n most recently created approved assets.
func (s *Store) Newest(n int) []Asset {
	return truncate(s.ListApproved(Filter{Sort: SortNewest}), n)
}

// Paid returns up to n approved paid assets.
func (s *Store) Paid(n int) []Asset {
	return truncate(s.ListApproved(Filter{Price: PricePaid}), n)
}

func truncate(assets []Asset, n int) []Asset {
	if n >= 0 && len(assets) > n {
		return assets[:n]
	}
	return assets
}

// AssetByID returns a copy of the asset regardless of status.
func (s *Store) AssetByID(id string) (Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assetsByID[id]
	if !ok {
		return Asset{}, ErrNotFound
	}
	return cloneAsset(a), nil
}

// AssetsByCreator returns the creator's assets in all moderation states.
func (s *Store) AssetsByCreator(creatorID string) []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Asset, 0)
	for _, a := range s.assets {
		if a.CreatorID == creatorID {
			out = append(out, cloneAsset(a))
		}
	}
	return out
}

// PendingAssets returns assets awaiting moderation, oldest first.
func (s *Store) PendingAssets() []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Asset, 0)
	for _, a := range s.assets {
		if a.Status == StatusPending {
			out = append(out, cloneAsset(a))
		}
	}
	return out
}

// AssetInput carries the upload form fields.
type AssetInput struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	Price       int64
	IsFree      bool
	FileSize    string
	Thumbnail   string
	Images      []string
}

// Upload submits a new asset. Owner uploads are approved immediately; all
// others start pending.
func (s *Store) Upload(creatorID string, in AssetInput) (Asset, error) {
	if in.Title == "" || in.Description == "" {
		return Asset{}, ErrMissingField
	}
	if in.Price < 0 {
		return Asset{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creator, ok := s.usersByID[creatorID]
	if !ok {
		return Asset{}, ErrNotFound
	}
	if !authz.Can(string(creator.Role), authz.ActionUploadAsset) {
		return Asset{}, ErrAccessDenied
	}

	price := in.Price
	if in.IsFree {
		price = 0
	}
	status := StatusPending
	if creator.Role == RoleOwner {
		status = StatusApproved
	}

	a := &Asset{
		ID:          ids.New(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Tags:        in.Tags,
		CreatorID:   creatorID,
		Price:       price,
		IsFree:      in.IsFree,
		Ratings:     []Rating{},
		Status:      status,
		CreatedAt:   s.now(),
		FileSize:    in.FileSize,
		Thumbnail:   in.Thumbnail,
		Images:      in.Images,
	}
	s.assets = append(s.assets, a)
	s.assetsByID[a.ID] = a
	return cloneAsset(a), nil
}

// Moderate applies an approve or reject decision to a pending asset. Both
// outcomes are terminal; re-moderation is not supported.
func (s *Store) Moderate(adminID, assetID string, approve bool, reason string) (Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin, ok := s.usersByID[adminID]
	if !ok {
		return Asset{}, ErrNotFound
	}
	if !authz.Can(string(admin.Role), authz.ActionModerateAsset) {
		return Asset{}, ErrAccessDenied
	}
	a, ok := s.assetsByID[assetID]
	if !ok {
		return Asset{}, ErrNotFound
	}
	if a.Status != StatusPending {
		return Asset{}, ErrAlreadyModerated
	}

	if approve {
		a.Status = StatusApproved
	} else {
		a.Status = StatusRejected
		a.RejectReason = reason
	}
	return cloneAsset(a), nil
}

// DeleteAsset removes the asset. Permitted for the creator and for roles with
// the delete-any capability. Purchase records and ratings elsewhere are not
// cleaned up; reads tolerate dangling asset ids.
func (s *Store) DeleteAsset(actorID, assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, ok := s.usersByID[actorID]
	if !ok {
		return ErrNotFound
	}
	a, ok := s.assetsByID[assetID]
	if !ok {
		return ErrNotFound
	}
	if a.CreatorID != actorID && !authz.Can(string(actor.Role), authz.ActionDeleteAnyAsset) {
		return ErrAccessDenied
	}

	delete(s.assetsByID, assetID)
	for i, cur := range s.assets {
		if cur.ID == assetID {
			s.assets = append(s.assets[:i], s.assets[i+1:]...)
			break
		}
	}
	return nil
}

// Purchase debits the buyer by the full price and credits the creator 90% of
// it; the 10% commission is not credited to any account. Free assets and
// repeat purchases are no-ops. Returns the updated buyer and whether a
// balance transfer actually occurred, so callers only record effective
// purchases.
func (s *Store) Purchase(buyerID, assetID string) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buyer, ok := s.usersByID[buyerID]
	if !ok {
		return User{}, false, ErrNotFound
	}
	a, ok := s.assetsByID[assetID]
	if !ok {
		return User{}, false, ErrNotFound
	}
	if a.IsFree || slices.Contains(buyer.PurchasedAssets, assetID) {
		return cloneUser(buyer), false, nil
	}
	if buyer.Balance < a.Price {
		return User{}, false, ErrInsufficientBalance
	}

	buyer.Balance -= a.Price
	if creator, ok := s.usersByID[a.CreatorID]; ok {
		creator.Balance += a.Price * 9 / 10
	}
	buyer.PurchasedAssets = append(buyer.PurchasedAssets, assetID)
	addMembership(&buyer.CustomerOf, a.CreatorID)
	return cloneUser(buyer), true, nil
}

// Download requires the asset to be free or already purchased, then bumps
// the download counter.
func (s *Store) Download(userID, assetID string) (Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[userID]
	if !ok {
		return Asset{}, ErrNotFound
	}
	a, ok := s.assetsByID[assetID]
	if !ok {
		return Asset{}, ErrNotFound
	}
	if !a.IsFree && !slices.Contains(u.PurchasedAssets, assetID) {
		return Asset{}, ErrAccessDenied
	}
	a.DownloadCount++
	return cloneAsset(a), nil
}

// Rate upserts the user's rating entry and recomputes the average inside the
// same transition; no other code path touches the derived fields.
func (s *Store) Rate(userID, assetID string, score int, comment string) (Asset, error) {
	if score < 1 || score > 5 {
		return Asset{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByID[userID]; !ok {
		return Asset{}, ErrNotFound
	}
	a, ok := s.assetsByID[assetID]
	if !ok {
		return Asset{}, ErrNotFound
	}

	replaced := false
	for i := range a.Ratings {
		if a.Ratings[i].UserID == userID {
			a.Ratings[i].Score = score
			a.Ratings[i].Comment = comment
			replaced = true
			break
		}
	}
	if !replaced {
		a.Ratings = append(a.Ratings, Rating{UserID: userID, Score: score, Comment: comment})
	}

	total := 0
	for _, r := range a.Ratings {
		total += r.Score
	}
	a.RatingCount = len(a.Ratings)
	a.Rating = float64(total) / float64(a.RatingCount)
	return cloneAsset(a), nil
}

// CreatorSales aggregates downloads and the creator's revenue cut across
// their catalog.
func (s *Store) CreatorSales(creatorID string) (SalesSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.usersByID[creatorID]; !ok {
		return SalesSummary{}, ErrNotFound
	}
	sum := SalesSummary{CreatorID: creatorID}
	for _, a := range s.assets {
		if a.CreatorID != creatorID {
			continue
		}
		sum.AssetCount++
		sum.TotalDownloads += a.DownloadCount
		if !a.IsFree {
			sum.Revenue += int64(a.DownloadCount) * a.Price * 9 / 10
		}
	}
	return sum, nil
}
