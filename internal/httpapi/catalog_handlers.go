package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"assethub.org/internal/audit"
	"assethub.org/internal/auth"
	"assethub.org/internal/authz"
	"assethub.org/internal/market"
	"assethub.org/internal/obs"
	"assethub.org/internal/stream"
)

type uploadRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Price       int64    `json:"price"`
	IsFree      bool     `json:"is_free"`
	FileSize    string   `json:"file_size"`
	Thumbnail   string   `json:"thumbnail"`
	Images      []string `json:"images"`
}

type moderateRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

type rateRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

type assetListResponse struct {
	Items []market.Asset `json:"items"`
}

type homeResponse struct {
	Top    []market.Asset `json:"top"`
	Newest []market.Asset `json:"newest"`
	Paid   []market.Asset `json:"paid"`
}

func (a *API) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": market.Categories()})
}

func (a *API) listAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := market.Filter{
		Query:    q.Get("query"),
		Category: q.Get("category"),
		Price:    market.PriceFilter(q.Get("price")),
		Sort:     market.SortOrder(q.Get("sort")),
	}
	writeJSON(w, http.StatusOK, assetListResponse{Items: a.store.ListApproved(f)})
}

func (a *API) homeAssets(w http.ResponseWriter, r *http.Request) {
	n, err := parseLimit(r.URL.Query().Get("limit"), 4)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, homeResponse{
		Top:    a.store.TopDownloaded(n),
		Newest: a.store.Newest(n),
		Paid:   a.store.Paid(n),
	})
}

func (a *API) pendingAssets(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionUserID(w, r); !ok {
		return
	}
	if !authz.Can(auth.RoleFromContext(r.Context()), authz.ActionModerateAsset) {
		writeError(w, r, http.StatusForbidden, "moderation queue is restricted")
		return
	}
	writeJSON(w, http.StatusOK, assetListResponse{Items: a.store.PendingAssets()})
}

func (a *API) getAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := a.store.AssetByID(r.PathValue("id"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (a *API) uploadAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	var req uploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	asset, err := a.store.Upload(userID, market.AssetInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		Price:       req.Price,
		IsFree:      req.IsFree,
		FileSize:    req.FileSize,
		Thumbnail:   req.Thumbnail,
		Images:      req.Images,
	})
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "market.asset.upload", map[string]any{
		"asset_id": asset.ID,
		"title":    asset.Title,
		"status":   string(asset.Status),
	})

	w.Header().Set("Location", "/v1/assets/"+asset.ID)
	writeJSON(w, http.StatusCreated, asset)
}

func (a *API) deleteAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	assetID := r.PathValue("id")
	if err := a.store.DeleteAsset(userID, assetID); err != nil {
		handleMarketError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "market.asset.delete", map[string]any{
		"asset_id": assetID,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) moderateAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	var req moderateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	asset, err := a.store.Moderate(userID, r.PathValue("id"), req.Approve, req.Reason)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	decision := "reject"
	if req.Approve {
		decision = "approve"
	}
	obs.CountModeration(decision)
	if a.stream != nil {
		a.stream.Publish(stream.Event{
			Kind:      stream.KindModeration,
			ActorID:   userID,
			SubjectID: asset.ID,
		})
	}
	_ = audit.LogEvent(r.Context(), "market.asset.moderate", map[string]any{
		"asset_id": asset.ID,
		"decision": decision,
		"reason":   req.Reason,
	})

	writeJSON(w, http.StatusOK, asset)
}

func (a *API) purchaseAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	assetID := r.PathValue("id")

	asset, err := a.store.AssetByID(assetID)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	buyer, transferred, err := a.store.Purchase(userID, assetID)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	// No-op purchases (free asset, repeat buy) must not be recorded as
	// balance transfers.
	if transferred {
		obs.CountPurchase()
		if a.stream != nil {
			a.stream.Publish(stream.Event{
				Kind:      stream.KindPurchase,
				ActorID:   userID,
				SubjectID: assetID,
				Amount:    asset.Price,
			})
		}
		_ = audit.LogEvent(r.Context(), "market.asset.purchase", map[string]any{
			"asset_id":   assetID,
			"price":      asset.Price,
			"commission": asset.Price - asset.Price*9/10,
		})
	}

	writeJSON(w, http.StatusOK, buyer)
}

func (a *API) downloadAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	asset, err := a.store.Download(userID, r.PathValue("id"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	obs.CountDownload()
	writeJSON(w, http.StatusOK, asset)
}

func (a *API) rateAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	var req rateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	asset, err := a.store.Rate(userID, r.PathValue("id"), req.Score, req.Comment)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (a *API) userAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, assetListResponse{
		Items: a.store.AssetsByCreator(r.PathValue("id")),
	})
}

func parseLimit(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 1 || val > 100 {
		return 0, errors.New("limit must be between 1 and 100")
	}
	return val, nil
}
