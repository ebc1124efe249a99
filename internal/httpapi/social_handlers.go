package httpapi

import (
	"net/http"

	"assethub.org/internal/audit"
	"assethub.org/internal/market"
)

type createTagRequest struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	TextColor string `json:"text_color"`
	Icon      string `json:"icon"`
}

type userListResponse struct {
	Items []market.User `json:"items"`
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userListResponse{Items: a.store.Users()})
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.store.UserByUsername(r.PathValue("username"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	if err := a.store.Follow(userID, r.PathValue("id")); err != nil {
		handleMarketError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	if err := a.store.Unfollow(userID, r.PathValue("id")); err != nil {
		handleMarketError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) toggleBlacklist(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	target, err := a.store.ToggleBlacklist(userID, r.PathValue("id"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (a *API) listTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": a.store.Tags()})
}

func (a *API) createTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	var req createTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	tag, err := a.store.CreateTag(userID, req.Name, req.Color, req.TextColor, req.Icon)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "market.tag.create", map[string]any{
		"tag_id": tag.ID,
		"name":   tag.Name,
	})
	writeJSON(w, http.StatusCreated, tag)
}

func (a *API) toggleTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	u, err := a.store.ToggleTag(userID, r.PathValue("id"), r.PathValue("tagID"))
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "market.tag.toggle", map[string]any{
		"target_id": u.ID,
		"tag_id":    r.PathValue("tagID"),
	})
	writeJSON(w, http.StatusOK, u)
}
