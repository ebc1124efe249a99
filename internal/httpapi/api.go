package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"assethub.org/internal/market"
	"assethub.org/internal/obs"
	"assethub.org/internal/stream"
)

// API is the HTTP presentation layer over the marketplace store.
type API struct {
	mux     *http.ServeMux
	store   *market.Store
	stream  *stream.Stream
	version string

	rateBurst  int
	ratePerSec int
}

func New(store *market.Store, st *stream.Stream, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		store:      store,
		stream:     st,
		version:    version,
		rateBurst:  50,
		ratePerSec: 25,
	}

	// health/ready/info
	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.HandleFunc("GET /v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("GET /metrics", obs.Handler())

	// account and session
	a.mux.HandleFunc("POST /v1/auth/otp", a.requestOTP)
	a.mux.HandleFunc("POST /v1/auth/register", a.register)
	a.mux.HandleFunc("POST /v1/auth/login", a.login)
	a.mux.HandleFunc("POST /v1/auth/logout", a.logout)
	a.mux.HandleFunc("POST /v1/auth/reset", a.resetPassword)
	a.mux.HandleFunc("POST /v1/auth/password", a.changePassword)
	a.mux.HandleFunc("GET /v1/me", a.me)
	a.mux.HandleFunc("PUT /v1/me/profile", a.updateProfile)
	a.mux.HandleFunc("GET /v1/me/sales", a.mySales)
	a.mux.HandleFunc("POST /v1/admins", a.createAdmin)

	// catalog
	a.mux.HandleFunc("GET /v1/categories", a.categories)
	a.mux.HandleFunc("GET /v1/assets", a.listAssets)
	a.mux.HandleFunc("GET /v1/assets/home", a.homeAssets)
	a.mux.HandleFunc("GET /v1/assets/pending", a.pendingAssets)
	a.mux.HandleFunc("GET /v1/assets/{id}", a.getAsset)
	a.mux.HandleFunc("POST /v1/assets", a.uploadAsset)
	a.mux.HandleFunc("DELETE /v1/assets/{id}", a.deleteAsset)
	a.mux.HandleFunc("POST /v1/assets/{id}/moderate", a.moderateAsset)
	a.mux.HandleFunc("POST /v1/assets/{id}/purchase", a.purchaseAsset)
	a.mux.HandleFunc("POST /v1/assets/{id}/download", a.downloadAsset)
	a.mux.HandleFunc("POST /v1/assets/{id}/ratings", a.rateAsset)

	// users and social graph
	a.mux.HandleFunc("GET /v1/users", a.listUsers)
	a.mux.HandleFunc("GET /v1/users/{username}", a.getUser)
	a.mux.HandleFunc("GET /v1/users/{id}/assets", a.userAssets)
	a.mux.HandleFunc("POST /v1/users/{id}/follow", a.follow)
	a.mux.HandleFunc("DELETE /v1/users/{id}/follow", a.unfollow)
	a.mux.HandleFunc("POST /v1/users/{id}/blacklist", a.toggleBlacklist)
	a.mux.HandleFunc("POST /v1/users/{id}/tags/{tagID}", a.toggleTag)
	a.mux.HandleFunc("GET /v1/tags", a.listTags)
	a.mux.HandleFunc("POST /v1/tags", a.createTag)

	// messaging
	a.mux.HandleFunc("GET /v1/messages", a.inbox)
	a.mux.HandleFunc("GET /v1/messages/unread_count", a.unreadCount)
	a.mux.HandleFunc("POST /v1/messages", a.sendMessage)
	a.mux.HandleFunc("POST /v1/messages/{id}/read", a.markRead)

	// channel chat
	a.mux.HandleFunc("GET /v1/chat/channels", a.chatChannels)
	a.mux.HandleFunc("GET /v1/chat/{channel}", a.channelMessages)
	a.mux.HandleFunc("POST /v1/chat/{channel}", a.postChat)

	// support tickets
	a.mux.HandleFunc("GET /v1/tickets", a.myTickets)
	a.mux.HandleFunc("POST /v1/tickets", a.openTicket)
	a.mux.HandleFunc("POST /v1/tickets/{id}/messages", a.postToTicket)
	a.mux.HandleFunc("POST /v1/tickets/{id}/resolve", a.resolveTicket)
	a.mux.HandleFunc("POST /v1/tickets/{id}/close", a.closeTicket)

	// live activity stream
	a.mux.HandleFunc("GET /v1/stream", a.Stream)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// SetRateLimit overrides the per-IP rate limit knobs. Non-positive values
// keep the defaults. Call before Handler.
func (a *API) SetRateLimit(burst, perSecond int) {
	if burst > 0 {
		a.rateBurst = burst
	}
	if perSecond > 0 {
		a.ratePerSec = perSecond
	}
}

// Handler composes the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	h := obs.Instrument(a.mux)
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = LoggingJSON(h)
	h = RequestID(h)
	h = CORS(h)
	h = SecurityHeaders(h)
	return h
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "assethub-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "assethub-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func handleMarketError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, market.ErrNotFound),
		errors.Is(err, market.ErrEmailNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, market.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, market.ErrAccessDenied):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, market.ErrDuplicateUsername),
		errors.Is(err, market.ErrDuplicateEmail),
		errors.Is(err, market.ErrInsufficientBalance),
		errors.Is(err, market.ErrAlreadyModerated),
		errors.Is(err, market.ErrTicketNotOpen):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, market.ErrMissingField),
		errors.Is(err, market.ErrInvalidInput),
		errors.Is(err, market.ErrWeakPassword),
		errors.Is(err, market.ErrPasswordMismatch),
		errors.Is(err, market.ErrInvalidOTP),
		errors.Is(err, market.ErrOTPExpired),
		errors.Is(err, market.ErrUnknownChannel):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
