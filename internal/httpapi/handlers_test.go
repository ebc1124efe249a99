package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"assethub.org/internal/auth"
	"assethub.org/internal/market"
	"assethub.org/internal/stream"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	t.Setenv("ASSETHUB_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()

	store := market.NewStore()
	store.Seed()
	api := New(store, stream.New(), "test")
	api.rateBurst = 1000
	api.ratePerSec = 1000

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("get request: %v", err)
	}
	return resp
}

// registerUser walks the otp+register flow and returns the session.
func (c *apiClient) registerUser(username, email, role string) sessionResponse {
	c.t.Helper()
	resp := c.post("/v1/auth/otp", map[string]any{
		"purpose": "register",
		"email":   email,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected otp status: %d", resp.StatusCode)
	}
	otp := decode[otpResponse](c.t, resp)

	resp = c.post("/v1/auth/register", map[string]any{
		"username":         username,
		"email":            email,
		"password":         "pw123456",
		"confirm_password": "pw123456",
		"role":             role,
		"otp":              otp.Code,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("unexpected register status: %d", resp.StatusCode)
	}
	session := decode[sessionResponse](c.t, resp)
	if session.Token == "" {
		c.t.Fatalf("empty session token")
	}
	return session
}

func (c *apiClient) loginOwner() sessionResponse {
	c.t.Helper()
	resp := c.post("/v1/auth/login", map[string]any{
		"identifier": "hubowner",
		"password":   "hubowner_zxasqw_12345",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected owner login status: %d", resp.StatusCode)
	}
	return decode[sessionResponse](c.t, resp)
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestAPIMarketplaceFlow(t *testing.T) {
	api := newTestAPI(t)

	alice := api.registerUser("alice", "alice@x.com", "creator")
	owner := api.loginOwner()

	// Upload lands in the moderation queue.
	resp := api.post("/v1/assets", map[string]any{
		"title":       "Sword",
		"description": "sharp",
		"category":    "Weapons",
		"price":       100,
	}, bearerHeader(alice.Token))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected upload status: %d", resp.StatusCode)
	}
	if resp.Header.Get("Location") == "" {
		t.Fatalf("missing Location header on upload")
	}
	sword := decode[market.Asset](t, resp)
	if sword.Status != market.StatusPending {
		t.Fatalf("expected pending status, got %s", sword.Status)
	}

	// Not in the public catalog yet.
	resp = api.get("/v1/assets", url.Values{"query": []string{"Sword"}}, nil)
	listed := decode[assetListResponse](t, resp)
	for _, a := range listed.Items {
		if a.ID == sword.ID {
			t.Fatalf("pending asset leaked into catalog")
		}
	}

	// Visible in the owner's pending queue.
	resp = api.get("/v1/assets/pending", nil, bearerHeader(owner.Token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected pending status: %d", resp.StatusCode)
	}
	pending := decode[assetListResponse](t, resp)
	found := false
	for _, a := range pending.Items {
		if a.ID == sword.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("upload missing from pending queue")
	}

	// Approve.
	resp = api.post("/v1/assets/"+sword.ID+"/moderate", map[string]any{
		"approve": true,
	}, bearerHeader(owner.Token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected moderate status: %d", resp.StatusCode)
	}
	approved := decode[market.Asset](t, resp)
	if approved.Status != market.StatusApproved {
		t.Fatalf("expected approved status, got %s", approved.Status)
	}

	// Owner buys it: 100 debited, 90 credited to alice.
	resp = api.post("/v1/assets/"+sword.ID+"/purchase", nil, bearerHeader(owner.Token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected purchase status: %d", resp.StatusCode)
	}
	buyer := decode[market.User](t, resp)
	if buyer.Balance != 999999-100 {
		t.Fatalf("unexpected buyer balance: %d", buyer.Balance)
	}

	resp = api.get("/v1/users/alice", nil, nil)
	creator := decode[market.User](t, resp)
	if creator.Balance != 90 {
		t.Fatalf("unexpected creator balance: %d", creator.Balance)
	}

	// Download bumps the counter.
	resp = api.post("/v1/assets/"+sword.ID+"/download", nil, bearerHeader(owner.Token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected download status: %d", resp.StatusCode)
	}
	downloaded := decode[market.Asset](t, resp)
	if downloaded.DownloadCount != 1 {
		t.Fatalf("unexpected download count: %d", downloaded.DownloadCount)
	}
}

func TestAPIRepeatPurchaseRecordsSingleEvent(t *testing.T) {
	t.Setenv("ASSETHUB_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()

	store := market.NewStore()
	store.Seed()
	st := stream.New()
	api := New(store, st, "test")
	api.rateBurst = 1000
	api.ratePerSec = 1000

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	c := &apiClient{baseURL: srv.URL, client: srv.Client(), t: t}

	owner := c.loginOwner()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := st.Subscribe(ctx)

	resp := c.get("/v1/assets", url.Values{"price": []string{"paid"}}, nil)
	paid := decode[assetListResponse](t, resp)
	if len(paid.Items) == 0 {
		t.Fatal("expected seeded paid assets")
	}
	assetID := paid.Items[0].ID

	// Both calls succeed; only the first moves balance.
	for i := 0; i < 2; i++ {
		resp := c.post("/v1/assets/"+assetID+"/purchase", nil, bearerHeader(owner.Token))
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("purchase %d: unexpected status %d", i+1, resp.StatusCode)
		}
	}

	purchases := 0
	for {
		select {
		case evt := <-events:
			if evt.Kind == stream.KindPurchase {
				purchases++
			}
		case <-time.After(200 * time.Millisecond):
			if purchases != 1 {
				t.Fatalf("expected one purchase event for one effective purchase, got %d", purchases)
			}
			return
		}
	}
}

func TestAPIPurchaseInsufficientBalance(t *testing.T) {
	api := newTestAPI(t)
	bob := api.registerUser("bob", "bob@x.com", "user")

	// Seeded paid asset, bob has balance 0.
	resp := api.get("/v1/assets", url.Values{"price": []string{"paid"}}, nil)
	paid := decode[assetListResponse](t, resp)
	if len(paid.Items) == 0 {
		t.Fatal("expected seeded paid assets")
	}

	resp = api.post("/v1/assets/"+paid.Items[0].ID+"/purchase", nil, bearerHeader(bob.Token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestAPIEnforcesAuth(t *testing.T) {
	api := newTestAPI(t)

	// Catalog reads are public.
	resp := api.get("/v1/assets", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected public catalog, got %d", resp.StatusCode)
	}

	// Writes are not.
	resp = api.post("/v1/assets", map[string]any{
		"title":       "x",
		"description": "y",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	var errBody map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody["error"] == "" {
		t.Fatalf("expected error message")
	}
}

func TestAPIPendingQueueRestricted(t *testing.T) {
	api := newTestAPI(t)
	bob := api.registerUser("bob", "bob@x.com", "user")

	resp := api.get("/v1/assets/pending", nil, bearerHeader(bob.Token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	resp = api.get("/v1/assets/pending", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAPIRegisterValidation(t *testing.T) {
	api := newTestAPI(t)
	api.registerUser("alice", "alice@x.com", "user")

	resp := api.post("/v1/auth/otp", map[string]any{
		"purpose": "register",
		"email":   "other@x.com",
	}, nil)
	otp := decode[otpResponse](api.t, resp)

	// Duplicate username.
	resp = api.post("/v1/auth/register", map[string]any{
		"username":         "alice",
		"email":            "other@x.com",
		"password":         "pw123456",
		"confirm_password": "pw123456",
		"otp":              otp.Code,
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	// Wrong code.
	resp = api.post("/v1/auth/register", map[string]any{
		"username":         "carol",
		"email":            "other@x.com",
		"password":         "pw123456",
		"confirm_password": "pw123456",
		"otp":              "000000",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAPIChatAndMessages(t *testing.T) {
	api := newTestAPI(t)
	alice := api.registerUser("alice", "alice@x.com", "user")
	bob := api.registerUser("bob", "bob@x.com", "user")

	// Channel chat.
	resp := api.post("/v1/chat/general", map[string]any{
		"content": "hello all",
	}, bearerHeader(alice.Token))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected chat status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.get("/v1/chat/general", nil, nil)
	log := decode[map[string][]market.ChatMessage](t, resp)
	if len(log["items"]) != 1 || log["items"][0].Content != "hello all" {
		t.Fatalf("unexpected channel log: %+v", log)
	}

	resp = api.get("/v1/chat/nope", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown channel, got %d", resp.StatusCode)
	}

	// Direct message and unread count.
	resp = api.post("/v1/messages", map[string]any{
		"to_id":   bob.User.ID,
		"content": "hi bob",
	}, bearerHeader(alice.Token))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected message status: %d", resp.StatusCode)
	}
	msg := decode[market.Message](t, resp)

	resp = api.get("/v1/messages/unread_count", nil, bearerHeader(bob.Token))
	count := decode[map[string]int](t, resp)
	if count["unread"] != 1 {
		t.Fatalf("unexpected unread count: %d", count["unread"])
	}

	resp = api.post("/v1/messages/"+msg.ID+"/read", nil, bearerHeader(bob.Token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected mark read status: %d", resp.StatusCode)
	}

	resp = api.get("/v1/messages/unread_count", nil, bearerHeader(bob.Token))
	count = decode[map[string]int](t, resp)
	if count["unread"] != 0 {
		t.Fatalf("unread count not cleared: %d", count["unread"])
	}
}
