package httpapi

import (
	"net/http"
	"time"

	"assethub.org/internal/audit"
	"assethub.org/internal/auth"
	"assethub.org/internal/market"
	"assethub.org/internal/obs"
)

const sessionTTL = 24 * time.Hour

type otpRequest struct {
	Purpose string `json:"purpose"`
	Email   string `json:"email"`
}

type otpResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
	OTP             string `json:"otp"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      market.User `json:"user"`
}

type resetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type createAdminRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// requestOTP issues a one-time code. There is no mail delivery; the code is
// returned in the response for the client to relay.
func (a *API) requestOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	otp, err := a.store.RequestOTP(market.OTPPurpose(req.Purpose), req.Email)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, otpResponse{Code: otp.Code, ExpiresAt: otp.ExpiresAt})
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	u, err := a.store.Register(market.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            market.Role(req.Role),
		OTP:             req.OTP,
	})
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(u.ID, string(u.Role), sessionTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	obs.CountRegistration()
	_ = audit.LogEvent(r.Context(), "market.account.register", map[string]any{
		"user_id":  u.ID,
		"username": u.Username,
		"role":     string(u.Role),
	})

	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(sessionTTL),
		User:      u,
	})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Identifier == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "identifier and password are required")
		return
	}

	u, err := a.store.Login(req.Identifier, req.Password)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(u.ID, string(u.Role), sessionTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	_ = audit.LogEvent(r.Context(), "market.account.login", map[string]any{
		"user_id": u.ID,
	})

	writeJSON(w, http.StatusOK, sessionResponse{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(sessionTTL),
		User:      u,
	})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	if err := a.store.Logout(userID); err != nil {
		handleMarketError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.store.ResetPassword(req.Email, req.OTP, req.NewPassword); err != nil {
		handleMarketError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "market.account.password_reset", map[string]any{
		"email": req.Email,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.store.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		handleMarketError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	u, err := a.store.UserByID(userID)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	var p market.Profile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	u, err := a.store.UpdateProfile(userID, p)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) mySales(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	sum, err := a.store.CreatorSales(userID)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (a *API) createAdmin(w http.ResponseWriter, r *http.Request) {
	userID, ok := sessionUserID(w, r)
	if !ok {
		return
	}
	var req createAdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	u, err := a.store.CreateAdmin(userID, req.Username, req.Email, req.Password)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "market.admin.create", map[string]any{
		"admin_id": u.ID,
		"username": u.Username,
	})
	writeJSON(w, http.StatusCreated, u)
}
