package authhandler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ozziework/internal/domain/auth"
	"ozziework/internal/domain/identity"
	"ozziework/internal/transport/http/api"
	"ozziework/internal/transport/http/middleware"
	"ozziework/internal/transport/http/shared"
)

type Handler struct {
	Auth     *auth.Service
	Identity *identity.Service
	Secret   string
}

func NewHandler(authSvc *auth.Service, identitySvc *identity.Service, secret string) *Handler {
	return &Handler{Auth: authSvc, Identity: identitySvc, Secret: secret}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CompanyName string `json:"companyName"`
	ABN         string `json:"abn"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type profileRequest struct {
	Street            string `json:"street"`
	City              string `json:"city"`
	State             string `json:"state"`
	Postcode          string `json:"postcode"`
	TFN               string `json:"tfn"`
	BankName          string `json:"bankName"`
	BankBSB           string `json:"bankBsb"`
	BankAccountNumber string `json:"bankAccountNumber"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	v.Required("firstName", payload.FirstName, "firstName is required")
	if len(payload.Password) > 0 && len(payload.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	role := strings.ToLower(strings.TrimSpace(payload.Role))
	if role != auth.RoleEmployer && role != auth.RoleTraveller {
		v.Add("role", "must be employer or traveller")
	}
	if role == auth.RoleEmployer {
		v.Required("companyName", payload.CompanyName, "companyName is required for employers")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to register", middleware.GetRequestID(r.Context()))
		return
	}
	userID, err := h.Auth.CreateUser(r.Context(), auth.NewUser{
		Email:        strings.ToLower(strings.TrimSpace(payload.Email)),
		PasswordHash: hash,
		Role:         role,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		CompanyName:  payload.CompanyName,
		ABN:          payload.ABN,
	})
	if err != nil {
		api.Fail(w, http.StatusConflict, "registration_failed", "email already registered", middleware.GetRequestID(r.Context()))
		return
	}

	api.Created(w, map[string]string{"id": userID, "email": payload.Email, "role": role}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	user, err := h.Auth.FindUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(user.Password, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	tokens, err := h.issueTokens(r, user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Auth.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	api.Success(w, map[string]any{
		"accessToken":  tokens.access,
		"refreshToken": tokens.refresh,
		"user":         map[string]string{"id": user.ID, "email": user.Email, "role": user.Role},
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.RefreshToken) == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "refreshToken is required", middleware.GetRequestID(r.Context()))
		return
	}

	oldHash := auth.HashToken(payload.RefreshToken)
	user, err := h.Auth.UserBySessionToken(r.Context(), oldHash)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "session expired", middleware.GetRequestID(r.Context()))
		return
	}

	refreshToken, err := generateToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to rotate session", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Auth.RotateSession(r.Context(), oldHash, auth.HashToken(refreshToken), time.Now().Add(auth.RefreshTokenTTL)); err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "session expired", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to rotate session", middleware.GetRequestID(r.Context()))
		return
	}

	access, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: user.ID, Role: user.Role}, auth.AccessTokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"accessToken": access, "refreshToken": refreshToken}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err == nil && payload.RefreshToken != "" {
		if err := h.Auth.RevokeSession(r.Context(), user.UserID, auth.HashToken(payload.RefreshToken)); err != nil {
			slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	party, err := h.Identity.PartyByUserID(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "account not found", middleware.GetRequestID(r.Context()))
		return
	}

	out := map[string]any{
		"id":        party.UserID,
		"email":     party.Email,
		"role":      party.Role,
		"firstName": party.FirstName,
		"lastName":  party.LastName,
		"address":   party.PostalAddress(),
		"bank": map[string]string{
			"bankName":      party.Bank.BankName,
			"bsb":           party.Bank.BSB,
			"accountNumber": party.Bank.AccountNumber,
		},
	}
	if party.Role == auth.RoleEmployer {
		if employer, err := h.Identity.EmployerByUserID(r.Context(), user.UserID); err == nil {
			out["employer"] = map[string]any{
				"id":          employer.ID,
				"companyName": employer.CompanyName,
				"abn":         employer.ABN,
				"isSuspended": employer.IsSuspended,
			}
		}
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload profileRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	account := identity.BankAccount{
		BankName:      strings.TrimSpace(payload.BankName),
		BSB:           identity.NormalizeBSB(payload.BankBSB),
		AccountNumber: identity.NormalizeAccountNumber(payload.BankAccountNumber),
	}
	if account.BankName != "" || account.BSB != "" || account.AccountNumber != "" {
		if err := identity.ValidateBankAccount("account", account); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_bank_details", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
	}

	err := h.Identity.UpdateProfile(r.Context(), user.UserID, identity.ProfileUpdate{
		Street:   payload.Street,
		City:     payload.City,
		State:    payload.State,
		Postcode: payload.Postcode,
		TFN:      payload.TFN,
		Bank:     account,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update profile", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) issueTokens(r *http.Request, user auth.AuthUser) (tokenPair, error) {
	refreshToken, err := generateToken()
	if err != nil {
		return tokenPair{}, err
	}
	if err := h.Auth.CreateSession(r.Context(), user.ID, auth.HashToken(refreshToken), time.Now().Add(auth.RefreshTokenTTL)); err != nil {
		return tokenPair{}, err
	}
	access, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: user.ID, Role: user.Role}, auth.AccessTokenTTL)
	if err != nil {
		return tokenPair{}, err
	}
	return tokenPair{access: access, refresh: refreshToken}, nil
}

type tokenPair struct {
	access  string
	refresh string
}

func generateToken() (string, error) {
	buff := make([]byte, 32)
	if _, err := rand.Read(buff); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buff), nil
}
