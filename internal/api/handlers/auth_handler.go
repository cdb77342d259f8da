package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aboutme-website/aboutme-be/internal/auth"
	"github.com/aboutme-website/aboutme-be/internal/notify"
	"github.com/aboutme-website/aboutme-be/internal/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles HTTP requests for phone registration and verification.
type AuthHandler struct {
	authService services.AuthServiceProvider
	notifier    notify.Notifier
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.AuthServiceProvider, notifier notify.Notifier) *AuthHandler {
	return &AuthHandler{authService: authService, notifier: notifier}
}

// PhonePayload defines the structure for registration and login requests.
type PhonePayload struct {
	Phone string `json:"phone"`
}

// VerifyPayload defines the structure for verification requests.
type VerifyPayload struct {
	Phone    string `json:"phone"`
	AuthCode string `json:"authCode"`
}

// RegisterPhone starts verification for a new phone number.
func (h *AuthHandler) RegisterPhone(w http.ResponseWriter, r *http.Request) {
	var payload PhonePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	phone := strings.TrimSpace(payload.Phone)
	if !services.IsValidPhone(phone) {
		http.Error(w, "Phone number is not valid", http.StatusBadRequest)
		return
	}

	verified, err := h.authService.IsPhoneVerified(phone)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check phone verification state")
		http.Error(w, "Failed to register phone", http.StatusInternalServerError)
		return
	}
	if verified {
		http.Error(w, "A user exists with this phone number. Please use a different phone number", http.StatusConflict)
		return
	}

	code, err := h.authService.IssueCode(phone)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue verification code")
		http.Error(w, "Failed to register phone", http.StatusInternalServerError)
		return
	}

	if err := h.notifier.SendAuthCode(phone, code); err != nil {
		log.Error().Err(err).Msg("Failed to send verification SMS")
		http.Error(w, "Failed to send verification code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"phone":  phone,
		"status": "Pending Verification",
	})
}

// VerifyPhone checks a submitted code and issues an access token.
func (h *AuthHandler) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	var payload VerifyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	phone := strings.TrimSpace(payload.Phone)
	record, err := h.authService.VerifyCode(phone, payload.AuthCode)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCode) {
			http.Error(w, "The code entered is invalid. Please try again", http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Msg("Failed to verify code")
		http.Error(w, "Failed to verify phone", http.StatusInternalServerError)
		return
	}

	// A user id already present means the user is registered and logging in;
	// otherwise this is a first verification.
	userID := record.UserID
	if userID == "" {
		userID = uuid.New().String()
	}

	if err := h.authService.MarkVerified(phone, userID); err != nil {
		log.Error().Err(err).Msg("Failed to mark phone verified")
		http.Error(w, "Failed to verify phone", http.StatusInternalServerError)
		return
	}

	token, err := auth.GenerateJWT(userID, phone)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to generate JWT")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"phone":       phone,
		"status":      "Verification Successful",
		"userId":      userID,
		"accessToken": token,
	})
}

// Login re-issues a verification code for an already-verified phone.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload PhonePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	phone := strings.TrimSpace(payload.Phone)
	verified, err := h.authService.IsPhoneVerified(phone)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check phone verification state")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}
	if !verified {
		http.Error(w, "This phone number needs to be registered and verified before login", http.StatusForbidden)
		return
	}

	code, err := h.authService.IssueCode(phone)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue login code")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	if err := h.notifier.SendAuthCode(phone, code); err != nil {
		log.Error().Err(err).Msg("Failed to send login SMS")
		http.Error(w, "Failed to send verification code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"phone":   phone,
		"message": "Verification Code Sent",
	})
}
