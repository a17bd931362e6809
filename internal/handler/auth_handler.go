package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"

	"github.com/kisanlink/agrimandi/internal/service"
)

// Indian mobile numbers: optional +91, then 10 digits starting 6-9.
var phonePattern = regexp.MustCompile(`^(\+91)?[6-9]\d{9}$`)

// RequestOTPBody is the JSON body for POST /api/v1/auth/otp/request.
type RequestOTPBody struct {
	Phone string `json:"phone"`
}

// VerifyOTPBody is the JSON body for POST /api/v1/auth/otp/verify.
type VerifyOTPBody struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// AuthHandler handles OTP login HTTP requests.
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// RequestOTP handles POST /api/v1/auth/otp/request
//
// Response codes:
//
//	200 — OTP sent
//	400 — Invalid phone number
//	429 — Too many requests from this client or for this number
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var body RequestOTPBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON body",
		})
		return
	}

	if !phonePattern.MatchString(body.Phone) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "phone must be a valid Indian mobile number",
		})
		return
	}

	err := h.authSvc.RequestOTP(r.Context(), body.Phone, clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyRequests):
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":   "rate_limited",
				"message": "Too many OTP requests. Try again later.",
			})
		default:
			log.Printf("[handler] request otp error: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "internal_error",
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "sent",
		"message": "OTP sent. It expires in 5 minutes.",
	})
}

// VerifyOTP handles POST /api/v1/auth/otp/verify
//
// Response codes:
//
//	200 — Verified; returns the user and a bearer token
//	400 — Invalid body
//	401 — Wrong code
//	410 — No pending OTP (expired or never requested)
//	429 — Attempt budget exhausted; request a new OTP
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body VerifyOTPBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON body",
		})
		return
	}

	if !phonePattern.MatchString(body.Phone) || body.OTP == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "phone and otp are required",
		})
		return
	}

	user, token, err := h.authSvc.VerifyOTP(r.Context(), body.Phone, body.OTP, clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPMismatch):
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":   "otp_mismatch",
				"message": "The code does not match.",
			})
		case errors.Is(err, service.ErrOTPExpired):
			writeJSON(w, http.StatusGone, map[string]string{
				"error":   "otp_expired",
				"message": "No pending OTP for this number. Request a new one.",
			})
		case errors.Is(err, service.ErrTooManyAttempts):
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":   "too_many_attempts",
				"message": "Too many failed attempts. Request a new OTP.",
			})
		default:
			log.Printf("[handler] verify otp error: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "internal_error",
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}
