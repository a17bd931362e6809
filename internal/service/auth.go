package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kisanlink/agrimandi/config"
	"github.com/kisanlink/agrimandi/internal/model"
)

// ─── Errors ─────────────────────────────────────────────────

var (
	ErrTooManyRequests = errors.New("too many OTP requests from this client")
	ErrTooManyAttempts = errors.New("too many failed verification attempts")
	ErrOTPExpired      = errors.New("no OTP pending for this phone, or it expired")
	ErrOTPMismatch     = errors.New("OTP does not match")
	ErrInvalidToken    = errors.New("invalid or expired token")
)

// ─── Collaborator contracts ─────────────────────────────────

// Sender delivers an OTP code to a phone number. The default implementation
// logs the code; a real SMS gateway is a drop-in replacement.
type Sender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// LogSender writes OTP codes to the process log instead of sending SMS.
// Used in development and in environments without an SMS provider.
type LogSender struct{}

func (LogSender) SendOTP(_ context.Context, phone, code string) error {
	log.Printf("[auth] OTP for %s: %s", phone, code)
	return nil
}

// UserStore is the account lookup the auth flow needs.
// Implemented by repository.UserRepository.
type UserStore interface {
	UpsertByPhone(ctx context.Context, phone string) (*model.User, error)
}

// OTPStore holds the transient login state: pending code hashes and the
// windowed send/verify counters. Implemented by repository.OTPRepository.
type OTPStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, keys ...string) error
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ─── Store keys ─────────────────────────────────────────────

const (
	otpHashKeyPrefix  = "otp:hash:"  // bcrypt hash of the pending code, TTL = OTP lifetime
	otpTriesKeyPrefix = "otp:tries:" // failed verify attempts per phone
	otpSendIPPrefix   = "otp:send:ip:"
	otpSendPhonePref  = "otp:send:phone:"
	otpVerifyIPPrefix = "otp:verify:ip:"
)

// ─── AuthService ────────────────────────────────────────────

// AuthService implements phone-number login: request an OTP, verify it,
// receive a JWT. Brute force is contained two ways:
//
//   - request side: per-IP and per-phone send counters over a sliding
//     window, so one client can't flood the SMS gateway;
//   - verify side: a bounded number of attempts per pending code and a
//     per-IP attempt counter, after which the code is discarded.
//
// Codes are never stored in plaintext — only a bcrypt hash with the OTP's
// TTL lives in the store.
type AuthService struct {
	store  OTPStore
	users  UserStore
	sender Sender
	cfg    config.AuthConfig
}

// NewAuthService creates an auth service.
func NewAuthService(store OTPStore, users UserStore, sender Sender, cfg config.AuthConfig) *AuthService {
	return &AuthService{store: store, users: users, sender: sender, cfg: cfg}
}

// RequestOTP generates and delivers a fresh OTP for the phone number.
// Returns ErrTooManyRequests when the client or the number is over the
// send limit for the current window.
func (s *AuthService) RequestOTP(ctx context.Context, phone, clientIP string) error {
	// ── Rate limits ─────────────────────────────────────
	if err := s.bumpCounter(ctx, otpSendIPPrefix+clientIP, s.cfg.MaxSendPerIP, s.cfg.RateLimitWindow); err != nil {
		log.Printf("[auth] send limit hit for ip=%s", clientIP)
		return err
	}
	if err := s.bumpCounter(ctx, otpSendPhonePref+phone, s.cfg.MaxSendPerPhone, s.cfg.RateLimitWindow); err != nil {
		log.Printf("[auth] send limit hit for phone=%s", phone)
		return err
	}

	// ── Generate & store ────────────────────────────────
	code, err := GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}

	if err := s.store.Set(ctx, otpHashKeyPrefix+phone, string(hash), s.cfg.OTPTTL); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	// Fresh code, fresh attempt budget.
	_ = s.store.Del(ctx, otpTriesKeyPrefix+phone)

	return s.sender.SendOTP(ctx, phone, code)
}

// VerifyOTP checks the submitted code. On success it discards the pending
// code, upserts the user account, and returns the user with a signed JWT.
// Attempts are bounded per phone and per client IP; the IP counter is
// cleared on success so shared addresses recover.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code, clientIP string) (*model.User, string, error) {
	// ── Attempt budgets ─────────────────────────────────
	tries, err := s.store.IncrWindow(ctx, otpTriesKeyPrefix+phone, s.cfg.OTPTTL)
	if err != nil {
		return nil, "", fmt.Errorf("count otp attempt: %w", err)
	}
	if int(tries) > s.cfg.MaxVerifyTries {
		// Burn the pending code; the caller must request a new one.
		_ = s.store.Del(ctx, otpHashKeyPrefix+phone)
		return nil, "", ErrTooManyAttempts
	}

	ipTries, err := s.store.IncrWindow(ctx, otpVerifyIPPrefix+clientIP, s.cfg.RateLimitWindow)
	if err != nil {
		return nil, "", fmt.Errorf("count verify attempt: %w", err)
	}
	if int(ipTries) > s.cfg.MaxVerifyTries {
		log.Printf("[auth] verify limit hit for ip=%s", clientIP)
		return nil, "", ErrTooManyAttempts
	}

	// ── Compare ─────────────────────────────────────────
	hash, ok, err := s.store.Get(ctx, otpHashKeyPrefix+phone)
	if err != nil {
		return nil, "", fmt.Errorf("load otp: %w", err)
	}
	if !ok {
		return nil, "", ErrOTPExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return nil, "", ErrOTPMismatch
	}

	_ = s.store.Del(ctx, otpHashKeyPrefix+phone, otpTriesKeyPrefix+phone, otpVerifyIPPrefix+clientIP)

	// ── Account + token ─────────────────────────────────
	user, err := s.users.UpsertByPhone(ctx, phone)
	if err != nil {
		return nil, "", err
	}

	token, err := IssueToken(user.ID, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}

	log.Printf("[auth] verified %s → user #%d", phone, user.ID)
	return user, token, nil
}

// bumpCounter increments a windowed counter and returns ErrTooManyRequests
// once it passes the limit.
func (s *AuthService) bumpCounter(ctx context.Context, key string, limit int, window time.Duration) error {
	n, err := s.store.IncrWindow(ctx, key, window)
	if err != nil {
		return fmt.Errorf("bump counter %s: %w", key, err)
	}
	if int(n) > limit {
		return ErrTooManyRequests
	}
	return nil
}

// ─── OTP + JWT primitives ───────────────────────────────────

// GenerateOTP returns a 6-digit code from crypto/rand, zero-padded.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// IssueToken signs an HS256 JWT for the user.
func IssueToken(userID int64, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"jti": uuid.NewString(),
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and verifies a JWT, returning the user ID.
func ValidateToken(tokenString, secret string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// ValidateToken on the service uses its configured secret; handlers and
// middleware go through this method rather than the bare function.
func (s *AuthService) ValidateToken(tokenString string) (int64, error) {
	return ValidateToken(tokenString, s.cfg.JWTSecret)
}
