package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kisanlink/agrimandi/config"
	"github.com/kisanlink/agrimandi/internal/model"
)

// fakeOTPStore is an in-memory OTPStore. TTLs are accepted and ignored;
// expiry is exercised by not seeding a code.
type fakeOTPStore struct {
	values map[string]string
	counts map[string]int64
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{values: map[string]string{}, counts: map[string]int64{}}
}

func (s *fakeOTPStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.values[key] = value
	return nil
}

func (s *fakeOTPStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *fakeOTPStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.values, k)
		delete(s.counts, k)
	}
	return nil
}

func (s *fakeOTPStore) IncrWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.counts[key]++
	return s.counts[key], nil
}

// captureSender records the last code instead of sending it.
type captureSender struct {
	code string
}

func (s *captureSender) SendOTP(_ context.Context, _, code string) error {
	s.code = code
	return nil
}

type fakeUserStore struct{}

func (fakeUserStore) UpsertByPhone(_ context.Context, phone string) (*model.User, error) {
	return &model.User{ID: 7, Phone: phone}, nil
}

func newTestAuthService() (*AuthService, *fakeOTPStore, *captureSender) {
	store := newFakeOTPStore()
	sender := &captureSender{}
	cfg := config.AuthConfig{
		JWTSecret:       "test_secret",
		TokenTTL:        time.Hour,
		OTPTTL:          5 * time.Minute,
		MaxSendPerIP:    5,
		MaxSendPerPhone: 3,
		MaxVerifyTries:  3,
		RateLimitWindow: 15 * time.Minute,
	}
	return NewAuthService(store, fakeUserStore{}, sender, cfg), store, sender
}

func TestGenerateOTP_SixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("GenerateOTP = %q, want 6 digits", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("GenerateOTP = %q, contains non-digit", code)
			}
		}
	}
}

func TestToken_RoundTrip(t *testing.T) {
	token, err := IssueToken(42, "test_secret", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	userID, err := ValidateToken(token, "test_secret")
	if err != nil {
		t.Fatalf("ValidateToken error: %v", err)
	}
	if userID != 42 {
		t.Errorf("ValidateToken user = %d, want 42", userID)
	}
}

func TestToken_WrongSecretRejected(t *testing.T) {
	token, err := IssueToken(42, "test_secret", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	if _, err := ValidateToken(token, "other_secret"); err == nil {
		t.Error("token signed with one secret validated with another")
	}
}

func TestToken_ExpiredRejected(t *testing.T) {
	token, err := IssueToken(42, "test_secret", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	if _, err := ValidateToken(token, "test_secret"); err == nil {
		t.Error("expired token validated")
	}
}

func TestToken_GarbageRejected(t *testing.T) {
	if _, err := ValidateToken("not.a.token", "test_secret"); err == nil {
		t.Error("garbage token validated")
	}
}

func TestOTP_RoundTrip(t *testing.T) {
	svc, _, sender := newTestAuthService()
	ctx := context.Background()

	if err := svc.RequestOTP(ctx, "9876543210", "203.0.113.7"); err != nil {
		t.Fatalf("RequestOTP error: %v", err)
	}
	if len(sender.code) != 6 {
		t.Fatalf("sent code = %q, want 6 digits", sender.code)
	}

	user, token, err := svc.VerifyOTP(ctx, "9876543210", sender.code, "203.0.113.7")
	if err != nil {
		t.Fatalf("VerifyOTP error: %v", err)
	}
	if user.ID != 7 {
		t.Errorf("verified user = %d, want 7", user.ID)
	}

	userID, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken error: %v", err)
	}
	if userID != user.ID {
		t.Errorf("token user = %d, want %d", userID, user.ID)
	}
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	svc, _, sender := newTestAuthService()
	ctx := context.Background()

	if err := svc.RequestOTP(ctx, "9876543210", "203.0.113.7"); err != nil {
		t.Fatalf("RequestOTP error: %v", err)
	}

	wrong := "000000"
	if wrong == sender.code {
		wrong = "000001"
	}
	if _, _, err := svc.VerifyOTP(ctx, "9876543210", wrong, "203.0.113.7"); !errors.Is(err, ErrOTPMismatch) {
		t.Errorf("VerifyOTP error = %v, want ErrOTPMismatch", err)
	}

	// The pending code survives a mismatch.
	if _, _, err := svc.VerifyOTP(ctx, "9876543210", sender.code, "203.0.113.7"); err != nil {
		t.Errorf("VerifyOTP after mismatch error: %v", err)
	}
}

func TestVerifyOTP_NoPendingCode(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, _, err := svc.VerifyOTP(context.Background(), "9876543210", "123456", "203.0.113.7")
	if !errors.Is(err, ErrOTPExpired) {
		t.Errorf("VerifyOTP error = %v, want ErrOTPExpired", err)
	}
}

func TestVerifyOTP_AttemptBudgetBurnsCode(t *testing.T) {
	svc, store, sender := newTestAuthService()
	ctx := context.Background()

	if err := svc.RequestOTP(ctx, "9876543210", "203.0.113.7"); err != nil {
		t.Fatalf("RequestOTP error: %v", err)
	}

	wrong := "000000"
	if wrong == sender.code {
		wrong = "000001"
	}
	for i := 0; i < 3; i++ {
		if _, _, err := svc.VerifyOTP(ctx, "9876543210", wrong, "203.0.113.7"); !errors.Is(err, ErrOTPMismatch) {
			t.Fatalf("attempt %d error = %v, want ErrOTPMismatch", i+1, err)
		}
	}

	// Budget exhausted: even the right code is rejected and the pending
	// code is discarded.
	if _, _, err := svc.VerifyOTP(ctx, "9876543210", sender.code, "203.0.113.7"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("VerifyOTP error = %v, want ErrTooManyAttempts", err)
	}
	if _, ok := store.values["otp:hash:9876543210"]; ok {
		t.Error("pending code survived exhausted attempt budget")
	}
}

func TestVerifyOTP_PerIPBudget(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	// Three failed attempts from one address across distinct phones use up
	// its budget; the fourth is cut off before the code check.
	for i := 0; i < 3; i++ {
		phone := fmt.Sprintf("987654321%d", i)
		if _, _, err := svc.VerifyOTP(ctx, phone, "123456", "203.0.113.7"); !errors.Is(err, ErrOTPExpired) {
			t.Fatalf("attempt %d error = %v, want ErrOTPExpired", i+1, err)
		}
	}

	_, _, err := svc.VerifyOTP(ctx, "9876543219", "123456", "203.0.113.7")
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Errorf("VerifyOTP error = %v, want ErrTooManyAttempts", err)
	}
}

func TestRequestOTP_PerPhoneLimit(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	// Spread over addresses so only the per-phone counter is in play.
	for i := 0; i < 3; i++ {
		ip := fmt.Sprintf("203.0.113.%d", i+1)
		if err := svc.RequestOTP(ctx, "9876543210", ip); err != nil {
			t.Fatalf("request %d error: %v", i+1, err)
		}
	}

	if err := svc.RequestOTP(ctx, "9876543210", "203.0.113.9"); !errors.Is(err, ErrTooManyRequests) {
		t.Errorf("RequestOTP error = %v, want ErrTooManyRequests", err)
	}
}

func TestRequestOTP_PerIPLimit(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	// Spread over phones so only the per-IP counter is in play.
	for i := 0; i < 5; i++ {
		phone := fmt.Sprintf("987654321%d", i)
		if err := svc.RequestOTP(ctx, phone, "203.0.113.7"); err != nil {
			t.Fatalf("request %d error: %v", i+1, err)
		}
	}

	if err := svc.RequestOTP(ctx, "9876543219", "203.0.113.7"); !errors.Is(err, ErrTooManyRequests) {
		t.Errorf("RequestOTP error = %v, want ErrTooManyRequests", err)
	}
}
