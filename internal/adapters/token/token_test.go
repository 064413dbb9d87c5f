package token

import (
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)
	now := time.Now()

	raw, err := s.Issue(PurposeConfirmEmail, "acct-1", now)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	subject, err := s.Verify(raw, PurposeConfirmEmail)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "acct-1" {
		t.Errorf("subject = %q, want acct-1", subject)
	}
}

func TestSigner_WrongPurpose(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)

	raw, err := s.Issue(PurposeConfirmEmail, "acct-1", time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := s.Verify(raw, PurposeWithdraw); err != ErrWrongPurpose {
		t.Errorf("Verify with wrong purpose = %v, want ErrWrongPurpose", err)
	}
}

func TestSigner_Expired(t *testing.T) {
	s := NewSigner(testSecret, time.Minute)

	raw, err := s.Issue(PurposeWithdraw, "vol-1", time.Now().Add(-2*time.Minute))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := s.Verify(raw, PurposeWithdraw); err != ErrInvalidToken {
		t.Errorf("Verify of expired token = %v, want ErrInvalidToken", err)
	}
}

func TestSigner_WrongKey(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)
	other := NewSigner([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)

	raw, err := s.Issue(PurposeConfirmEmail, "acct-1", time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := other.Verify(raw, PurposeConfirmEmail); err != ErrInvalidToken {
		t.Errorf("Verify with wrong key = %v, want ErrInvalidToken", err)
	}
}

func TestSigner_Garbage(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)
	if _, err := s.Verify("not-a-token", PurposeConfirmEmail); err != ErrInvalidToken {
		t.Errorf("Verify of garbage = %v, want ErrInvalidToken", err)
	}
}
