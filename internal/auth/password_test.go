package auth

import (
	"errors"
	"strings"
	"testing"
)

func newTestPasswordService() *PasswordService {
	return NewPasswordService(TestCost)
}

func TestNewPasswordService_InvalidCostFallsBack(t *testing.T) {
	for _, cost := range []int{0, 1, 99} {
		ps := NewPasswordService(cost)
		if ps.cost != DefaultCost {
			t.Errorf("NewPasswordService(%d).cost = %d, want %d", cost, ps.cost, DefaultCost)
		}
	}
}

func TestHash_LooksLikeBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("foo")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_Salted(t *testing.T) {
	ps := newTestPasswordService()

	a, _ := ps.Hash("foo")
	b, _ := ps.Hash("foo")
	if a == b {
		t.Error("Hash() produced identical hashes for the same password")
	}
}

func TestHash_LengthLimit(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", maxPasswordBytes)); err != nil {
		t.Errorf("Hash() should accept %d bytes, got %v", maxPasswordBytes, err)
	}
	if _, err := ps.Hash(strings.Repeat("a", maxPasswordBytes+1)); err == nil {
		t.Errorf("Hash() should reject %d bytes", maxPasswordBytes+1)
	}
}

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, err := ps.Hash("foo")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name         string
		hash         string
		password     string
		wantErr      bool
		wantMismatch bool
	}{
		{"correct password", hash, "foo", false, false},
		{"wrong password", hash, "bar", true, true},
		{"empty password", hash, "", true, true},
		{"garbage hash", "not-a-bcrypt-hash", "foo", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ps.Verify(tt.hash, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := errors.Is(err, ErrPasswordMismatch); got != tt.wantMismatch {
				t.Errorf("errors.Is(err, ErrPasswordMismatch) = %v, want %v", got, tt.wantMismatch)
			}
		})
	}
}
