package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetToken(t *testing.T) {
	gokeyring.MockInit()
	e := Default()

	if err := e.SetToken("  eyJhbGciOi.test.token \n"); err != nil {
		t.Fatalf("SetToken() failed: %v", err)
	}

	got, err := e.Token()
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	if got != "eyJhbGciOi.test.token" {
		t.Errorf("Token() = %q", got)
	}
}

func TestSetTokenEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := Default().SetToken("   "); err == nil {
		t.Error("SetToken(blank) should return an error")
	}
}

func TestTokenNotFound(t *testing.T) {
	gokeyring.MockInit()

	_, err := Default().Token()
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Token() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteToken(t *testing.T) {
	gokeyring.MockInit()
	e := Default()

	if err := e.SetToken("abc"); err != nil {
		t.Fatalf("SetToken() failed: %v", err)
	}
	if err := e.DeleteToken(); err != nil {
		t.Fatalf("DeleteToken() failed: %v", err)
	}
	if _, err := e.Token(); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete Token() error = %v", err)
	}
	if err := e.DeleteToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteToken() error = %v, want ErrNotFound", err)
	}
}

func TestProfilesAreIsolated(t *testing.T) {
	gokeyring.MockInit()

	if err := For("staging").SetToken("staging-token"); err != nil {
		t.Fatal(err)
	}
	if _, err := Default().Token(); !errors.Is(err, ErrNotFound) {
		t.Errorf("default entry saw the profile token: %v", err)
	}
	if For("") != Default() {
		t.Error("empty profile should map to the default entry")
	}
}

func TestResolveToken(t *testing.T) {
	gokeyring.MockInit()
	e := Default()

	if got := ResolveToken("", e); got != "" {
		t.Errorf("ResolveToken() with empty keyring = %q", got)
	}
	if err := e.SetToken("stored"); err != nil {
		t.Fatal(err)
	}
	if got := ResolveToken("", e); got != "stored" {
		t.Errorf("ResolveToken() = %q, want stored", got)
	}
	if got := ResolveToken("from-env", e); got != "from-env" {
		t.Errorf("ResolveToken() = %q, want from-env", got)
	}
}

func TestIsAvailableWithMock(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("mock keyring should be available")
	}
}
