package entities

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestHashIDShape(t *testing.T) {
	digest := HashID(CapabilityRegister)
	if !strings.HasPrefix(digest, "0x") || len(digest) != 66 {
		t.Fatalf("expected 0x-prefixed 32-byte hex, got %q", digest)
	}
	if digest != HashID(CapabilityRegister) {
		t.Fatalf("hash must be deterministic")
	}
	if digest == HashID("revoke") {
		t.Fatalf("distinct names must hash differently")
	}
}

func TestNormalizeIDPadsShortValues(t *testing.T) {
	normalized := NormalizeID("design")
	if !strings.HasPrefix(normalized, "0x") || len(normalized) != 66 {
		t.Fatalf("expected fixed-width encoding, got %q", normalized)
	}
	if !strings.HasPrefix(normalized, "0x"+hex.EncodeToString([]byte("design"))) {
		t.Fatalf("short values must be right-padded, got %q", normalized)
	}
	if !strings.HasSuffix(normalized, "00") {
		t.Fatalf("padding bytes must be zero, got %q", normalized)
	}
}

func TestNormalizeIDFallsBackToHashForLongValues(t *testing.T) {
	long := strings.Repeat("a", 40)
	if NormalizeID(long) != HashID(long) {
		t.Fatalf("values over 32 bytes must normalize via hash")
	}
}

func TestGlobalScopeIDTracksSystemAddress(t *testing.T) {
	if GlobalScopeID("0xaaaa") != HashID("0xaaaa") {
		t.Fatalf("global scope must be the hash of the system address")
	}
	if GlobalScopeID("0xaaaa") == GlobalScopeID("0xbbbb") {
		t.Fatalf("different systems must own different global scopes")
	}
}
