package entities

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// CapabilityRegister is the logical name of the capability the external
// ledger must grant this system before polls can be activated.
const CapabilityRegister = "register"

// HashID returns the 0x-prefixed keccak-256 digest of a logical identifier.
// Namespace hashes, capability hashes and the global scope id all derive from
// it.
func HashID(value string) string {
	digest := sha3.NewLegacyKeccak256()
	digest.Write([]byte(value))
	return "0x" + hex.EncodeToString(digest.Sum(nil))
}

// NormalizeID maps an identifier-like value to a fixed-width 32-byte hex
// encoding for audit payloads. Short values are right-padded, anything longer
// falls back to the keccak digest.
func NormalizeID(value string) string {
	raw := []byte(value)
	if len(raw) > 32 {
		return HashID(value)
	}
	var fixed [32]byte
	copy(fixed[:], raw)
	return "0x" + hex.EncodeToString(fixed[:])
}

// GlobalScopeID derives the fixed global reputation scope from the system's
// own identity.
func GlobalScopeID(systemAddress string) string {
	return HashID(systemAddress)
}
