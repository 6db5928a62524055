// Package system holds the addresses of the native system program and the
// sysvars referenced by wrapper instructions.
package system

import (
	"bytes"
	"crypto/ed25519"
)

// ProgramKey is the system program.
//
// https://explorer.solana.com/address/11111111111111111111111111111111
var ProgramKey = make(ed25519.PublicKey, ed25519.PublicKeySize)

// IsProgram reports whether key is the system program.
func IsProgram(key ed25519.PublicKey) bool {
	return bytes.Equal(key, ProgramKey)
}
