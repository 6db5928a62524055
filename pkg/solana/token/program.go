package token

import (
	"bytes"
	"crypto/ed25519"
)

// ProgramKey is the address of the SPL token program.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

// IsProgram reports whether key is the SPL token program.
func IsProgram(key ed25519.PublicKey) bool {
	return bytes.Equal(key, ProgramKey)
}
