package solana

import (
	"bytes"
	"crypto/ed25519"
	"errors"
)

var ErrIncorrectInstruction = errors.New("incorrect instruction")

// AccountMeta is an account referenced by an instruction along with the
// permissions the instruction needs on it.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	payer   bool
	program bool
}

// NewAccountMeta returns a writable AccountMeta.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner, IsWritable: true}
}

// NewReadonlyAccountMeta returns a readonly AccountMeta.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner}
}

// before orders the static account keys of a legacy message: fee payer, then
// signers, then writable accounts, with invoked programs last. Ties are broken
// by key so compilation is deterministic.
//
// Reference: https://docs.solana.com/developing/programming-model/transactions#account-addresses-format
func (a AccountMeta) before(b AccountMeta) bool {
	switch {
	case a.payer != b.payer:
		return a.payer
	case a.program != b.program:
		return b.program
	case a.IsSigner != b.IsSigner:
		return a.IsSigner
	case a.IsWritable != b.IsWritable:
		return a.IsWritable
	}
	return bytes.Compare(a.PublicKey, b.PublicKey) < 0
}

// Instruction is a single program invocation within a transaction.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// CompiledInstruction is an Instruction whose program and accounts have been
// replaced by indexes into the message account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}
