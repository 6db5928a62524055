package token

import (
	"crypto/ed25519"
	"encoding/binary"
)

type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L125
const AccountSize = 165

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L38
const MintSize = 82

// COption<T> is encoded with a 4 byte tag.
const optionSize = 4

type Account struct {
	// The mint associated with this account
	Mint ed25519.PublicKey
	// The owner of this account.
	Owner ed25519.PublicKey
	// The amount of tokens this account holds.
	Amount uint64
	// If set, then the 'DelegatedAmount' represents the amount
	// authorized by the delegate.
	Delegate ed25519.PublicKey
	State    AccountState
	// Set for wrapped SOL accounts, holding the rent-exempt reserve.
	IsNative        *uint64
	DelegatedAmount uint64
	// Optional authority to close the account.
	CloseAuthority ed25519.PublicKey
}

func (a *Account) Marshal() []byte {
	w := &writer{b: make([]byte, AccountSize)}

	w.key(a.Mint)
	w.key(a.Owner)
	w.uint64(a.Amount)
	w.optionalKey(a.Delegate)
	w.byte(byte(a.State))
	w.optionalUint64(a.IsNative)
	w.uint64(a.DelegatedAmount)
	w.optionalKey(a.CloseAuthority)

	return w.b
}

func (a *Account) Unmarshal(b []byte) bool {
	if len(b) != AccountSize {
		return false
	}

	r := &reader{b: b}
	a.Mint = r.key()
	a.Owner = r.key()
	a.Amount = r.uint64()
	a.Delegate = r.optionalKey()
	a.State = AccountState(r.byte())
	a.IsNative = r.optionalUint64()
	a.DelegatedAmount = r.uint64()
	a.CloseAuthority = r.optionalKey()

	return true
}

// Mint is the state of an SPL token mint.
type Mint struct {
	// Optional authority used to mint new tokens.
	MintAuthority ed25519.PublicKey
	Supply        uint64
	Decimals      uint8
	IsInitialized bool
	// Optional authority to freeze token accounts.
	FreezeAuthority ed25519.PublicKey
}

func (m *Mint) Marshal() []byte {
	w := &writer{b: make([]byte, MintSize)}

	w.optionalKey(m.MintAuthority)
	w.uint64(m.Supply)
	w.byte(m.Decimals)
	if m.IsInitialized {
		w.byte(1)
	} else {
		w.byte(0)
	}
	w.optionalKey(m.FreezeAuthority)

	return w.b
}

func (m *Mint) Unmarshal(b []byte) bool {
	if len(b) != MintSize {
		return false
	}

	r := &reader{b: b}
	m.MintAuthority = r.optionalKey()
	m.Supply = r.uint64()
	m.Decimals = r.byte()
	m.IsInitialized = r.byte() == 1
	m.FreezeAuthority = r.optionalKey()

	return true
}

type writer struct {
	b      []byte
	offset int
}

func (w *writer) byte(v byte) {
	w.b[w.offset] = v
	w.offset++
}

func (w *writer) key(k ed25519.PublicKey) {
	copy(w.b[w.offset:], k)
	w.offset += ed25519.PublicKeySize
}

func (w *writer) uint64(v uint64) {
	binary.LittleEndian.PutUint64(w.b[w.offset:], v)
	w.offset += 8
}

func (w *writer) optionalKey(k ed25519.PublicKey) {
	if len(k) > 0 {
		binary.LittleEndian.PutUint32(w.b[w.offset:], 1)
	}
	w.offset += optionSize
	w.key(k)
}

func (w *writer) optionalUint64(v *uint64) {
	if v != nil {
		binary.LittleEndian.PutUint32(w.b[w.offset:], 1)
		binary.LittleEndian.PutUint64(w.b[w.offset+optionSize:], *v)
	}
	w.offset += optionSize + 8
}

type reader struct {
	b      []byte
	offset int
}

func (r *reader) byte() byte {
	v := r.b[r.offset]
	r.offset++
	return v
}

func (r *reader) key() ed25519.PublicKey {
	k := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(k, r.b[r.offset:])
	r.offset += ed25519.PublicKeySize
	return k
}

func (r *reader) uint64() uint64 {
	v := binary.LittleEndian.Uint64(r.b[r.offset:])
	r.offset += 8
	return v
}

func (r *reader) optionalKey() ed25519.PublicKey {
	set := binary.LittleEndian.Uint32(r.b[r.offset:]) == 1
	r.offset += optionSize
	k := r.key()
	if !set {
		return nil
	}
	return k
}

func (r *reader) optionalUint64() *uint64 {
	set := binary.LittleEndian.Uint32(r.b[r.offset:]) == 1
	r.offset += optionSize
	v := r.uint64()
	if !set {
		return nil
	}
	return &v
}
