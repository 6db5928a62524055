package syrup

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"
)

var PoolAccountDiscriminator = accountDiscriminator("Pool")

// MinPoolAccountSize covers the leading fields decoded here. Pool
// configuration and accounting state follow and are not interpreted.
const MinPoolAccountSize = (discriminatorSize +
	1 + // version
	32 + // pool_delegate
	32 + // globals
	32 + // base_mint
	32 + // locker
	32 + // shares_mint
	8 + // nonce
	1) // bump

type PoolAccount struct {
	Version      uint8
	PoolDelegate ed25519.PublicKey
	Globals      ed25519.PublicKey
	BaseMint     ed25519.PublicKey
	Locker       ed25519.PublicKey
	SharesMint   ed25519.PublicKey
	Nonce        [8]byte
	Bump         uint8
}

type rawPoolAccount struct {
	Version      uint8
	PoolDelegate [32]byte
	Globals      [32]byte
	BaseMint     [32]byte
	Locker       [32]byte
	SharesMint   [32]byte
	Nonce        [8]byte
	Bump         uint8
}

func (obj *PoolAccount) Unmarshal(data []byte) error {
	if len(data) < MinPoolAccountSize {
		return ErrInvalidAccountData
	}
	if !bytes.Equal(data[:discriminatorSize], PoolAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	var raw rawPoolAccount
	if err := borsh.Deserialize(&raw, data[discriminatorSize:MinPoolAccountSize]); err != nil {
		return ErrInvalidAccountData
	}

	obj.Version = raw.Version
	obj.PoolDelegate = toPublicKey(raw.PoolDelegate)
	obj.Globals = toPublicKey(raw.Globals)
	obj.BaseMint = toPublicKey(raw.BaseMint)
	obj.Locker = toPublicKey(raw.Locker)
	obj.SharesMint = toPublicKey(raw.SharesMint)
	obj.Nonce = raw.Nonce
	obj.Bump = raw.Bump

	return nil
}

func (obj *PoolAccount) Marshal() ([]byte, error) {
	body, err := borsh.Serialize(rawPoolAccount{
		Version:      obj.Version,
		PoolDelegate: toRawKey(obj.PoolDelegate),
		Globals:      toRawKey(obj.Globals),
		BaseMint:     toRawKey(obj.BaseMint),
		Locker:       toRawKey(obj.Locker),
		SharesMint:   toRawKey(obj.SharesMint),
		Nonce:        obj.Nonce,
		Bump:         obj.Bump,
	})
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, PoolAccountDiscriminator...), body...), nil
}

func (obj *PoolAccount) String() string {
	return fmt.Sprintf(
		"Pool{globals=%s,base_mint=%s,locker=%s,shares_mint=%s}",
		base58.Encode(obj.Globals),
		base58.Encode(obj.BaseMint),
		base58.Encode(obj.Locker),
		base58.Encode(obj.SharesMint),
	)
}

func toPublicKey(raw [32]byte) ed25519.PublicKey {
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, raw[:])
	return key
}

func toRawKey(key ed25519.PublicKey) (raw [32]byte) {
	copy(raw[:], key)
	return raw
}
