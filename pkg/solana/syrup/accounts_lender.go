package syrup

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"
)

var LenderAccountDiscriminator = accountDiscriminator("Lender")

const LenderAccountSize = (discriminatorSize +
	1 + // version
	32 + // owner
	32 + // pool
	32 + // locked_shares
	32 + // lender_shares
	1) // bump

type LenderAccount struct {
	Version      uint8
	Owner        ed25519.PublicKey
	Pool         ed25519.PublicKey
	LockedShares ed25519.PublicKey
	LenderShares ed25519.PublicKey
	Bump         uint8
}

type rawLenderAccount struct {
	Version      uint8
	Owner        [32]byte
	Pool         [32]byte
	LockedShares [32]byte
	LenderShares [32]byte
	Bump         uint8
}

func (obj *LenderAccount) Unmarshal(data []byte) error {
	if len(data) < LenderAccountSize {
		return ErrInvalidAccountData
	}
	if !bytes.Equal(data[:discriminatorSize], LenderAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	var raw rawLenderAccount
	if err := borsh.Deserialize(&raw, data[discriminatorSize:LenderAccountSize]); err != nil {
		return ErrInvalidAccountData
	}

	obj.Version = raw.Version
	obj.Owner = toPublicKey(raw.Owner)
	obj.Pool = toPublicKey(raw.Pool)
	obj.LockedShares = toPublicKey(raw.LockedShares)
	obj.LenderShares = toPublicKey(raw.LenderShares)
	obj.Bump = raw.Bump

	return nil
}

func (obj *LenderAccount) Marshal() ([]byte, error) {
	body, err := borsh.Serialize(rawLenderAccount{
		Version:      obj.Version,
		Owner:        toRawKey(obj.Owner),
		Pool:         toRawKey(obj.Pool),
		LockedShares: toRawKey(obj.LockedShares),
		LenderShares: toRawKey(obj.LenderShares),
		Bump:         obj.Bump,
	})
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, LenderAccountDiscriminator...), body...), nil
}

func (obj *LenderAccount) String() string {
	return fmt.Sprintf(
		"Lender{owner=%s,pool=%s,locked_shares=%s,lender_shares=%s}",
		base58.Encode(obj.Owner),
		base58.Encode(obj.Pool),
		base58.Encode(obj.LockedShares),
		base58.Encode(obj.LenderShares),
	)
}
