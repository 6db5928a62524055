package syrup

import (
	"bytes"
	"crypto/ed25519"

	"github.com/near/borsh-go"
)

var GlobalsAccountDiscriminator = accountDiscriminator("Globals")

const MinGlobalsAccountSize = (discriminatorSize +
	1 + // version
	32 + // protocol_admin
	1) // bump

// GlobalsAccount is the protocol wide configuration. The wrapper only checks
// its address, so the decoded fields are informational.
type GlobalsAccount struct {
	Version       uint8
	ProtocolAdmin ed25519.PublicKey
	Bump          uint8
}

type rawGlobalsAccount struct {
	Version       uint8
	ProtocolAdmin [32]byte
	Bump          uint8
}

func (obj *GlobalsAccount) Unmarshal(data []byte) error {
	if len(data) < MinGlobalsAccountSize {
		return ErrInvalidAccountData
	}
	if !bytes.Equal(data[:discriminatorSize], GlobalsAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	var raw rawGlobalsAccount
	if err := borsh.Deserialize(&raw, data[discriminatorSize:MinGlobalsAccountSize]); err != nil {
		return ErrInvalidAccountData
	}

	obj.Version = raw.Version
	obj.ProtocolAdmin = toPublicKey(raw.ProtocolAdmin)
	obj.Bump = raw.Bump

	return nil
}

func (obj *GlobalsAccount) Marshal() ([]byte, error) {
	body, err := borsh.Serialize(rawGlobalsAccount{
		Version:       obj.Version,
		ProtocolAdmin: toRawKey(obj.ProtocolAdmin),
		Bump:          obj.Bump,
	})
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, GlobalsAccountDiscriminator...), body...), nil
}
