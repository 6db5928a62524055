package syrup

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"
)

const discriminatorSize = 8

// accountDiscriminator is the Anchor account discriminator for the named
// account type.
func accountDiscriminator(name string) []byte {
	return anchorDiscriminator("account", name)
}

// instructionDiscriminator is the Anchor sighash for the named instruction.
func instructionDiscriminator(name string) []byte {
	return anchorDiscriminator("global", name)
}

func anchorDiscriminator(namespace, name string) []byte {
	h := sha256.Sum256([]byte(namespace + ":" + name))
	return h[:discriminatorSize]
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
