package syrup

import (
	"crypto/ed25519"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
)

var (
	LenderPrefix       = []byte("lender")
	LockedSharesPrefix = []byte("locked_shares")
)

type GetLenderAddressArgs struct {
	Program ed25519.PublicKey
	Pool    ed25519.PublicKey
	Owner   ed25519.PublicKey
}

// GetLenderAddress derives the lender record for owner's position in pool.
func GetLenderAddress(args *GetLenderAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		args.Program,
		LenderPrefix,
		args.Pool,
		args.Owner,
	)
}

type GetLockedSharesAddressArgs struct {
	Program ed25519.PublicKey
	Lender  ed25519.PublicKey
}

// GetLockedSharesAddress derives the token account holding a lender's locked
// shares.
func GetLockedSharesAddress(args *GetLockedSharesAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		args.Program,
		LockedSharesPrefix,
		args.Lender,
	)
}
