package wrapper

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana/syrup"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana/token"
)

// Signer is an account that must sign the forwarded call. Signed reports
// whether the caller actually provided its signature.
type Signer struct {
	PublicKey ed25519.PublicKey
	Signed    bool
}

// Unchecked is an account reference that is forwarded without any inspection.
// The syrup program owns every check on it, so validation never reads it.
type Unchecked struct {
	PublicKey ed25519.PublicKey
}

// Program is a program or sysvar reference whose identity is checked against
// its well known address.
type Program struct {
	PublicKey ed25519.PublicKey
}

type PoolAccount struct {
	PublicKey ed25519.PublicKey
	State     *syrup.PoolAccount
}

type LenderAccount struct {
	PublicKey ed25519.PublicKey
	State     *syrup.LenderAccount
}

type GlobalsAccount struct {
	PublicKey ed25519.PublicKey
	State     *syrup.GlobalsAccount
}

type TokenAccount struct {
	PublicKey ed25519.PublicKey
	State     *token.Account
}

type MintAccount struct {
	PublicKey ed25519.PublicKey
	State     *token.Mint
}

// InitializeLenderAccounts is the account bundle for opening a lender
// position in a pool.
type InitializeLenderAccounts struct {
	Payer        Signer
	Owner        Unchecked
	Pool         PoolAccount
	SharesMint   MintAccount
	Lender       Unchecked
	LockedShares Unchecked
	LenderShares Unchecked

	SystemProgram          Program
	TokenProgram           Program
	AssociatedTokenProgram Program
	Rent                   Program
	Syrup                  Program
}

// DepositAccounts is the account bundle for depositing base tokens into a
// pool through an existing lender position.
type DepositAccounts struct {
	Lender       LenderAccount
	LenderUser   Signer
	Pool         PoolAccount
	Globals      GlobalsAccount
	PoolLocker   TokenAccount
	BaseMint     MintAccount
	SharesMint   MintAccount
	LockedShares TokenAccount
	LenderShares TokenAccount
	LenderLocker TokenAccount

	SystemProgram Program
	TokenProgram  Program
	Rent          Program
	Syrup         Program
}

// ToInstructionAccounts maps the bundle field for field onto the syrup
// lender_initialize accounts.
func (a *InitializeLenderAccounts) ToInstructionAccounts() *syrup.LenderInitializeInstructionAccounts {
	return &syrup.LenderInitializeInstructionAccounts{
		Payer:        a.Payer.PublicKey,
		Owner:        a.Owner.PublicKey,
		Pool:         a.Pool.PublicKey,
		SharesMint:   a.SharesMint.PublicKey,
		Lender:       a.Lender.PublicKey,
		LockedShares: a.LockedShares.PublicKey,
		LenderShares: a.LenderShares.PublicKey,
	}
}

// ToInstructionAccounts maps the bundle field for field onto the syrup
// lender_deposit accounts.
func (a *DepositAccounts) ToInstructionAccounts() *syrup.LenderDepositInstructionAccounts {
	return &syrup.LenderDepositInstructionAccounts{
		Lender:       a.Lender.PublicKey,
		LenderUser:   a.LenderUser.PublicKey,
		Pool:         a.Pool.PublicKey,
		Globals:      a.Globals.PublicKey,
		PoolLocker:   a.PoolLocker.PublicKey,
		BaseMint:     a.BaseMint.PublicKey,
		SharesMint:   a.SharesMint.PublicKey,
		LockedShares: a.LockedShares.PublicKey,
		LenderShares: a.LenderShares.PublicKey,
		LenderLocker: a.LenderLocker.PublicKey,
	}
}

func encodeKey(key ed25519.PublicKey) string {
	if len(key) == 0 {
		return "<nil>"
	}
	return base58.Encode(key)
}
