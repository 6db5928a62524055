package wrapper

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana/system"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana/token"
)

// Rule is a single account relationship check. check returns an empty string
// when the rule holds, otherwise the reason it failed.
type Rule[T any] struct {
	ID          string
	Description string

	check func(syrupProgram ed25519.PublicKey, accounts *T) string
}

func (r Rule[T]) evaluate(syrupProgram ed25519.PublicKey, accounts *T) error {
	if reason := r.check(syrupProgram, accounts); reason != "" {
		return newConstraintViolationError(r.ID, reason)
	}
	return nil
}

func evaluateRules[T any](rules []Rule[T], syrupProgram ed25519.PublicKey, accounts *T) error {
	for _, rule := range rules {
		if err := rule.evaluate(syrupProgram, accounts); err != nil {
			return err
		}
	}
	return nil
}

// InitializeLenderRules are evaluated in order and the first failure wins.
// Owner, lender, locked_shares and lender_shares are intentionally absent:
// syrup creates and checks them.
var InitializeLenderRules = []Rule[InitializeLenderAccounts]{
	{
		ID:          "I1",
		Description: "shares_mint must equal pool.shares_mint",
		check: func(_ ed25519.PublicKey, a *InitializeLenderAccounts) string {
			return requireEqual("shares_mint", a.SharesMint.PublicKey, "pool.shares_mint", a.Pool.State.SharesMint)
		},
	},
	{
		ID:          "I2",
		Description: "payer must sign",
		check: func(_ ed25519.PublicKey, a *InitializeLenderAccounts) string {
			return requireSigned("payer", a.Payer)
		},
	},
	systemProgramRule(func(a *InitializeLenderAccounts) Program { return a.SystemProgram }),
	tokenProgramRule(func(a *InitializeLenderAccounts) Program { return a.TokenProgram }),
	associatedTokenProgramRule(func(a *InitializeLenderAccounts) Program { return a.AssociatedTokenProgram }),
	rentRule(func(a *InitializeLenderAccounts) Program { return a.Rent }),
	syrupProgramRule(func(a *InitializeLenderAccounts) Program { return a.Syrup }),
}

// DepositRules are evaluated in order and the first failure wins.
// deposit_amount is never range checked.
var DepositRules = []Rule[DepositAccounts]{
	{
		ID:          "1",
		Description: "lender_user must sign and equal lender.owner",
		check: func(_ ed25519.PublicKey, a *DepositAccounts) string {
			if reason := requireSigned("lender_user", a.LenderUser); reason != "" {
				return reason
			}
			return requireEqual("lender_user", a.LenderUser.PublicKey, "lender.owner", a.Lender.State.Owner)
		},
	},
	{
		ID:          "2",
		Description: "pool must equal lender.pool",
		check: func(_ ed25519.PublicKey, a *DepositAccounts) string {
			return requireEqual("pool", a.Pool.PublicKey, "lender.pool", a.Lender.State.Pool)
		},
	},
	{
		ID:          "3",
		Description: "globals must equal pool.globals",
		check: func(_ ed25519.PublicKey, a *DepositAccounts) string {
			return requireEqual("globals", a.Globals.PublicKey, "pool.globals", a.Pool.State.Globals)
		},
	},
	{
		ID:          "4",
		Description: "pool_locker must equal pool.locker",
		check: func(_ ed25519.PublicKey, a *DepositAccounts) string {
			return requireEqual("pool_locker", a.PoolLocker.PublicKey, "pool.locker", a.Pool.State.Locker)
		},
	},
	{
		ID:          "5",
		Description: "base_mint must equal pool.base_mint",
		check: func(_ ed25519.PublicKey, a *DepositAccounts) string {
			return requireEqual("base_mint", a.BaseMint.PublicKey, "pool.base_mint", a.Pool.State.BaseMint)
		},
	},
	{
		ID:          "6",
		Description: "shares_mint must equal pool.shares_mint",
		check: func(_ ed25519.PublicKey, a *DepositAccounts) string {
			return requireEqual("shares_mint", a.SharesMint.PublicKey, "pool.shares_mint", a.Pool.State.SharesMint)
		},
	},
	{
		ID:          "7",
		Description: "locked_shares must equal lender.locked_shares",
		check: func(_ ed25519.PublicKey, a *DepositAccounts) string {
			return requireEqual("locked_shares", a.LockedShares.PublicKey, "lender.locked_shares", a.Lender.State.LockedShares)
		},
	},
	{
		ID:          "8",
		Description: "lender_shares must equal lender.lender_shares",
		check: func(_ ed25519.PublicKey, a *DepositAccounts) string {
			return requireEqual("lender_shares", a.LenderShares.PublicKey, "lender.lender_shares", a.Lender.State.LenderShares)
		},
	},
	{
		ID:          "9",
		Description: "lender_locker must be owned by lender_user and hold pool.base_mint",
		check: func(_ ed25519.PublicKey, a *DepositAccounts) string {
			if !bytes.Equal(a.LenderLocker.State.Owner, a.LenderUser.PublicKey) {
				return "lender_locker owner " + encodeKey(a.LenderLocker.State.Owner) + " is not lender_user " + encodeKey(a.LenderUser.PublicKey)
			}
			return requireEqual("lender_locker.mint", a.LenderLocker.State.Mint, "pool.base_mint", a.Pool.State.BaseMint)
		},
	},
	systemProgramRule(func(a *DepositAccounts) Program { return a.SystemProgram }),
	tokenProgramRule(func(a *DepositAccounts) Program { return a.TokenProgram }),
	rentRule(func(a *DepositAccounts) Program { return a.Rent }),
	syrupProgramRule(func(a *DepositAccounts) Program { return a.Syrup }),
}

func systemProgramRule[T any](get func(*T) Program) Rule[T] {
	return knownProgramRule("P1", "system_program", system.ProgramKey, system.IsProgram, get)
}

func tokenProgramRule[T any](get func(*T) Program) Rule[T] {
	return knownProgramRule("P2", "token_program", token.ProgramKey, token.IsProgram, get)
}

func associatedTokenProgramRule[T any](get func(*T) Program) Rule[T] {
	return knownProgramRule("P3", "associated_token_program", token.AssociatedTokenAccountProgramKey, token.IsAssociatedTokenAccountProgram, get)
}

func rentRule[T any](get func(*T) Program) Rule[T] {
	return knownProgramRule("P4", "rent", system.RentSysVar, system.IsRentSysVar, get)
}

func knownProgramRule[T any](id, name string, expected ed25519.PublicKey, is func(ed25519.PublicKey) bool, get func(*T) Program) Rule[T] {
	return Rule[T]{
		ID:          id,
		Description: name + " must be " + encodeKey(expected),
		check: func(_ ed25519.PublicKey, a *T) string {
			if actual := get(a).PublicKey; !is(actual) {
				return name + " " + encodeKey(actual) + " does not match known address " + encodeKey(expected)
			}
			return ""
		},
	}
}

func syrupProgramRule[T any](get func(*T) Program) Rule[T] {
	return Rule[T]{
		ID:          "P5",
		Description: "syrup must be the configured syrup program",
		check: func(syrupProgram ed25519.PublicKey, a *T) string {
			return requireEqual("syrup", get(a).PublicKey, "configured syrup program", syrupProgram)
		},
	}
}

func requireEqual(name string, actual ed25519.PublicKey, expectedName string, expected ed25519.PublicKey) string {
	if len(actual) == 0 || !bytes.Equal(actual, expected) {
		return name + " " + encodeKey(actual) + " does not match " + expectedName + " " + encodeKey(expected)
	}
	return ""
}

func requireSigned(name string, signer Signer) string {
	if !signer.Signed {
		return name + " " + encodeKey(signer.PublicKey) + " did not sign"
	}
	return ""
}
