package wrapper

import (
	"context"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana/syrup"
)

// Protocol issues the two syrup entry points. Each method is a single
// invocation whose failure is returned unchanged.
type Protocol interface {
	InitializeLender(ctx context.Context, accounts *syrup.LenderInitializeInstructionAccounts) error
	Deposit(ctx context.Context, accounts *syrup.LenderDepositInstructionAccounts, args *syrup.LenderDepositInstructionArgs) error
}
