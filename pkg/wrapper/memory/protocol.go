// Package memory provides an in-memory wrapper.Protocol that records every
// forwarded call.
package memory

import (
	"context"
	"sync"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana/syrup"
	"github.com/code-payments/syrup-cpi-demo/pkg/wrapper"
)

// InitializeLenderCall is a recorded lender_initialize invocation.
type InitializeLenderCall struct {
	Accounts syrup.LenderInitializeInstructionAccounts
}

// DepositCall is a recorded lender_deposit invocation.
type DepositCall struct {
	Accounts syrup.LenderDepositInstructionAccounts
	Args     syrup.LenderDepositInstructionArgs
}

type Protocol struct {
	mu sync.Mutex

	initializeLenderCalls []InitializeLenderCall
	depositCalls          []DepositCall

	err error
}

func NewProtocol() *Protocol {
	return &Protocol{}
}

// SetError makes every subsequent call fail with err after being recorded.
// A nil err restores success.
func (p *Protocol) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.err = err
}

// InitializeLender implements wrapper.Protocol.InitializeLender
func (p *Protocol) InitializeLender(ctx context.Context, accounts *syrup.LenderInitializeInstructionAccounts) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.initializeLenderCalls = append(p.initializeLenderCalls, InitializeLenderCall{Accounts: *accounts})
	return p.err
}

// Deposit implements wrapper.Protocol.Deposit
func (p *Protocol) Deposit(ctx context.Context, accounts *syrup.LenderDepositInstructionAccounts, args *syrup.LenderDepositInstructionArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.depositCalls = append(p.depositCalls, DepositCall{Accounts: *accounts, Args: *args})
	return p.err
}

func (p *Protocol) InitializeLenderCalls() []InitializeLenderCall {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]InitializeLenderCall(nil), p.initializeLenderCalls...)
}

func (p *Protocol) DepositCalls() []DepositCall {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]DepositCall(nil), p.depositCalls...)
}

// Reset clears recorded calls and any injected error.
func (p *Protocol) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initializeLenderCalls = nil
	p.depositCalls = nil
	p.err = nil
}

var _ wrapper.Protocol = (*Protocol)(nil)
