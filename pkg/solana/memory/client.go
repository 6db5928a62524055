// Package memory provides an in-memory solana.Client backed by a map of
// accounts. Submitted transactions are recorded and confirmed immediately.
package memory

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/mr-tron/base58"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
)

type Client struct {
	mu sync.Mutex

	accounts  map[string]solana.AccountInfo
	blockhash solana.Blockhash
	submitted []solana.Transaction
	statuses  map[solana.Signature]*solana.SignatureStatus

	// SubmitErr, when set, is returned by SubmitTransaction instead of
	// accepting the transaction.
	SubmitErr error
	// ExecutionErr, when set, is attached to the status of every accepted
	// transaction.
	ExecutionErr *solana.TransactionError
}

func NewClient() *Client {
	c := &Client{
		accounts: make(map[string]solana.AccountInfo),
		statuses: make(map[solana.Signature]*solana.SignatureStatus),
	}
	c.blockhash[0] = 1
	return c
}

// SetAccount stores an account, replacing any existing one at the address.
func (c *Client) SetAccount(address ed25519.PublicKey, info solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accounts[base58.Encode(address)] = info
}

// Submitted returns the transactions accepted so far.
func (c *Client) Submitted() []solana.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]solana.Transaction(nil), c.submitted...)
}

func (c *Client) GetAccountInfo(ctx context.Context, account ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	if err := ctx.Err(); err != nil {
		return solana.AccountInfo{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	info, ok := c.accounts[base58.Encode(account)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}

	info.Data = append([]byte(nil), info.Data...)
	return info, nil
}

func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Blockhash, error) {
	if err := ctx.Err(); err != nil {
		return solana.Blockhash{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.blockhash, nil
}

func (c *Client) GetSignatureStatuses(ctx context.Context, sigs []solana.Signature) ([]*solana.SignatureStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	statuses := make([]*solana.SignatureStatus, len(sigs))
	for i, sig := range sigs {
		if status, ok := c.statuses[sig]; ok {
			cloned := *status
			statuses[i] = &cloned
		}
	}
	return statuses, nil
}

func (c *Client) SubmitTransaction(ctx context.Context, txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	sig := txn.Signature()
	if err := ctx.Err(); err != nil {
		return sig, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.SubmitErr != nil {
		return sig, c.SubmitErr
	}

	c.submitted = append(c.submitted, txn)
	c.statuses[sig] = &solana.SignatureStatus{
		Slot:               uint64(len(c.submitted)),
		ConfirmationStatus: "finalized",
		ErrorResult:        c.ExecutionErr,
	}

	return sig, nil
}

var _ solana.Client = (*Client)(nil)
