package token

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
)

var (
	// ErrAccountNotFound indicates there is no account for the given address.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidTokenAccount indicates that a Solana account exists at the
	// given address, but it is either not initialized, or not owned by the
	// token program.
	ErrInvalidTokenAccount = errors.New("invalid token account")
	// ErrInvalidMint indicates that a Solana account exists at the given
	// address, but it is not a token mint.
	ErrInvalidMint = errors.New("invalid mint")
)

// Client reads token program state.
type Client struct {
	sc solana.Client
}

// NewClient creates a new Client.
func NewClient(sc solana.Client) *Client {
	return &Client{
		sc: sc,
	}
}

// GetAccount returns the token account state for the specified account.
//
// If the account is not initialized, or is not owned by the token program,
// then ErrInvalidTokenAccount is returned.
func (c *Client) GetAccount(ctx context.Context, accountID ed25519.PublicKey, commitment solana.Commitment) (*Account, error) {
	accountInfo, err := c.sc.GetAccountInfo(ctx, accountID, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(accountInfo.Owner, ProgramKey) {
		return nil, ErrInvalidTokenAccount
	}

	var account Account
	if !account.Unmarshal(accountInfo.Data) || account.State == AccountStateUninitialized {
		return nil, ErrInvalidTokenAccount
	}

	return &account, nil
}

// GetMint returns the mint state for the specified account.
func (c *Client) GetMint(ctx context.Context, mintID ed25519.PublicKey, commitment solana.Commitment) (*Mint, error) {
	accountInfo, err := c.sc.GetAccountInfo(ctx, mintID, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(accountInfo.Owner, ProgramKey) {
		return nil, ErrInvalidMint
	}

	var mint Mint
	if !mint.Unmarshal(accountInfo.Data) || !mint.IsInitialized {
		return nil, ErrInvalidMint
	}

	return &mint, nil
}
