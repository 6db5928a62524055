package onchain

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana/syrup"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana/system"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana/token"
	"github.com/code-payments/syrup-cpi-demo/pkg/wrapper"
)

var (
	// ErrAccountNotFound indicates a syrup account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrLenderLockerNotFound indicates the depositor has no associated token
	// account for the pool's base mint.
	ErrLenderLockerNotFound = errors.New("ATA account does not exist")
)

// Loader fetches and decodes the accounts referenced by a request, building
// the bundles validated by wrapper.Handler.
type Loader struct {
	log          *logrus.Entry
	client       solana.Client
	tokenClient  *token.Client
	syrupProgram ed25519.PublicKey
	commitment   solana.Commitment
	signers      []ed25519.PublicKey
}

// NewLoader returns a Loader. Signer accounts in a bundle are marked as signed
// only when they appear in signers.
func NewLoader(client solana.Client, syrupProgram ed25519.PublicKey, commitment solana.Commitment, signers ...ed25519.PublicKey) *Loader {
	return &Loader{
		log:          logrus.StandardLogger().WithField("type", "wrapper/onchain/loader"),
		client:       client,
		tokenClient:  token.NewClient(client),
		syrupProgram: syrupProgram,
		commitment:   commitment,
		signers:      signers,
	}
}

// InitializeLenderRequest identifies a lender position to open.
type InitializeLenderRequest struct {
	Payer      ed25519.PublicKey
	Owner      ed25519.PublicKey
	Pool       ed25519.PublicKey
	SharesMint ed25519.PublicKey
}

// DepositRequest identifies a deposit into a pool. LenderLocker defaults to
// the lender user's associated token account for BaseMint.
type DepositRequest struct {
	LenderUser   ed25519.PublicKey
	Pool         ed25519.PublicKey
	Globals      ed25519.PublicKey
	PoolLocker   ed25519.PublicKey
	BaseMint     ed25519.PublicKey
	SharesMint   ed25519.PublicKey
	LenderLocker ed25519.PublicKey
}

// LoadInitializeLenderAccounts derives the lender, locked shares and lender
// shares addresses for the request and loads the pool and shares mint.
func (l *Loader) LoadInitializeLenderAccounts(ctx context.Context, req *InitializeLenderRequest) (*wrapper.InitializeLenderAccounts, error) {
	lender, lockedShares, err := l.deriveLenderAddresses(req.Pool, req.Owner)
	if err != nil {
		return nil, err
	}

	lenderShares, err := token.GetAssociatedAccount(req.Owner, req.SharesMint)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving lender shares address")
	}

	pool, err := l.LoadPool(ctx, req.Pool)
	if err != nil {
		return nil, err
	}

	sharesMint, err := l.loadMint(ctx, "shares_mint", req.SharesMint)
	if err != nil {
		return nil, err
	}

	return &wrapper.InitializeLenderAccounts{
		Payer:        l.signer(req.Payer),
		Owner:        wrapper.Unchecked{PublicKey: req.Owner},
		Pool:         wrapper.PoolAccount{PublicKey: req.Pool, State: pool},
		SharesMint:   wrapper.MintAccount{PublicKey: req.SharesMint, State: sharesMint},
		Lender:       wrapper.Unchecked{PublicKey: lender},
		LockedShares: wrapper.Unchecked{PublicKey: lockedShares},
		LenderShares: wrapper.Unchecked{PublicKey: lenderShares},

		SystemProgram:          wrapper.Program{PublicKey: system.ProgramKey},
		TokenProgram:           wrapper.Program{PublicKey: token.ProgramKey},
		AssociatedTokenProgram: wrapper.Program{PublicKey: token.AssociatedTokenAccountProgramKey},
		Rent:                   wrapper.Program{PublicKey: system.RentSysVar},
		Syrup:                  wrapper.Program{PublicKey: l.syrupProgram},
	}, nil
}

// LoadDepositAccounts derives the lender position addresses for the request
// and loads every account the deposit rules inspect.
func (l *Loader) LoadDepositAccounts(ctx context.Context, req *DepositRequest) (*wrapper.DepositAccounts, error) {
	lenderAddress, lockedSharesAddress, err := l.deriveLenderAddresses(req.Pool, req.LenderUser)
	if err != nil {
		return nil, err
	}

	lenderSharesAddress, err := token.GetAssociatedAccount(req.LenderUser, req.SharesMint)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving lender shares address")
	}

	lenderLockerAddress := req.LenderLocker
	if len(lenderLockerAddress) == 0 {
		lenderLockerAddress, err = token.GetAssociatedAccount(req.LenderUser, req.BaseMint)
		if err != nil {
			return nil, errors.Wrap(err, "error deriving lender locker address")
		}
	}

	log := l.log.WithFields(logrus.Fields{
		"method":        "LoadDepositAccounts",
		"pool":          base58.Encode(req.Pool),
		"lender":        base58.Encode(lenderAddress),
		"lender_locker": base58.Encode(lenderLockerAddress),
	})

	lenderLocker, err := l.tokenClient.GetAccount(ctx, lenderLockerAddress, l.commitment)
	if err == token.ErrAccountNotFound {
		log.Debug("lender locker does not exist")
		return nil, ErrLenderLockerNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "error loading lender_locker %s", base58.Encode(lenderLockerAddress))
	}

	lender, err := l.LoadLender(ctx, lenderAddress)
	if err != nil {
		return nil, err
	}

	pool, err := l.LoadPool(ctx, req.Pool)
	if err != nil {
		return nil, err
	}

	globals, err := l.LoadGlobals(ctx, req.Globals)
	if err != nil {
		return nil, err
	}

	poolLocker, err := l.loadTokenAccount(ctx, "pool_locker", req.PoolLocker)
	if err != nil {
		return nil, err
	}

	baseMint, err := l.loadMint(ctx, "base_mint", req.BaseMint)
	if err != nil {
		return nil, err
	}

	sharesMint, err := l.loadMint(ctx, "shares_mint", req.SharesMint)
	if err != nil {
		return nil, err
	}

	lockedShares, err := l.loadTokenAccount(ctx, "locked_shares", lockedSharesAddress)
	if err != nil {
		return nil, err
	}

	lenderShares, err := l.loadTokenAccount(ctx, "lender_shares", lenderSharesAddress)
	if err != nil {
		return nil, err
	}

	return &wrapper.DepositAccounts{
		Lender:       wrapper.LenderAccount{PublicKey: lenderAddress, State: lender},
		LenderUser:   l.signer(req.LenderUser),
		Pool:         wrapper.PoolAccount{PublicKey: req.Pool, State: pool},
		Globals:      wrapper.GlobalsAccount{PublicKey: req.Globals, State: globals},
		PoolLocker:   wrapper.TokenAccount{PublicKey: req.PoolLocker, State: poolLocker},
		BaseMint:     wrapper.MintAccount{PublicKey: req.BaseMint, State: baseMint},
		SharesMint:   wrapper.MintAccount{PublicKey: req.SharesMint, State: sharesMint},
		LockedShares: wrapper.TokenAccount{PublicKey: lockedSharesAddress, State: lockedShares},
		LenderShares: wrapper.TokenAccount{PublicKey: lenderSharesAddress, State: lenderShares},
		LenderLocker: wrapper.TokenAccount{PublicKey: lenderLockerAddress, State: lenderLocker},

		SystemProgram: wrapper.Program{PublicKey: system.ProgramKey},
		TokenProgram:  wrapper.Program{PublicKey: token.ProgramKey},
		Rent:          wrapper.Program{PublicKey: system.RentSysVar},
		Syrup:         wrapper.Program{PublicKey: l.syrupProgram},
	}, nil
}

// LoadPool fetches and decodes a syrup pool.
func (l *Loader) LoadPool(ctx context.Context, address ed25519.PublicKey) (*syrup.PoolAccount, error) {
	data, err := l.loadProgramAccount(ctx, "pool", address)
	if err != nil {
		return nil, err
	}

	var pool syrup.PoolAccount
	if err := pool.Unmarshal(data); err != nil {
		return nil, errors.Wrapf(err, "error decoding pool %s", base58.Encode(address))
	}
	return &pool, nil
}

// LoadLender fetches and decodes a syrup lender record.
func (l *Loader) LoadLender(ctx context.Context, address ed25519.PublicKey) (*syrup.LenderAccount, error) {
	data, err := l.loadProgramAccount(ctx, "lender", address)
	if err != nil {
		return nil, err
	}

	var lender syrup.LenderAccount
	if err := lender.Unmarshal(data); err != nil {
		return nil, errors.Wrapf(err, "error decoding lender %s", base58.Encode(address))
	}
	return &lender, nil
}

// LoadGlobals fetches and decodes the syrup globals account.
func (l *Loader) LoadGlobals(ctx context.Context, address ed25519.PublicKey) (*syrup.GlobalsAccount, error) {
	data, err := l.loadProgramAccount(ctx, "globals", address)
	if err != nil {
		return nil, err
	}

	var globals syrup.GlobalsAccount
	if err := globals.Unmarshal(data); err != nil {
		return nil, errors.Wrapf(err, "error decoding globals %s", base58.Encode(address))
	}
	return &globals, nil
}

func (l *Loader) loadProgramAccount(ctx context.Context, name string, address ed25519.PublicKey) ([]byte, error) {
	info, err := l.client.GetAccountInfo(ctx, address, l.commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, errors.Wrapf(ErrAccountNotFound, "%s %s", name, base58.Encode(address))
	} else if err != nil {
		return nil, errors.Wrapf(err, "error loading %s %s", name, base58.Encode(address))
	}

	if !bytes.Equal(info.Owner, l.syrupProgram) {
		return nil, errors.Wrapf(syrup.ErrInvalidProgram, "%s %s is owned by %s", name, base58.Encode(address), base58.Encode(info.Owner))
	}
	return info.Data, nil
}

func (l *Loader) loadTokenAccount(ctx context.Context, name string, address ed25519.PublicKey) (*token.Account, error) {
	account, err := l.tokenClient.GetAccount(ctx, address, l.commitment)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading %s %s", name, base58.Encode(address))
	}
	return account, nil
}

func (l *Loader) loadMint(ctx context.Context, name string, address ed25519.PublicKey) (*token.Mint, error) {
	mint, err := l.tokenClient.GetMint(ctx, address, l.commitment)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading %s %s", name, base58.Encode(address))
	}
	return mint, nil
}

func (l *Loader) deriveLenderAddresses(pool, owner ed25519.PublicKey) (lender, lockedShares ed25519.PublicKey, err error) {
	lender, _, err = syrup.GetLenderAddress(&syrup.GetLenderAddressArgs{
		Program: l.syrupProgram,
		Pool:    pool,
		Owner:   owner,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "error deriving lender address")
	}

	lockedShares, _, err = syrup.GetLockedSharesAddress(&syrup.GetLockedSharesAddressArgs{
		Program: l.syrupProgram,
		Lender:  lender,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "error deriving locked shares address")
	}

	return lender, lockedShares, nil
}

func (l *Loader) signer(key ed25519.PublicKey) wrapper.Signer {
	for _, signer := range l.signers {
		if bytes.Equal(signer, key) {
			return wrapper.Signer{PublicKey: key, Signed: true}
		}
	}
	return wrapper.Signer{PublicKey: key}
}
