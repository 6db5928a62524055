package onchain

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
	compute_budget "github.com/code-payments/syrup-cpi-demo/pkg/solana/computebudget"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana/memory"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana/syrup"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana/token"
	"github.com/code-payments/syrup-cpi-demo/pkg/testutil"
	"github.com/code-payments/syrup-cpi-demo/pkg/wrapper"
)

type testEnv struct {
	ctx          context.Context
	client       *memory.Client
	syrupProgram ed25519.PublicKey

	payer      ed25519.PrivateKey
	lenderUser ed25519.PrivateKey

	pool       ed25519.PublicKey
	globals    ed25519.PublicKey
	poolLocker ed25519.PublicKey
	baseMint   ed25519.PublicKey
	sharesMint ed25519.PublicKey

	lender       ed25519.PublicKey
	lockedShares ed25519.PublicKey
	lenderShares ed25519.PublicKey
	lenderLocker ed25519.PublicKey
}

func setup(t *testing.T) *testEnv {
	env := &testEnv{
		ctx:          context.Background(),
		client:       memory.NewClient(),
		syrupProgram: testutil.GenerateSolanaKey(t),
		payer:        testutil.GenerateSolanaKeypair(t),
		lenderUser:   testutil.GenerateSolanaKeypair(t),
		pool:         testutil.GenerateSolanaKey(t),
		globals:      testutil.GenerateSolanaKey(t),
		poolLocker:   testutil.GenerateSolanaKey(t),
		baseMint:     testutil.GenerateSolanaKey(t),
		sharesMint:   testutil.GenerateSolanaKey(t),
	}

	user := env.lenderUser.Public().(ed25519.PublicKey)

	var err error
	env.lender, _, err = syrup.GetLenderAddress(&syrup.GetLenderAddressArgs{Program: env.syrupProgram, Pool: env.pool, Owner: user})
	require.NoError(t, err)
	env.lockedShares, _, err = syrup.GetLockedSharesAddress(&syrup.GetLockedSharesAddressArgs{Program: env.syrupProgram, Lender: env.lender})
	require.NoError(t, err)
	env.lenderShares, err = token.GetAssociatedAccount(user, env.sharesMint)
	require.NoError(t, err)
	env.lenderLocker, err = token.GetAssociatedAccount(user, env.baseMint)
	require.NoError(t, err)

	env.setProgramAccount(t, env.pool, &syrup.PoolAccount{
		Version:      1,
		PoolDelegate: testutil.GenerateSolanaKey(t),
		Globals:      env.globals,
		BaseMint:     env.baseMint,
		Locker:       env.poolLocker,
		SharesMint:   env.sharesMint,
		Bump:         255,
	})
	env.setProgramAccount(t, env.lender, &syrup.LenderAccount{
		Version:      1,
		Owner:        user,
		Pool:         env.pool,
		LockedShares: env.lockedShares,
		LenderShares: env.lenderShares,
		Bump:         254,
	})
	env.setProgramAccount(t, env.globals, &syrup.GlobalsAccount{
		Version:       1,
		ProtocolAdmin: testutil.GenerateSolanaKey(t),
		Bump:          253,
	})

	env.setMint(t, env.baseMint)
	env.setMint(t, env.sharesMint)
	env.setTokenAccount(t, env.poolLocker, env.baseMint, env.pool)
	env.setTokenAccount(t, env.lockedShares, env.sharesMint, env.lender)
	env.setTokenAccount(t, env.lenderShares, env.sharesMint, user)
	env.setTokenAccount(t, env.lenderLocker, env.baseMint, user)

	return env
}

type marshaler interface {
	Marshal() ([]byte, error)
}

func (e *testEnv) setProgramAccount(t *testing.T, address ed25519.PublicKey, account marshaler) {
	data, err := account.Marshal()
	require.NoError(t, err)
	e.client.SetAccount(address, solana.AccountInfo{Data: data, Owner: e.syrupProgram, Lamports: 1})
}

func (e *testEnv) setMint(t *testing.T, address ed25519.PublicKey) {
	mint := &token.Mint{Decimals: 6, IsInitialized: true, Supply: 1_000_000_000}
	e.client.SetAccount(address, solana.AccountInfo{Data: mint.Marshal(), Owner: token.ProgramKey, Lamports: 1})
}

func (e *testEnv) setTokenAccount(t *testing.T, address, mint, owner ed25519.PublicKey) {
	account := &token.Account{Mint: mint, Owner: owner, Amount: 10_000_000, State: token.AccountStateInitialized}
	e.client.SetAccount(address, solana.AccountInfo{Data: account.Marshal(), Owner: token.ProgramKey, Lamports: 1})
}

func (e *testEnv) depositRequest() *DepositRequest {
	return &DepositRequest{
		LenderUser: e.lenderUser.Public().(ed25519.PublicKey),
		Pool:       e.pool,
		Globals:    e.globals,
		PoolLocker: e.poolLocker,
		BaseMint:   e.baseMint,
		SharesMint: e.sharesMint,
	}
}

func (e *testEnv) depositInstructionAccounts() *syrup.LenderDepositInstructionAccounts {
	return &syrup.LenderDepositInstructionAccounts{
		Lender:       e.lender,
		LenderUser:   e.lenderUser.Public().(ed25519.PublicKey),
		Pool:         e.pool,
		Globals:      e.globals,
		PoolLocker:   e.poolLocker,
		BaseMint:     e.baseMint,
		SharesMint:   e.sharesMint,
		LockedShares: e.lockedShares,
		LenderShares: e.lenderShares,
		LenderLocker: e.lenderLocker,
	}
}

func (e *testEnv) newProtocol(overrides *testOverrides) *Protocol {
	if overrides == nil {
		overrides = &testOverrides{
			confirmationTimeout: time.Second,
			statusPollInterval:  10 * time.Millisecond,
		}
	}
	return NewProtocol(e.client, e.syrupProgram, solana.CommitmentConfirmed, withManualTestOverrides(overrides), e.payer, e.lenderUser)
}

func TestLoadDepositAccounts(t *testing.T) {
	env := setup(t)
	protocol := env.newProtocol(nil)
	loader := NewLoader(env.client, env.syrupProgram, solana.CommitmentConfirmed, protocol.SignerKeys()...)

	accounts, err := loader.LoadDepositAccounts(env.ctx, env.depositRequest())
	require.NoError(t, err)

	assert.EqualValues(t, env.lender, accounts.Lender.PublicKey)
	assert.EqualValues(t, env.lockedShares, accounts.LockedShares.PublicKey)
	assert.EqualValues(t, env.lenderShares, accounts.LenderShares.PublicKey)
	assert.EqualValues(t, env.lenderLocker, accounts.LenderLocker.PublicKey)
	assert.True(t, accounts.LenderUser.Signed)
	assert.EqualValues(t, env.globals, accounts.Pool.State.Globals)
	assert.EqualValues(t, env.pool, accounts.Lender.State.Pool)

	handler := wrapper.NewHandler(protocol, env.syrupProgram)
	assert.NoError(t, handler.ValidateDeposit(accounts))
}

func TestLoadDepositAccounts_UnheldSigner(t *testing.T) {
	env := setup(t)
	loader := NewLoader(env.client, env.syrupProgram, solana.CommitmentConfirmed, env.payer.Public().(ed25519.PublicKey))

	accounts, err := loader.LoadDepositAccounts(env.ctx, env.depositRequest())
	require.NoError(t, err)
	assert.False(t, accounts.LenderUser.Signed)

	err = wrapper.NewHandler(env.newProtocol(nil), env.syrupProgram).ValidateDeposit(accounts)
	assert.True(t, wrapper.IsConstraintViolation(err))
}

func TestLoadDepositAccounts_MissingLenderLocker(t *testing.T) {
	env := setup(t)
	env.client = memory.NewClient()
	loader := NewLoader(env.client, env.syrupProgram, solana.CommitmentConfirmed)

	_, err := loader.LoadDepositAccounts(env.ctx, env.depositRequest())
	assert.Equal(t, ErrLenderLockerNotFound, err)
	assert.Equal(t, "ATA account does not exist", err.Error())
}

func TestLoadDepositAccounts_ExplicitLenderLocker(t *testing.T) {
	env := setup(t)
	loader := NewLoader(env.client, env.syrupProgram, solana.CommitmentConfirmed)

	other := testutil.GenerateSolanaKey(t)
	env.setTokenAccount(t, other, env.baseMint, testutil.GenerateSolanaKey(t))

	req := env.depositRequest()
	req.LenderLocker = other
	accounts, err := loader.LoadDepositAccounts(env.ctx, req)
	require.NoError(t, err)
	assert.EqualValues(t, other, accounts.LenderLocker.PublicKey)
}

func TestLoader_InvalidProgramAccounts(t *testing.T) {
	env := setup(t)
	loader := NewLoader(env.client, env.syrupProgram, solana.CommitmentConfirmed)

	_, err := loader.LoadPool(env.ctx, testutil.GenerateSolanaKey(t))
	assert.True(t, errors.Is(err, ErrAccountNotFound))

	// Owned by a different program
	data, err := (&syrup.PoolAccount{}).Marshal()
	require.NoError(t, err)
	impostor := testutil.GenerateSolanaKey(t)
	env.client.SetAccount(impostor, solana.AccountInfo{Data: data, Owner: testutil.GenerateSolanaKey(t)})
	_, err = loader.LoadPool(env.ctx, impostor)
	assert.True(t, errors.Is(err, syrup.ErrInvalidProgram))

	// A lender where a pool is expected
	_, err = loader.LoadPool(env.ctx, env.lender)
	assert.True(t, errors.Is(err, syrup.ErrInvalidAccountData))
	_, err = loader.LoadGlobals(env.ctx, env.pool)
	assert.True(t, errors.Is(err, syrup.ErrInvalidAccountData))

	globals, err := loader.LoadGlobals(env.ctx, env.globals)
	require.NoError(t, err)
	assert.EqualValues(t, 253, globals.Bump)
}

func TestLoadInitializeLenderAccounts(t *testing.T) {
	env := setup(t)
	protocol := env.newProtocol(nil)
	loader := NewLoader(env.client, env.syrupProgram, solana.CommitmentConfirmed, protocol.SignerKeys()...)

	owner := testutil.GenerateSolanaKey(t)
	accounts, err := loader.LoadInitializeLenderAccounts(env.ctx, &InitializeLenderRequest{
		Payer:      env.payer.Public().(ed25519.PublicKey),
		Owner:      owner,
		Pool:       env.pool,
		SharesMint: env.sharesMint,
	})
	require.NoError(t, err)

	expectedLender, _, err := syrup.GetLenderAddress(&syrup.GetLenderAddressArgs{Program: env.syrupProgram, Pool: env.pool, Owner: owner})
	require.NoError(t, err)
	expectedLenderShares, err := token.GetAssociatedAccount(owner, env.sharesMint)
	require.NoError(t, err)

	assert.True(t, accounts.Payer.Signed)
	assert.EqualValues(t, expectedLender, accounts.Lender.PublicKey)
	assert.EqualValues(t, expectedLenderShares, accounts.LenderShares.PublicKey)

	handler := wrapper.NewHandler(protocol, env.syrupProgram)
	require.NoError(t, handler.InitializeLender(env.ctx, accounts))

	submitted := env.client.Submitted()
	require.Len(t, submitted, 1)
	require.Len(t, submitted[0].Message.Instructions, 1)
	assert.True(t, submitted[0].IsSigned())

	_, err = loader.LoadInitializeLenderAccounts(env.ctx, &InitializeLenderRequest{
		Payer:      env.payer.Public().(ed25519.PublicKey),
		Owner:      owner,
		Pool:       env.pool,
		SharesMint: testutil.GenerateSolanaKey(t),
	})
	assert.True(t, errors.Is(err, token.ErrAccountNotFound))
}

func TestProtocol_Deposit(t *testing.T) {
	env := setup(t)
	protocol := env.newProtocol(&testOverrides{
		computeUnitLimit:    300_000,
		computeUnitPrice:    1_000,
		confirmationTimeout: time.Second,
		statusPollInterval:  10 * time.Millisecond,
	})
	loader := NewLoader(env.client, env.syrupProgram, solana.CommitmentConfirmed, protocol.SignerKeys()...)

	accounts, err := loader.LoadDepositAccounts(env.ctx, env.depositRequest())
	require.NoError(t, err)

	handler := wrapper.NewHandler(protocol, env.syrupProgram)
	require.NoError(t, handler.Deposit(env.ctx, accounts, 2_500_000))

	submitted := env.client.Submitted()
	require.Len(t, submitted, 1)
	txn := submitted[0]
	assert.True(t, txn.IsSigned())
	assert.EqualValues(t, env.payer.Public(), txn.Message.Accounts[0])

	sig, ok := protocol.LastSignature()
	require.True(t, ok)
	assert.Equal(t, txn.Signature(), sig)

	ixns := txn.Message.Instructions
	require.Len(t, ixns, 3)

	limit, err := compute_budget.ParseSetComputeUnitLimitIxnData(ixns[0].Data)
	require.NoError(t, err)
	assert.EqualValues(t, 300_000, limit)
	price, err := compute_budget.ParseSetComputeUnitPriceIxnData(ixns[1].Data)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000, price)

	assert.EqualValues(t, env.syrupProgram, txn.Message.Accounts[ixns[2].ProgramIndex])
	args, err := syrup.ParseLenderDepositInstructionArgs(ixns[2].Data)
	require.NoError(t, err)
	assert.EqualValues(t, 2_500_000, args.DepositAmount)

	require.Len(t, ixns[2].Accounts, 13)
	assert.EqualValues(t, env.lender, txn.Message.Accounts[ixns[2].Accounts[0]])
	assert.EqualValues(t, env.lenderLocker, txn.Message.Accounts[ixns[2].Accounts[9]])
	assert.True(t, txn.Message.IsSigner(int(ixns[2].Accounts[1])))
	assert.True(t, txn.Message.IsWritable(int(ixns[2].Accounts[0])))
	assert.False(t, txn.Message.IsWritable(int(ixns[2].Accounts[3])))
}

func TestProtocol_ExecutionFailure(t *testing.T) {
	env := setup(t)
	protocol := env.newProtocol(nil)
	loader := NewLoader(env.client, env.syrupProgram, solana.CommitmentConfirmed, protocol.SignerKeys()...)

	accounts, err := loader.LoadDepositAccounts(env.ctx, env.depositRequest())
	require.NoError(t, err)

	expected, err := solana.ParseTransactionError(map[string]interface{}{
		"InstructionError": []interface{}{float64(0), map[string]interface{}{"Custom": float64(6003)}},
	})
	require.NoError(t, err)
	env.client.ExecutionErr = expected

	actual := wrapper.NewHandler(protocol, env.syrupProgram).Deposit(env.ctx, accounts, 1)
	assert.True(t, actual == error(expected))
	assert.Equal(t, wrapper.ErrorKindExternalCall, wrapper.Classify(actual))
	assert.Len(t, env.client.Submitted(), 1)
}

func TestProtocol_SubmitFailure(t *testing.T) {
	env := setup(t)
	protocol := env.newProtocol(nil)

	expected := solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound)
	env.client.SubmitErr = expected

	actual := protocol.Deposit(env.ctx, env.depositInstructionAccounts(), &syrup.LenderDepositInstructionArgs{DepositAmount: 1})
	assert.True(t, actual == error(expected))
	assert.Empty(t, env.client.Submitted())
}

func TestProtocol_MissingSignature(t *testing.T) {
	env := setup(t)
	protocol := NewProtocol(env.client, env.syrupProgram, solana.CommitmentConfirmed, withManualTestOverrides(&testOverrides{
		confirmationTimeout: time.Second,
		statusPollInterval:  10 * time.Millisecond,
	}), env.payer)

	err := protocol.Deposit(env.ctx, env.depositInstructionAccounts(), &syrup.LenderDepositInstructionArgs{})
	assert.Equal(t, ErrMissingSignature, err)
	assert.Empty(t, env.client.Submitted())

	_, ok := protocol.LastSignature()
	assert.False(t, ok)
}

type unconfirmedClient struct {
	*memory.Client
}

func (c unconfirmedClient) GetSignatureStatuses(ctx context.Context, sigs []solana.Signature) ([]*solana.SignatureStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return make([]*solana.SignatureStatus, len(sigs)), nil
}

func TestProtocol_ConfirmationTimeout(t *testing.T) {
	env := setup(t)
	client := unconfirmedClient{env.client}
	protocol := NewProtocol(client, env.syrupProgram, solana.CommitmentConfirmed, withManualTestOverrides(&testOverrides{
		confirmationTimeout: 50 * time.Millisecond,
		statusPollInterval:  5 * time.Millisecond,
	}), env.payer, env.lenderUser)

	accounts := &syrup.LenderInitializeInstructionAccounts{
		Payer:        env.payer.Public().(ed25519.PublicKey),
		Owner:        testutil.GenerateSolanaKey(t),
		Pool:         env.pool,
		SharesMint:   env.sharesMint,
		Lender:       env.lender,
		LockedShares: env.lockedShares,
		LenderShares: env.lenderShares,
	}

	err := protocol.InitializeLender(env.ctx, accounts)
	assert.True(t, errors.Is(err, ErrConfirmationTimeout))
	assert.Len(t, env.client.Submitted(), 1)

	ctx, cancel := context.WithCancel(env.ctx)
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	protocol = NewProtocol(client, env.syrupProgram, solana.CommitmentConfirmed, withManualTestOverrides(&testOverrides{
		confirmationTimeout: time.Minute,
		statusPollInterval:  5 * time.Millisecond,
	}), env.payer)
	err = protocol.InitializeLender(ctx, accounts)
	assert.True(t, errors.Is(err, context.Canceled))
}


func TestProtocol_InvalidConfirmationConfig(t *testing.T) {
	env := setup(t)
	loader := NewLoader(env.client, env.syrupProgram, solana.CommitmentConfirmed, env.newProtocol(nil).SignerKeys()...)
	accounts, err := loader.LoadDepositAccounts(env.ctx, env.depositRequest())
	require.NoError(t, err)

	for _, value := range []string{"0s", "-1s"} {
		t.Setenv(StatusPollIntervalConfigEnvName, value)

		protocol := NewProtocol(env.client, env.syrupProgram, solana.CommitmentConfirmed, WithEnvConfigs(), env.payer, env.lenderUser)
		err := wrapper.NewHandler(protocol, env.syrupProgram).Deposit(env.ctx, accounts, 1)
		assert.True(t, errors.Is(err, ErrInvalidConfig), value)
		assert.Equal(t, wrapper.ErrorKindPlatform, wrapper.Classify(err))

		_, ok := protocol.LastSignature()
		assert.False(t, ok)
	}

	for _, overrides := range []*testOverrides{
		{confirmationTimeout: -time.Second, statusPollInterval: time.Millisecond},
		{confirmationTimeout: time.Second, statusPollInterval: -time.Millisecond},
	} {
		err := env.newProtocol(overrides).InitializeLender(env.ctx, &syrup.LenderInitializeInstructionAccounts{})
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	}

	assert.Empty(t, env.client.Submitted())
}
