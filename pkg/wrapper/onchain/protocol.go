package onchain

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/syrup-cpi-demo/pkg/metrics"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
	compute_budget "github.com/code-payments/syrup-cpi-demo/pkg/solana/computebudget"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana/syrup"
	"github.com/code-payments/syrup-cpi-demo/pkg/wrapper"
)

const (
	metricsStructName = "onchain.protocol"
)

var (
	// ErrConfirmationTimeout indicates a submitted transaction did not reach
	// the required commitment in time. It may still land.
	ErrConfirmationTimeout = errors.New("timed out waiting for transaction confirmation")

	// ErrMissingSignature indicates a required signer is not held by the
	// Protocol.
	ErrMissingSignature = errors.New("transaction is missing a required signature")

	// ErrInvalidConfig indicates a config value the Protocol cannot operate
	// with. Nothing is submitted when it is returned.
	ErrInvalidConfig = errors.New("invalid protocol config")
)

// Protocol forwards calls to the syrup program as Solana transactions. Each
// call is submitted exactly once and then polled until it reaches the
// configured commitment.
type Protocol struct {
	log          *logrus.Entry
	conf         *conf
	client       solana.Client
	syrupProgram ed25519.PublicKey
	commitment   solana.Commitment

	payer   ed25519.PrivateKey
	signers []ed25519.PrivateKey

	signatureMu   sync.Mutex
	lastSignature *solana.Signature
}

// NewProtocol returns a Protocol paying fees with payer. Additional signers
// are used for accounts that must sign besides the fee payer.
func NewProtocol(
	client solana.Client,
	syrupProgram ed25519.PublicKey,
	commitment solana.Commitment,
	configProvider ConfigProvider,
	payer ed25519.PrivateKey,
	signers ...ed25519.PrivateKey,
) *Protocol {
	return &Protocol{
		log:          logrus.StandardLogger().WithField("type", "wrapper/onchain/protocol"),
		conf:         configProvider(),
		client:       client,
		syrupProgram: syrupProgram,
		commitment:   commitment,
		payer:        payer,
		signers:      signers,
	}
}

// SignerKeys returns the public keys of every account this Protocol can sign
// for, starting with the fee payer.
func (p *Protocol) SignerKeys() []ed25519.PublicKey {
	keys := []ed25519.PublicKey{p.payer.Public().(ed25519.PublicKey)}
	for _, signer := range p.signers {
		keys = append(keys, signer.Public().(ed25519.PublicKey))
	}
	return keys
}

// LastSignature returns the signature of the most recently submitted
// transaction, if any.
func (p *Protocol) LastSignature() (solana.Signature, bool) {
	p.signatureMu.Lock()
	defer p.signatureMu.Unlock()

	if p.lastSignature == nil {
		return solana.Signature{}, false
	}
	return *p.lastSignature, true
}

// InitializeLender implements wrapper.Protocol.InitializeLender
func (p *Protocol) InitializeLender(ctx context.Context, accounts *syrup.LenderInitializeInstructionAccounts) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "InitializeLender")
	defer tracer.End()

	err := p.submitAndWait(ctx, "InitializeLender", syrup.NewLenderInitializeInstruction(p.syrupProgram, accounts))
	tracer.OnError(err)
	return err
}

// Deposit implements wrapper.Protocol.Deposit
func (p *Protocol) Deposit(ctx context.Context, accounts *syrup.LenderDepositInstructionAccounts, args *syrup.LenderDepositInstructionArgs) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Deposit")
	defer tracer.End()

	err := p.submitAndWait(ctx, "Deposit", syrup.NewLenderDepositInstruction(p.syrupProgram, accounts, args))
	tracer.OnError(err)
	return err
}

func (p *Protocol) submitAndWait(ctx context.Context, method string, ixn solana.Instruction) error {
	log := p.log.WithField("method", method)

	// Resolved up front so a bad value can never strand a submitted transaction
	timeout, interval, err := p.confirmationSettings(ctx)
	if err != nil {
		log.WithError(err).Warn("refusing to submit transaction")
		return err
	}

	txn, err := p.makeTransaction(ctx, ixn)
	if err != nil {
		return err
	}

	sig := txn.Signature()
	p.signatureMu.Lock()
	p.lastSignature = &sig
	p.signatureMu.Unlock()

	log = log.WithField("signature", sig.String())

	// Submission errors, including preflight failures, are returned as is
	if _, err := p.client.SubmitTransaction(ctx, txn, p.commitment); err != nil {
		log.WithError(err).Warn("transaction submission failed")
		return err
	}

	log.Debug("transaction submitted")

	return p.waitForCommitment(ctx, log, sig, timeout, interval)
}

func (p *Protocol) confirmationSettings(ctx context.Context) (timeout, interval time.Duration, err error) {
	timeout = p.conf.confirmationTimeout.Get(ctx)
	if timeout <= 0 {
		return 0, 0, errors.Wrapf(ErrInvalidConfig, "%s must be positive, got %s", ConfirmationTimeoutConfigEnvName, timeout)
	}

	interval = p.conf.statusPollInterval.Get(ctx)
	if interval <= 0 {
		return 0, 0, errors.Wrapf(ErrInvalidConfig, "%s must be positive, got %s", StatusPollIntervalConfigEnvName, interval)
	}

	return timeout, interval, nil
}

func (p *Protocol) makeTransaction(ctx context.Context, ixn solana.Instruction) (solana.Transaction, error) {
	computeUnitLimit := p.conf.computeUnitLimit.Get(ctx)
	if computeUnitLimit > math.MaxUint32 {
		computeUnitLimit = math.MaxUint32
	}
	budget := compute_budget.Budget{
		UnitLimit: uint32(computeUnitLimit),
		UnitPrice: p.conf.computeUnitPrice.Get(ctx),
	}

	ixns := append(budget.Instructions(), ixn)
	txn := solana.NewTransaction(p.payer.Public().(ed25519.PublicKey), ixns...)

	blockhash, err := p.client.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Transaction{}, errors.Wrap(err, "error getting latest blockhash")
	}
	txn.SetBlockhash(blockhash)

	// Only sign with keys the message requires, so unrelated signers never
	// cause an error
	signers := []ed25519.PrivateKey{p.payer}
	for _, signer := range p.signers {
		if isRequiredSigner(txn.Message, signer.Public().(ed25519.PublicKey)) && !signer.Equal(p.payer) {
			signers = append(signers, signer)
		}
	}
	if err := txn.Sign(signers...); err != nil {
		return solana.Transaction{}, errors.Wrap(err, "error signing transaction")
	}
	if !txn.IsSigned() {
		return solana.Transaction{}, ErrMissingSignature
	}

	return txn, nil
}

// waitForCommitment polls the signature status until the transaction reaches
// the configured commitment, fails, or the confirmation timeout elapses.
func (p *Protocol) waitForCommitment(ctx context.Context, log *logrus.Entry, sig solana.Signature, timeout, interval time.Duration) error {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		statuses, err := p.client.GetSignatureStatuses(pollCtx, []solana.Signature{sig})
		if err != nil {
			log.WithError(err).Debug("failure getting signature status")
		} else if len(statuses) == 1 && statuses[0] != nil {
			status := statuses[0]

			// Failed transactions are final at any commitment
			if status.ErrorResult != nil {
				log.WithError(status.ErrorResult).Warn("transaction failed on chain")
				return status.ErrorResult
			}
			if status.Satisfies(p.commitment) {
				metrics.RecordDuration(ctx, "transaction_confirmation_latency", time.Since(start))
				log.WithField("slot", status.Slot).Debug("transaction confirmed")
				return nil
			}
		}

		select {
		case <-pollCtx.Done():
			if err := ctx.Err(); err != nil {
				return err
			}
			return errors.Wrapf(ErrConfirmationTimeout, "signature %s", sig.String())
		case <-ticker.C:
		}
	}
}

func isRequiredSigner(m solana.Message, key ed25519.PublicKey) bool {
	for i, account := range m.Accounts {
		if bytes.Equal(account, key) {
			return m.IsSigner(i)
		}
	}
	return false
}

var _ wrapper.Protocol = (*Protocol)(nil)
