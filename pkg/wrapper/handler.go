package wrapper

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/syrup-cpi-demo/pkg/metrics"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana/syrup"
)

const (
	metricsStructName = "wrapper.handler"

	initializeLenderOperation = "initialize_lender"
	depositOperation          = "deposit"

	rejectionEventName = "WrapperRequestRejected"
)

// Handler validates account bundles and forwards them to syrup. It holds no
// mutable state, so a single Handler may serve concurrent requests.
type Handler struct {
	log          *logrus.Entry
	protocol     Protocol
	syrupProgram ed25519.PublicKey
}

// NewHandler returns a Handler forwarding to protocol. syrupProgram is the
// only program address accepted in the Syrup slot of a bundle.
func NewHandler(protocol Protocol, syrupProgram ed25519.PublicKey) *Handler {
	return &Handler{
		log:          logrus.StandardLogger().WithField("type", "wrapper/handler"),
		protocol:     protocol,
		syrupProgram: syrupProgram,
	}
}

// ValidateInitializeLender checks the bundle against InitializeLenderRules
// without issuing any call.
func (h *Handler) ValidateInitializeLender(accounts *InitializeLenderAccounts) error {
	if accounts == nil {
		return errors.New("initialize lender accounts not provided")
	}
	if accounts.Pool.State == nil {
		return errors.New("pool state not loaded")
	}
	return evaluateRules(InitializeLenderRules, h.syrupProgram, accounts)
}

// ValidateDeposit checks the bundle against DepositRules without issuing any
// call.
func (h *Handler) ValidateDeposit(accounts *DepositAccounts) error {
	if accounts == nil {
		return errors.New("deposit accounts not provided")
	}
	switch {
	case accounts.Lender.State == nil:
		return errors.New("lender state not loaded")
	case accounts.Pool.State == nil:
		return errors.New("pool state not loaded")
	case accounts.LenderLocker.State == nil:
		return errors.New("lender_locker state not loaded")
	}
	return evaluateRules(DepositRules, h.syrupProgram, accounts)
}

// InitializeLender validates the bundle and, when every rule holds, issues a
// single lender_initialize call. The protocol's error is returned unchanged.
func (h *Handler) InitializeLender(ctx context.Context, accounts *InitializeLenderAccounts) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "InitializeLender")
	defer tracer.End()

	log := h.log.WithField("method", "InitializeLender")
	if accounts != nil {
		log = log.WithFields(logrus.Fields{
			"pool":  encodeKey(accounts.Pool.PublicKey),
			"owner": encodeKey(accounts.Owner.PublicKey),
			"payer": encodeKey(accounts.Payer.PublicKey),
		})
		tracer.AddAttribute("pool", encodeKey(accounts.Pool.PublicKey))
	}

	if err := h.ValidateInitializeLender(accounts); err != nil {
		h.onRejected(ctx, log, initializeLenderOperation, err)
		tracer.OnError(err)
		return err
	}

	metrics.RecordCount(ctx, initializeLenderOperation+"_forwarded", 1)

	err := h.protocol.InitializeLender(ctx, accounts.ToInstructionAccounts())
	if err != nil {
		h.onForwardFailed(ctx, log, initializeLenderOperation, err)
		tracer.OnError(err)
		return err
	}

	log.Debug("lender initialized")
	return nil
}

// Deposit validates the bundle and, when every rule holds, issues a single
// lender_deposit call with amount passed through unchanged. The protocol's
// error is returned unchanged.
func (h *Handler) Deposit(ctx context.Context, accounts *DepositAccounts, amount uint64) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Deposit")
	defer tracer.End()

	log := h.log.WithFields(logrus.Fields{
		"method": "Deposit",
		"amount": amount,
	})
	if accounts != nil {
		log = log.WithFields(logrus.Fields{
			"pool":        encodeKey(accounts.Pool.PublicKey),
			"lender":      encodeKey(accounts.Lender.PublicKey),
			"lender_user": encodeKey(accounts.LenderUser.PublicKey),
		})
		tracer.AddAttribute("pool", encodeKey(accounts.Pool.PublicKey))
	}
	tracer.AddAttribute("amount", amount)

	if err := h.ValidateDeposit(accounts); err != nil {
		h.onRejected(ctx, log, depositOperation, err)
		tracer.OnError(err)
		return err
	}

	metrics.RecordCount(ctx, depositOperation+"_forwarded", 1)

	args := &syrup.LenderDepositInstructionArgs{
		DepositAmount: amount,
	}
	err := h.protocol.Deposit(ctx, accounts.ToInstructionAccounts(), args)
	if err != nil {
		h.onForwardFailed(ctx, log, depositOperation, err)
		tracer.OnError(err)
		return err
	}

	log.Debug("deposit forwarded")
	return nil
}

func (h *Handler) onRejected(ctx context.Context, log *logrus.Entry, operation string, err error) {
	metrics.RecordCount(ctx, operation+"_rejected", 1)

	var cve ConstraintViolationError
	if !errors.As(err, &cve) {
		log.WithError(err).Warn("request is malformed")
		return
	}

	log.WithFields(logrus.Fields{
		"rule":   cve.Rule,
		"reason": cve.Reason,
	}).Info("request rejected")

	metrics.RecordEvent(ctx, rejectionEventName, map[string]interface{}{
		"operation": operation,
		"rule":      cve.Rule,
	})
}

func (h *Handler) onForwardFailed(ctx context.Context, log *logrus.Entry, operation string, err error) {
	metrics.RecordCount(ctx, operation+"_failed", 1)

	log.WithError(err).WithField("kind", Classify(err).String()).Warn("forwarded call failed")
}
