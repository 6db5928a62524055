package main

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/code-payments/syrup-cpi-demo/pkg/usdc"
	"github.com/code-payments/syrup-cpi-demo/pkg/wrapper"
	"github.com/code-payments/syrup-cpi-demo/pkg/wrapper/onchain"
)

type depositFlags struct {
	amount         string
	globals        string
	pool           string
	poolSharesMint string
	poolBaseMint   string
	poolLocker     string
	lenderUser     string
}

func newDepositCommand(s *session) *cobra.Command {
	var f depositFlags

	cmd := &cobra.Command{
		Use:   "syrup-deposit",
		Short: "Deposit into a pool.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, req, err := f.parse()
			if err != nil {
				return err
			}

			return s.forward(cmd, func(ctx context.Context, loader *onchain.Loader, handler *wrapper.Handler) error {
				accounts, err := loader.LoadDepositAccounts(ctx, req)
				if err != nil {
					return err
				}
				if err := checkBaseMint(s.log, accounts.BaseMint); err != nil {
					return err
				}
				return handler.Deposit(ctx, accounts, amount)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.amount, "amount", "a", "", "The amount of USDC to deposit into the pool.")
	flags.StringVarP(&f.globals, "globals", "g", "", "The globals account address of the syrup program.")
	flags.StringVarP(&f.pool, "pool", "p", "", "The address of the pool for the deposit.")
	flags.StringVarP(&f.poolSharesMint, "pool-shares-mint", "s", "", "The pool shares mint where shares are issued from proportional with the deposit.")
	flags.StringVarP(&f.poolBaseMint, "pool-base-mint", "b", "", "The pool base mint for the pool underlying asset.")
	flags.StringVarP(&f.poolLocker, "pool-locker", "l", "", "The pool locker where the total liquidity gets deposited.")
	flags.StringVarP(&f.lenderUser, "lender-user", "u", "", "The wallet public address that will sign the deposit.")

	for _, name := range []string{"amount", "globals", "pool", "pool-shares-mint", "pool-base-mint", "pool-locker", "lender-user"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

// parse converts the whole USDC amount into quarks and decodes every address.
// The lender locker is left to default to the lender user's associated token
// account.
func (f *depositFlags) parse() (uint64, *onchain.DepositRequest, error) {
	amount, err := usdc.ToQuarks(f.amount)
	if err != nil {
		return 0, nil, err
	}

	var req onchain.DepositRequest
	for _, field := range []struct {
		name  string
		value string
		dst   *ed25519.PublicKey
	}{
		{"globals", f.globals, &req.Globals},
		{"pool", f.pool, &req.Pool},
		{"pool-shares-mint", f.poolSharesMint, &req.SharesMint},
		{"pool-base-mint", f.poolBaseMint, &req.BaseMint},
		{"pool-locker", f.poolLocker, &req.PoolLocker},
		{"lender-user", f.lenderUser, &req.LenderUser},
	} {
		key, err := parsePublicKey(field.name, field.value)
		if err != nil {
			return 0, nil, err
		}
		*field.dst = key
	}

	return amount, &req, nil
}

// checkBaseMint guards the --amount conversion, which assumes USDC decimals.
// Other mints with the same precision (devnet USDC, for example) are allowed.
func checkBaseMint(log *logrus.Entry, baseMint wrapper.MintAccount) error {
	if baseMint.State == nil {
		return errors.New("pool base mint state is missing")
	}
	if err := usdc.CheckDecimals(baseMint.State.Decimals); err != nil {
		return errors.Wrapf(err, "pool base mint %s", base58.Encode(baseMint.PublicKey))
	}

	if !usdc.IsTokenMint(baseMint.PublicKey) {
		log.WithFields(logrus.Fields{
			"base_mint": base58.Encode(baseMint.PublicKey),
			"usdc_mint": usdc.Mint,
		}).Warn("pool base mint is not USDC, interpreting amount with USDC decimals")
	}
	return nil
}
