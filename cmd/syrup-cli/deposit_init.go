package main

import (
	"context"
	"crypto/ed25519"

	"github.com/spf13/cobra"

	"github.com/code-payments/syrup-cpi-demo/pkg/wrapper"
	"github.com/code-payments/syrup-cpi-demo/pkg/wrapper/onchain"
)

func newDepositInitCommand(s *session) *cobra.Command {
	var owner, pool, poolSharesMint string

	cmd := &cobra.Command{
		Use:   "syrup-deposit-init",
		Short: "Initialise a lender account.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ownerKey, err := parsePublicKey("owner", owner)
			if err != nil {
				return err
			}
			poolKey, err := parsePublicKey("pool", pool)
			if err != nil {
				return err
			}
			sharesMintKey, err := parsePublicKey("pool-shares-mint", poolSharesMint)
			if err != nil {
				return err
			}

			return s.forward(cmd, func(ctx context.Context, loader *onchain.Loader, handler *wrapper.Handler) error {
				accounts, err := loader.LoadInitializeLenderAccounts(ctx, &onchain.InitializeLenderRequest{
					Payer:      s.keypair.Public().(ed25519.PublicKey),
					Owner:      ownerKey,
					Pool:       poolKey,
					SharesMint: sharesMintKey,
				})
				if err != nil {
					return err
				}
				return handler.InitializeLender(ctx, accounts)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&owner, "owner", "o", "", "Owner of the lender account.")
	flags.StringVarP(&pool, "pool", "p", "", "The address of the pool for the deposit.")
	flags.StringVarP(&poolSharesMint, "pool-shares-mint", "s", "", "The pool shares mint where shares are issued from proportional with the deposit.")

	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("pool")
	_ = cmd.MarkFlagRequired("pool-shares-mint")

	return cmd
}
