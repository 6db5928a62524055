package syrup

import (
	"crypto/ed25519"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
)

var lenderInitializeDiscriminator = instructionDiscriminator("lender_initialize")

type LenderInitializeInstructionAccounts struct {
	Payer        ed25519.PublicKey
	Owner        ed25519.PublicKey
	Pool         ed25519.PublicKey
	SharesMint   ed25519.PublicKey
	Lender       ed25519.PublicKey
	LockedShares ed25519.PublicKey
	LenderShares ed25519.PublicKey
}

func NewLenderInitializeInstruction(
	program ed25519.PublicKey,
	accounts *LenderInitializeInstructionAccounts,
) solana.Instruction {
	data := append([]byte{}, lenderInitializeDiscriminator...)

	return solana.Instruction{
		Program: program,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Owner,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Pool,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.SharesMint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Lender,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.LockedShares,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.LenderShares,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_ASSOCIATED_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}
