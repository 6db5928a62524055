package syrup

import (
	"bytes"
	"crypto/ed25519"

	"github.com/near/borsh-go"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
)

var lenderDepositDiscriminator = instructionDiscriminator("lender_deposit")

const (
	LenderDepositInstructionArgsSize = 8 // deposit_amount
)

type LenderDepositInstructionArgs struct {
	DepositAmount uint64
}

type LenderDepositInstructionAccounts struct {
	Lender       ed25519.PublicKey
	LenderUser   ed25519.PublicKey
	Pool         ed25519.PublicKey
	Globals      ed25519.PublicKey
	PoolLocker   ed25519.PublicKey
	BaseMint     ed25519.PublicKey
	SharesMint   ed25519.PublicKey
	LockedShares ed25519.PublicKey
	LenderShares ed25519.PublicKey
	LenderLocker ed25519.PublicKey
}

func NewLenderDepositInstruction(
	program ed25519.PublicKey,
	accounts *LenderDepositInstructionAccounts,
	args *LenderDepositInstructionArgs,
) solana.Instruction {
	// Serializing a fixed size struct of primitives cannot fail
	serialized, _ := borsh.Serialize(*args)

	data := make([]byte, 0, discriminatorSize+LenderDepositInstructionArgsSize)
	data = append(data, lenderDepositDiscriminator...)
	data = append(data, serialized...)

	return solana.Instruction{
		Program: program,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Lender,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.LenderUser,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Pool,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Globals,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.PoolLocker,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.BaseMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.SharesMint,
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
				PublicKey:  accounts.LenderLocker,
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
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

// ParseLenderDepositInstructionArgs recovers the arguments from lender_deposit
// instruction data.
func ParseLenderDepositInstructionArgs(data []byte) (*LenderDepositInstructionArgs, error) {
	if len(data) != discriminatorSize+LenderDepositInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}
	if !bytes.Equal(data[:discriminatorSize], lenderDepositDiscriminator) {
		return nil, ErrInvalidInstructionData
	}

	var args LenderDepositInstructionArgs
	if err := borsh.Deserialize(&args, data[discriminatorSize:]); err != nil {
		return nil, ErrInvalidInstructionData
	}
	return &args, nil
}
