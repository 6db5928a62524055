package compute_budget

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

const (
	commandSetComputeUnitLimit uint8 = 2
	commandSetComputeUnitPrice uint8 = 3
)

func SetComputeUnitLimit(computeUnitLimit uint32) solana.Instruction {
	data := make([]byte, 1+4)
	data[0] = commandSetComputeUnitLimit
	binary.LittleEndian.PutUint32(data[1:], computeUnitLimit)

	return solana.NewInstruction(ProgramKey, data)
}

// SetComputeUnitPrice sets the priority fee in micro-lamports per compute unit.
func SetComputeUnitPrice(microLamports uint64) solana.Instruction {
	data := make([]byte, 1+8)
	data[0] = commandSetComputeUnitPrice
	binary.LittleEndian.PutUint64(data[1:], microLamports)

	return solana.NewInstruction(ProgramKey, data)
}

// Budget is the compute budget requested for a transaction. Zero values are
// left to the runtime defaults.
type Budget struct {
	UnitLimit uint32
	UnitPrice uint64
}

// Instructions returns the budget instructions to prepend to a transaction.
func (b Budget) Instructions() []solana.Instruction {
	var ixns []solana.Instruction
	if b.UnitLimit > 0 {
		ixns = append(ixns, SetComputeUnitLimit(b.UnitLimit))
	}
	if b.UnitPrice > 0 {
		ixns = append(ixns, SetComputeUnitPrice(b.UnitPrice))
	}
	return ixns
}

func ParseSetComputeUnitLimitIxnData(data []byte) (uint32, error) {
	if len(data) != 5 {
		return 0, errors.Errorf("invalid length: %d", len(data))
	}
	if data[0] != commandSetComputeUnitLimit {
		return 0, solana.ErrIncorrectInstruction
	}
	return binary.LittleEndian.Uint32(data[1:]), nil
}

func ParseSetComputeUnitPriceIxnData(data []byte) (uint64, error) {
	if len(data) != 9 {
		return 0, errors.Errorf("invalid length: %d", len(data))
	}
	if data[0] != commandSetComputeUnitPrice {
		return 0, solana.ErrIncorrectInstruction
	}
	return binary.LittleEndian.Uint64(data[1:]), nil
}
