package usdc

import (
	"bytes"
	"crypto/ed25519"
	"math"
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	Mint     = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	Decimals = 6
)

var (
	TokenMint = ed25519.PublicKey{198, 250, 122, 243, 190, 219, 173, 58, 61, 101, 243, 106, 171, 201, 116, 49, 177, 187, 228, 194, 210, 246, 224, 228, 124, 166, 2, 3, 69, 47, 93, 97}
)

var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrTooPrecise     = errors.Errorf("amount has more than %d decimal places", Decimals)
	ErrAmountTooLarge = errors.New("amount overflows u64 quarks")

	ErrUnexpectedDecimals = errors.Errorf("mint does not use %d decimals", Decimals)
)

var maxQuarks = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// ToQuarks converts a whole unit USDC amount, such as "1.5", into quarks. The
// conversion is exact: inputs with sub-quark precision are rejected rather
// than rounded.
func ToQuarks(amount string) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid amount %q", amount)
	}
	return DecimalToQuarks(d)
}

// DecimalToQuarks is ToQuarks for an already parsed amount.
func DecimalToQuarks(amount decimal.Decimal) (uint64, error) {
	if amount.IsNegative() {
		return 0, ErrNegativeAmount
	}

	quarks := amount.Shift(Decimals)
	if !quarks.Equal(quarks.Truncate(0)) {
		return 0, ErrTooPrecise
	}
	if quarks.GreaterThan(maxQuarks) {
		return 0, ErrAmountTooLarge
	}

	return quarks.BigInt().Uint64(), nil
}

// FromQuarks converts quarks into a whole unit USDC amount.
func FromQuarks(quarks uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(quarks), -Decimals)
}

// IsTokenMint reports whether key is the mainnet USDC mint.
func IsTokenMint(key ed25519.PublicKey) bool {
	return bytes.Equal(key, TokenMint)
}

// CheckDecimals verifies a mint shares USDC's precision, so amounts converted
// with ToQuarks mean the same thing against it.
func CheckDecimals(decimals uint8) error {
	if decimals != Decimals {
		return errors.Wrapf(ErrUnexpectedDecimals, "got %d", decimals)
	}
	return nil
}
