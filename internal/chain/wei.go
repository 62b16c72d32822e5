package chain

import (
	"math"
	"math/big"
)

// TokenDecimals is the token's fixed-point precision.
const TokenDecimals = 18

// centsToWei converts 1/100 of a token to its smallest unit (10^16 wei).
var centsToWei = new(big.Int).Exp(big.NewInt(10), big.NewInt(TokenDecimals-2), nil)

// ToWei scales a human-readable token amount to the token's 18-decimal
// fixed-point representation. Amounts are stored with two decimal places, so
// going through integer cents keeps the conversion exact.
func ToWei(amount float64) *big.Int {
	cents := int64(math.Round(amount * 100))
	return new(big.Int).Mul(big.NewInt(cents), centsToWei)
}
