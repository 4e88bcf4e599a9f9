package chain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FeeOption selects one of the three fee tiers every client quotes.
type FeeOption string

// Fee tiers, slowest to fastest.
const (
	FeeAverage FeeOption = "average"
	FeeFast    FeeOption = "fast"
	FeeFastest FeeOption = "fastest"
)

// FeeType describes how a chain charges fees.
type FeeType string

// Fee types.
const (
	// FeePerByte means the fee scales with transaction size (UTXO chains).
	FeePerByte FeeType = "byte"
	// FeeFlat means the fee is a fixed amount per transaction.
	FeeFlat FeeType = "base"
)

// Fees quotes the total fee, in base units of the native asset, at each
// tier.
type Fees struct {
	Type    FeeType
	Average decimal.Decimal
	Fast    decimal.Decimal
	Fastest decimal.Decimal
}

// Fee returns the quote for one tier.
func (f Fees) Fee(opt FeeOption) (decimal.Decimal, error) {
	switch opt {
	case FeeAverage:
		return f.Average, nil
	case FeeFast, "":
		return f.Fast, nil
	case FeeFastest:
		return f.Fastest, nil
	}
	return decimal.Decimal{}, fmt.Errorf("unknown fee option %q", opt)
}

// FeeRates quotes fee rates for UTXO chains, in satoshis per virtual byte.
type FeeRates struct {
	Average float64
	Fast    float64
	Fastest float64
}

// Rate returns the rate for one tier.
func (r FeeRates) Rate(opt FeeOption) (float64, error) {
	switch opt {
	case FeeAverage:
		return r.Average, nil
	case FeeFast, "":
		return r.Fast, nil
	case FeeFastest:
		return r.Fastest, nil
	}
	return 0, fmt.Errorf("unknown fee option %q", opt)
}

// FlatFees builds a flat Fees quote where every tier costs the same, the
// common case for chains with protocol-fixed transfer fees.
func FlatFees(fee decimal.Decimal) *Fees {
	return &Fees{Type: FeeFlat, Average: fee, Fast: fee, Fastest: fee}
}
