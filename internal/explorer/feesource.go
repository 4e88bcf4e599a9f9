package explorer

import (
	"context"

	"github.com/armadahq/armada/chain"
)

// Recommended fee endpoints (mempool.space shape: fastestFee, halfHourFee,
// hourFee in sat/vB).
const (
	DefaultBitcoinFeeURL  = "https://mempool.space/api/v1/fees/recommended"
	DefaultLitecoinFeeURL = "https://litecoinspace.org/api/v1/fees/recommended"
)

// Fallback fee rates in sat/vB when no fee endpoint is reachable.
const (
	FallbackFeeRateBTC = 10
	FallbackFeeRateLTC = 2
	FallbackFeeRateBCH = 1
)

// FeeSource fetches recommended UTXO fee rates from a mempool.space-style
// endpoint, falling back to a static rate when the endpoint is unavailable.
type FeeSource struct {
	client   *Client
	url      string
	fallback float64
}

// NewFeeSource builds a fee source. An empty url means the fallback rate is
// always used.
func NewFeeSource(client *Client, url string, fallback float64) *FeeSource {
	return &FeeSource{client: client, url: url, fallback: fallback}
}

// FeeRates returns the current recommended fee rates. It never fails: when
// the endpoint is unreachable or returns nonsense, the static fallback rate
// is used for every tier.
func (f *FeeSource) FeeRates(ctx context.Context) chain.FeeRates {
	if f.url == "" {
		return f.fallbackRates()
	}

	var out struct {
		FastestFee  float64 `json:"fastestFee"`
		HalfHourFee float64 `json:"halfHourFee"`
		HourFee     float64 `json:"hourFee"`
	}
	if err := f.client.GetJSON(ctx, f.url, &out); err != nil {
		return f.fallbackRates()
	}
	if out.HourFee <= 0 || out.HalfHourFee <= 0 || out.FastestFee <= 0 {
		return f.fallbackRates()
	}

	return chain.FeeRates{
		Average: out.HourFee,
		Fast:    out.HalfHourFee,
		Fastest: out.FastestFee,
	}
}

func (f *FeeSource) fallbackRates() chain.FeeRates {
	return chain.FeeRates{
		Average: f.fallback,
		Fast:    f.fallback,
		Fastest: f.fallback * 2,
	}
}
