package explorer

import (
	"context"
	"fmt"
)

// NativeTransactionFee reads THORChain's protocol-fixed native transfer fee
// (in 1e8 base units) from a thornode's constants endpoint.
func NativeTransactionFee(ctx context.Context, client *Client, baseURL string) (int64, error) {
	var out struct {
		Int64Values struct {
			NativeTransactionFee int64 `json:"NativeTransactionFee"`
		} `json:"int_64_values"`
	}
	if err := client.GetJSON(ctx, baseURL+"/thorchain/constants", &out); err != nil {
		return 0, fmt.Errorf("failed to fetch thorchain constants: %w", err)
	}
	if out.Int64Values.NativeTransactionFee <= 0 {
		return 0, fmt.Errorf("thorchain constants missing NativeTransactionFee")
	}
	return out.Int64Values.NativeTransactionFee, nil
}
