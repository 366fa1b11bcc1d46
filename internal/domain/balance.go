package domain

import (
	"github.com/shopspring/decimal"
)

// Balances per-asset amounts, keyed by asset symbol ("USDT", "TRX").
// Amounts are never negative.
type Balances map[string]decimal.Decimal

// Amount returns the amount held for the asset, zero if unknown.
func (b Balances) Amount(asset string) decimal.Decimal {
	if v, ok := b[asset]; ok {
		return v
	}
	return decimal.Zero
}

// Clone returns an independent copy of the mapping.
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for asset, amount := range b {
		out[asset] = amount
	}
	return out
}

// AssetBalance single entry of the balance endpoint response.
type AssetBalance struct {
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
}
