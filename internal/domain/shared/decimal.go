package shared

import "github.com/shopspring/decimal"

func init() {
	// Monetary fields serialize as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}
