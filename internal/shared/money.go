package shared

import "github.com/shopspring/decimal"

func init() {
	// Amounts serialise as JSON numbers for client compatibility.
	decimal.MarshalJSONWithoutQuotes = true
}
