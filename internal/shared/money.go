package shared

import "github.com/shopspring/decimal"

// DecimalFromText parses a numeric value read from the database as text.
// Money and quantity columns are cast to text on read so that values stay
// in exact decimal form instead of passing through binary floating point.
func DecimalFromText(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// NullDecimalFromText parses an optional numeric value read as text.
func NullDecimalFromText(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
