package cart

// Fee types.
const (
	FeePercentage = "percentage"
	FeeValue      = "value"
)

// CartFee is a surcharge rule. Percentage fees are computed against the cart
// total; value fees are promoted into a synthetic line item so they take part
// in tax like a product. Pure data holder, computation lives in Cart.
type CartFee struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`

	Taxable bool `json:"taxable"`

	// TaxRate overrides the default tax percent for promoted value fees.
	// nil means no override.
	TaxRate *float64 `json:"tax_rate,omitempty"`
}

// NewFee validates and builds a fee.
func NewFee(name string, value float64, feeType string) (*CartFee, error) {
	switch feeType {
	case FeePercentage:
		if value <= 0 || value > 1 {
			return nil, &ValidationError{Msg: "Invalid value for a percentage fee. The value must be between 0 and 1."}
		}
	case FeeValue:
		// any amount
	default:
		return nil, &ValidationError{Msg: `Invalid Fee Type. Type should be "percentage" or "value"`}
	}

	return &CartFee{Name: name, Type: feeType, Value: value}, nil
}
