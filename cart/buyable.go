package cart

// BuyableProps is the typed property set a purchasable model exposes to the
// cart. ComparePrice 0 means unset (the configured multiplier derives one);
// TaxRate 0 with Taxable true falls back to the configured default.
type BuyableProps struct {
	ID           string
	Name         string
	Price        float64
	ComparePrice float64
	Taxable      bool
	TaxRate      float64
}

// Buyable is anything that can be dropped into the cart directly.
type Buyable interface {
	BuyableProps() BuyableProps
}

// BuyableKinder optionally names the model kind of a Buyable so the created
// item is associated with it for lazy resolution.
type BuyableKinder interface {
	BuyableKind() string
}

// ModelRef is a weak, typed reference to an external model.
type ModelRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// ModelResolver supplies lookup-by-id for associated models.
type ModelResolver interface {
	// Resolves reports whether the resolver knows the model kind.
	Resolves(kind string) bool

	// FindModel loads the model by kind and identifier.
	FindModel(kind, id string) (any, error)
}
