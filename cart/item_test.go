package cart

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestNewItemValidation(t *testing.T) {
	cfg := newTestConfig()

	tests := []struct {
		name  string
		id    string
		label string
		price Price
		msg   string
	}{
		{"missing id", "", "First item", PriceOf(10), "Please supply a valid identifier."},
		{"missing name", "1", "", PriceOf(10), "Please supply a valid name."},
		{"nan price", "1", "First item", PriceOf(math.NaN()), "Please supply a valid price."},
		{"infinite price", "1", "First item", PriceOf(math.Inf(1)), "Please supply a valid price."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewItem(cfg, tt.id, tt.label, tt.price, nil)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("NewItem() error = %v, want ValidationError", err)
			}
			if validation.Msg != tt.msg {
				t.Errorf("message = %q, want %q", validation.Msg, tt.msg)
			}
		})
	}
}

func TestNewItemDefaults(t *testing.T) {
	cfg := newTestConfig()
	item, err := NewItem(cfg, "1", "First item", PriceOf(10), nil)
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}

	if item.Qty != 1 {
		t.Errorf("Qty = %v, want 1", item.Qty)
	}
	if !item.Taxable {
		t.Error("new items should default taxable")
	}
	if item.TaxRate != cfg.TaxRate {
		t.Errorf("TaxRate = %v, want config default %v", item.TaxRate, cfg.TaxRate)
	}
	approx(t, "derived comparePrice", item.ComparePriceValue(), 15.00)
}

func TestInvalidComparePriceMultiplier(t *testing.T) {
	cfg := newTestConfig()
	cfg.ComparePrice.DefaultMultiplier = 0.5

	_, err := NewItem(cfg, "1", "First item", PriceOf(10), nil)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("NewItem() error = %v, want ConfigError", err)
	}
}

func TestSetQuantityValidation(t *testing.T) {
	item, _ := NewItem(newTestConfig(), "1", "First item", PriceOf(10), nil)

	if err := item.SetQuantity(0); err == nil {
		t.Error("expected error for zero quantity")
	}
	if err := item.SetQuantity(math.NaN()); err == nil {
		t.Error("expected error for NaN quantity")
	}
	// Negative quantities are allowed so updates can fold into removal.
	if err := item.SetQuantity(-1); err != nil {
		t.Errorf("SetQuantity(-1): %v", err)
	}
}

func TestRowIDDeterministic(t *testing.T) {
	a := GenerateRowID("1", Options{"size": "L", "color": "red"})
	b := GenerateRowID("1", Options{"color": "red", "size": "L"})
	if a != b {
		t.Error("option order changed the rowID")
	}

	c := GenerateRowID("1", Options{"color": "blue", "size": "L"})
	if a == c {
		t.Error("different option values produced the same rowID")
	}
	if d := GenerateRowID("2", Options{"size": "L", "color": "red"}); d == a {
		t.Error("different ids produced the same rowID")
	}
}

func TestSubtotalAndTotalScaleWithQuantity(t *testing.T) {
	for _, qty := range []float64{1, 2, 3.5, 10} {
		item, _ := NewItem(newTestConfig(), "1", "First item", PriceOf(12.34), nil)
		if err := item.SetQuantity(qty); err != nil {
			t.Fatalf("SetQuantity(%v): %v", qty, err)
		}
		approx(t, "subtotal", item.Subtotal(true), qty*item.Price(true))
		approx(t, "total", item.Total(true), qty*item.PriceTax(true))
	}
}

func TestClearCouponsRestoresBaseline(t *testing.T) {
	item, _ := NewItem(newTestConfig(), "1", "First item", Price{Amount: 10, Compare: 20}, nil)
	item.SetTaxRate(19)

	if _, err := item.AddCouponOfType(CouponComparePrice, "hotdeal", 0); err != nil {
		t.Fatalf("AddCouponOfType: %v", err)
	}
	approx(t, "promoted unitPrice", item.UnitPrice(), 20.00)
	approx(t, "discounted price", item.Price(true), 10.00)

	item.ClearCoupons()

	approx(t, "unitPrice", item.UnitPrice(), 10.00)
	approx(t, "price", item.Price(true), 10.00)
	approx(t, "lineDiscount", item.LineDiscount(), 0.00)
}

func TestComparePriceCouponBelowPriceIsNoOp(t *testing.T) {
	item, _ := NewItem(newTestConfig(), "1", "First item", Price{Amount: 10, Compare: 9}, nil)

	if _, err := item.AddCouponOfType(CouponComparePrice, "hotdeal", 0); err != nil {
		t.Fatalf("AddCouponOfType: %v", err)
	}

	approx(t, "unitPrice", item.UnitPrice(), 10.00)
	approx(t, "price", item.Price(true), 10.00)
	if got := len(item.Coupons()); got != 0 {
		t.Errorf("item holds %d coupons, want 0", got)
	}
}

func TestItemFormat(t *testing.T) {
	cfg := newTestConfig()
	cfg.Format = FormatConfig{Decimals: 2, DecimalPoint: ".", ThousandSeparator: ",", Prepend: "$"}
	item, _ := NewItem(cfg, "1", "First item", PriceOf(1311.82), nil)

	if got := item.Format(item.Price(true)); got != "$1,311.82" {
		t.Errorf("Format = %q, want %q", got, "$1,311.82")
	}
}

type buyableWidget struct {
	id      string
	price   float64
	compare float64
	taxable bool
	taxRate float64
}

func (w buyableWidget) BuyableProps() BuyableProps {
	return BuyableProps{
		ID:           w.id,
		Name:         "Widget",
		Price:        w.price,
		ComparePrice: w.compare,
		Taxable:      w.taxable,
		TaxRate:      w.taxRate,
	}
}

func (w buyableWidget) BuyableKind() string { return "widget" }

func TestNewItemFromBuyable(t *testing.T) {
	item, err := NewItemFromBuyable(newTestConfig(), buyableWidget{
		id: "42", price: 10, compare: 20, taxable: true, taxRate: 19,
	}, nil)
	if err != nil {
		t.Fatalf("NewItemFromBuyable: %v", err)
	}

	if item.ID != "42" || item.Name != "Widget" {
		t.Errorf("item identity = %s/%s", item.ID, item.Name)
	}
	if item.TaxRate != 19 {
		t.Errorf("TaxRate = %v, want 19", item.TaxRate)
	}
	ref := item.AssociatedModel()
	if ref == nil || ref.Kind != "widget" || ref.ID != "42" {
		t.Errorf("AssociatedModel() = %+v, want widget/42", ref)
	}
}

func TestNewItemFromBuyableNonTaxable(t *testing.T) {
	item, err := NewItemFromBuyable(newTestConfig(), buyableWidget{
		id: "42", price: 10, taxable: false,
	}, nil)
	if err != nil {
		t.Fatalf("NewItemFromBuyable: %v", err)
	}

	if item.Taxable {
		t.Error("item should not be taxable")
	}
	approx(t, "tax", item.Tax(true), 0.00)
}

type countingResolver struct {
	calls int
}

func (r *countingResolver) Resolves(kind string) bool { return kind == "widget" }

func (r *countingResolver) FindModel(kind, id string) (any, error) {
	r.calls++
	return buyableWidget{id: id, price: 10}, nil
}

func TestModelResolutionIsMemoized(t *testing.T) {
	item, _ := NewItem(newTestConfig(), "42", "Widget", PriceOf(10), nil)
	item.Associate("widget", "42")

	resolver := &countingResolver{}
	for i := 0; i < 3; i++ {
		if _, err := item.Model(resolver); err != nil {
			t.Fatalf("Model: %v", err)
		}
	}
	if resolver.calls != 1 {
		t.Errorf("resolver called %d times, want 1 (memoized)", resolver.calls)
	}

	// Re-associating invalidates the cache.
	item.Associate("widget", "43")
	if _, err := item.Model(resolver); err != nil {
		t.Fatalf("Model: %v", err)
	}
	if resolver.calls != 2 {
		t.Errorf("resolver called %d times after re-associate, want 2", resolver.calls)
	}
}

func TestItemJSONRoundTrip(t *testing.T) {
	item, _ := NewItem(newTestConfig(), "1", "First item", Price{Amount: 10, Compare: 20}, Options{"size": "L"})
	item.SetTaxRate(19)
	if err := item.SetQuantity(2); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if _, err := item.AddCouponOfType(CouponComparePrice, "hotdeal", 0); err != nil {
		t.Fatalf("AddCouponOfType: %v", err)
	}

	blob, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got CartItem
	if err := json.Unmarshal(blob, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got.attach(newTestConfig())

	if got.RowID != item.RowID || got.Qty != 2 || got.Options["size"] != "L" {
		t.Errorf("round trip lost identity: %+v", got)
	}
	approx(t, "unitPrice", got.UnitPrice(), 20.00)
	approx(t, "price", got.Price(true), 10.00)
	approx(t, "total", got.Total(true), item.Total(true))
}
