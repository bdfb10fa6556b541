package cart

import (
	"encoding/json"
	"fmt"
	"strings"
)

const instancePrefix = "cart."

// StoredCartRepository is the relational persistence boundary for cart
// blobs. Replace is a delete-then-insert pair, not an atomic swap;
// concurrent stores for the same (identifier, instance) must be serialized
// by the caller.
type StoredCartRepository interface {
	Exists(identifier, instance string) (bool, error)
	Load(identifier, instance string) ([]byte, error)
	Replace(identifier, instance string, content []byte) error
	Delete(identifier string) error
}

// Cart is the aggregate root: an instance-named, session-backed collection
// of line items plus cart-level coupons and fees.
type Cart struct {
	cfg      *Config
	session  SessionStore
	events   Dispatcher
	repo     StoredCartRepository
	resolver ModelResolver

	instance    string
	autoRunning bool
}

// New builds a cart over the given session store, selecting the configured
// default instance. A nil dispatcher discards events.
func New(cfg *Config, session SessionStore, events Dispatcher) *Cart {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if events == nil {
		events = NopDispatcher()
	}

	c := &Cart{cfg: cfg, session: session, events: events}
	c.Instance("")
	return c
}

// SetRepository wires the relational store used by Store/Restore.
func (c *Cart) SetRepository(repo StoredCartRepository) *Cart {
	c.repo = repo
	return c
}

// SetResolver wires the lookup capability for associated models.
func (c *Cart) SetResolver(r ModelResolver) *Cart {
	c.resolver = r
	return c
}

// Config exposes the pricing configuration the cart was built with.
func (c *Cart) Config() *Config { return c.cfg }

// Instance switches the cart to the named instance ("" selects the default).
func (c *Cart) Instance(name string) *Cart {
	if name == "" {
		name = c.cfg.DefaultInstance
	}
	c.instance = instancePrefix + name
	return c
}

// CurrentInstance returns the active instance name.
func (c *Cart) CurrentInstance() string {
	return strings.TrimPrefix(c.instance, instancePrefix)
}

// Instances lists the instance names present in the session.
func (c *Cart) Instances() []string {
	var names []string
	for _, k := range c.session.Keys() {
		if strings.HasPrefix(k, instancePrefix) {
			names = append(names, strings.TrimPrefix(k, instancePrefix))
		}
	}
	return names
}

func (c *Cart) getState() *State {
	if s, ok := c.session.Get(c.instance); ok {
		return s
	}
	return NewState()
}

func (c *Cart) putState(s *State) {
	c.session.Put(c.instance, s)
}

// Content returns the line items in insertion order.
func (c *Cart) Content() []*CartItem {
	return c.getState().Items.Items()
}

// Count sums the quantities across all lines.
func (c *Cart) Count() float64 {
	return c.CartQty()
}

// RowCount is the number of distinct lines.
func (c *Cart) RowCount() int {
	return c.getState().Items.Len()
}

// CartQty sums quantities, optionally restricted to one row.
func (c *Cart) CartQty(rowID ...string) float64 {
	var qty float64
	for _, item := range c.getState().Items.Items() {
		if len(rowID) > 0 && rowID[0] != item.RowID {
			continue
		}
		qty += item.Qty
	}
	return qty
}

// Add normalizes the identity into a line item and inserts it, merging
// quantities when the rowID already exists.
func (c *Cart) Add(id, name string, qty float64, price Price, options Options) (*CartItem, error) {
	item, err := NewItem(c.cfg, id, name, price, options)
	if err != nil {
		return nil, err
	}
	if err := item.SetQuantity(qty); err != nil {
		return nil, err
	}
	return c.AddItem(item), nil
}

// AddBuyable inserts a purchasable model as a line item.
func (c *Cart) AddBuyable(b Buyable, qty float64, options Options) (*CartItem, error) {
	item, err := NewItemFromBuyable(c.cfg, b, options)
	if err != nil {
		return nil, err
	}
	if err := item.SetQuantity(qty); err != nil {
		return nil, err
	}
	return c.AddItem(item), nil
}

// AddBatch inserts several prepared items.
func (c *Cart) AddBatch(items []*CartItem) []*CartItem {
	out := make([]*CartItem, 0, len(items))
	for _, item := range items {
		out = append(out, c.AddItem(item))
	}
	return out
}

// AddItem inserts a prepared item, merging quantity into an existing row
// with the same identity. Emits cart.added and runs the configured auto
// discounts.
func (c *Cart) AddItem(item *CartItem) *CartItem {
	item.attach(c.cfg)

	st := c.getState()
	if existing, ok := st.Items.Get(item.RowID); ok {
		item.Qty += existing.Qty
	}
	st.Items.Put(item)

	if c.cfg.ComparePrice.Discount {
		item.AddCoupon(&CartCoupon{
			Code:   c.cfg.ComparePrice.DiscountCode,
			Type:   CouponComparePrice,
			Status: true,
		})
	}

	c.events.Dispatch(EventAdded, item)
	c.putState(st)

	c.runAuto()
	return item
}

// runAuto attempts the configured auto coupons and fees. Coupon eligibility
// failures are swallowed; the cart may qualify later.
func (c *Cart) runAuto() {
	if c.autoRunning {
		return
	}
	c.autoRunning = true
	defer func() { c.autoRunning = false }()

	st := c.getState()
	for _, coupon := range c.cfg.Coupon.AutoCoupons {
		if _, applied := st.Coupons[coupon.Code]; applied {
			continue
		}
		_ = c.AddCoupon(coupon)
		st = c.getState()
	}
	for _, fee := range c.cfg.Fee.AutoFees {
		if fee.Type == FeePercentage {
			if _, applied := st.Fees[fee.Name]; applied {
				continue
			}
		} else if st.Items.Has(GenerateRowID(fee.Name, nil)) {
			continue
		}
		c.AddFee(fee)
		st = c.getState()
	}
}

// ItemUpdate is a partial patch for Update. Nil fields keep their value.
type ItemUpdate struct {
	ID      *string
	Name    *string
	Qty     *float64
	Price   *float64
	Options *Options
	Saved   *bool
}

// UpdateQty replaces a line's quantity. A quantity of zero or less removes
// the line instead (a defined removal path, not an error).
func (c *Cart) UpdateQty(rowID string, qty float64) (*CartItem, error) {
	return c.Update(rowID, ItemUpdate{Qty: &qty})
}

// Update patches the identified line. Changing the identity or options
// regenerates the rowID; when the new rowID collides with another line the
// quantities merge and the transient line is discarded.
func (c *Cart) Update(rowID string, patch ItemUpdate) (*CartItem, error) {
	item, err := c.Get(rowID)
	if err != nil {
		return nil, err
	}

	if patch.ID != nil {
		item.ID = *patch.ID
	}
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Qty != nil {
		if *patch.Qty == 0 {
			item.Qty = 0 // folds into the removal path below
		} else if err := item.SetQuantity(*patch.Qty); err != nil {
			return nil, err
		}
	}
	if patch.Price != nil {
		item.setPrice(*patch.Price)
	}
	if patch.Options != nil {
		item.Options = patch.Options.clone()
	}
	if patch.Saved != nil {
		item.SetSaved(*patch.Saved)
	}
	item.RowID = GenerateRowID(item.ID, item.Options)

	st := c.getState()
	if rowID != item.RowID {
		st.Items.Pull(rowID)
		if existing, ok := st.Items.Get(item.RowID); ok {
			item.Qty += existing.Qty
		}
	}

	if item.Qty <= 0 {
		st.Items.Pull(item.RowID)
		c.events.Dispatch(EventRemoved, item)
		c.putState(st)
		return nil, nil
	}

	st.Items.Put(item)
	c.events.Dispatch(EventUpdated, item)
	c.putState(st)
	return item, nil
}

// Get returns the line under rowID or an UnknownRowError.
func (c *Cart) Get(rowID string) (*CartItem, error) {
	item, ok := c.getState().Items.Get(rowID)
	if !ok {
		return nil, &UnknownRowError{RowID: rowID}
	}
	return item, nil
}

// Remove deletes the line under rowID.
func (c *Cart) Remove(rowID string) error {
	item, err := c.Get(rowID)
	if err != nil {
		return err
	}

	st := c.getState()
	st.Items.Pull(item.RowID)
	c.events.Dispatch(EventRemoved, item)
	c.putState(st)
	return nil
}

// Destroy drops the active instance from the session.
func (c *Cart) Destroy() {
	c.session.Remove(c.instance)
}

// Search returns the lines matching the predicate, in insertion order.
func (c *Cart) Search(match func(*CartItem) bool) []*CartItem {
	var out []*CartItem
	for _, item := range c.Content() {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

// SetTax replaces the tax rate of one line.
func (c *Cart) SetTax(rowID string, rate float64) error {
	item, err := c.Get(rowID)
	if err != nil {
		return err
	}

	item.SetTaxRate(rate)

	st := c.getState()
	st.Items.Put(item)
	c.putState(st)
	return nil
}

// Associate points a line at an external model, validating the kind against
// the wired resolver.
func (c *Cart) Associate(rowID, kind, id string) error {
	if c.resolver != nil && !c.resolver.Resolves(kind) {
		return &UnknownModelError{Kind: kind}
	}

	item, err := c.Get(rowID)
	if err != nil {
		return err
	}

	item.Associate(kind, id)

	st := c.getState()
	st.Items.Put(item)
	c.putState(st)
	return nil
}

// Model resolves a line's associated model through the wired resolver.
func (c *Cart) Model(rowID string) (any, error) {
	item, err := c.Get(rowID)
	if err != nil {
		return nil, err
	}
	return item.Model(c.resolver)
}

// AddCoupon checks eligibility against the whole cart and, on success,
// stores the coupon and pushes it down into every current line so item
// pricing reflects it. Failure leaves the cart untouched.
func (c *Cart) AddCoupon(coupon *CartCoupon) error {
	if err := coupon.CanApply(c); err != nil {
		return err
	}

	st := c.getState()
	if !c.cfg.Coupon.AllowMultiple {
		st.Coupons = make(map[string]*CartCoupon)
	}
	st.Coupons[coupon.Code] = coupon

	for _, item := range st.Items.Items() {
		item.AddCoupon(coupon)
	}

	c.putState(st)
	return nil
}

// ClearCoupons removes every cart-level and line-level coupon.
func (c *Cart) ClearCoupons() {
	st := c.getState()
	st.Coupons = make(map[string]*CartCoupon)
	for _, item := range st.Items.Items() {
		item.ClearCoupons()
	}
	c.putState(st)
}

// CartDiscount sums the value-type coupon amounts, deduplicated by code
// across the cart and its lines. Percentage coupons never appear here; they
// live in the per-item discount fraction.
func (c *Cart) CartDiscount() float64 {
	return c.cartDiscount(c.getState())
}

func (c *Cart) cartDiscount(st *State) float64 {
	if !c.cfg.Coupon.Enable {
		return 0
	}

	var d float64
	seen := make(map[string]bool)
	for code, coupon := range st.Coupons {
		if coupon.Type == CouponValue && !seen[code] {
			d += coupon.Value
			seen[code] = true
		}
	}
	for _, item := range st.Items.Items() {
		for code, coupon := range item.Coupons() {
			if coupon.Type == CouponValue && !seen[code] {
				d += coupon.Value
				seen[code] = true
			}
		}
	}
	return d
}

// AddFee registers a surcharge. Value fees are promoted into a synthetic
// line item (returned) so they participate in tax; percentage fees stay
// cart-level and the returned item is nil.
func (c *Cart) AddFee(fee *CartFee) *CartItem {
	if fee.Type == FeeValue {
		item, err := NewItem(c.cfg, fee.Name, fee.Name, Price{Amount: fee.Value, Compare: fee.Value}, nil)
		if err != nil {
			// fee names and values were validated at construction
			panic(fmt.Sprintf("cart: promoting fee %q: %v", fee.Name, err))
		}
		if fee.TaxRate != nil {
			item.TaxRate = *fee.TaxRate
			item.Taxable = *fee.TaxRate > 0
		} else if !fee.Taxable {
			item.Taxable = false
			item.TaxRate = 0
		}
		return c.AddItem(item)
	}

	st := c.getState()
	st.Fees[fee.Name] = fee
	c.putState(st)
	return nil
}

// CartFees returns the accumulated percentage-fee amount. The base is the
// taxed items total excluding fees, net of the cart value discount when so
// configured, which keeps the result independent of fee insertion order.
func (c *Cart) CartFees() float64 {
	return c.cartFees(c.getState())
}

func (c *Cart) cartFees(st *State) float64 {
	base := c.itemsTotal(st)
	if c.cfg.Fee.DiscountedBase {
		base -= c.cartDiscount(st)
	}

	var fee float64
	for _, f := range st.Fees {
		if f.Type == FeePercentage {
			fee += base * f.Value
		}
	}
	return fee
}

func (c *Cart) itemsTotal(st *State) float64 {
	var total float64
	for _, item := range st.Items.Items() {
		total += item.Total(true)
	}
	return total
}

// Total is the cart total with discounts and fees applied.
func (c *Cart) Total() float64 {
	return c.TotalWith(true, true)
}

// TotalWith computes the cart total, optionally excluding the cart value
// discount and/or the percentage fees.
func (c *Cart) TotalWith(includeDiscount, includeFees bool) float64 {
	st := c.getState()

	total := c.itemsTotal(st)
	if includeDiscount {
		total -= c.cartDiscount(st)
	}
	if includeFees {
		total += c.cartFees(st)
	}
	return total
}

// Subtotal sums the untaxed line prices.
func (c *Cart) Subtotal() float64 {
	var sub float64
	for _, item := range c.Content() {
		sub += item.Subtotal(true)
	}
	return sub
}

// Tax sums the line tax amounts.
func (c *Cart) Tax() float64 {
	var tax float64
	for _, item := range c.Content() {
		tax += item.TaxTotal(true)
	}
	return tax
}

// Savings is the total saved versus the undiscounted baseline: all line
// discounts plus the cart value discount.
func (c *Cart) Savings() float64 {
	st := c.getState()

	var s float64
	for _, item := range st.Items.Items() {
		s += item.LineDiscount()
	}
	return s + c.cartDiscount(st)
}

// ComparePrice sums the quantity-weighted compare prices across lines.
func (c *Cart) ComparePrice() float64 {
	var sum float64
	for _, item := range c.Content() {
		sum += item.Qty * item.ComparePriceValue()
	}
	return sum
}

// Format renders a monetary value with the cart's format configuration.
func (c *Cart) Format(v float64) string { return Format(v, c.cfg.Format) }

// Metric names accepted by WithInstance.
var metricFuncs = map[string]func(*Cart) float64{
	"total":        (*Cart).Total,
	"count":        (*Cart).Count,
	"tax":          (*Cart).Tax,
	"subtotal":     (*Cart).Subtotal,
	"cartDiscount": (*Cart).CartDiscount,
	"cartFees":     (*Cart).CartFees,
	"savings":      (*Cart).Savings,
	"comparePrice": (*Cart).ComparePrice,
}

// WithInstance computes one whitelisted metric per named instance and sums
// the results. The active instance is restored before returning.
func (c *Cart) WithInstance(instances []string, metric string) (float64, error) {
	fn, ok := metricFuncs[metric]
	if !ok {
		return 0, &UnknownMetricError{Metric: metric}
	}

	saved := c.CurrentInstance()
	defer c.Instance(saved)

	var sum float64
	for _, name := range instances {
		c.Instance(name)
		sum += fn(c)
	}
	return sum, nil
}

// Store serializes the active instance's state into the relational store,
// replacing any previous row for (identifier, instance).
func (c *Cart) Store(identifier string) error {
	if c.repo == nil {
		return &ConfigError{Msg: "no cart repository configured"}
	}

	blob, err := json.Marshal(c.getState())
	if err != nil {
		return fmt.Errorf("serialize cart content: %w", err)
	}

	if err := c.repo.Replace(identifier, c.CurrentInstance(), blob); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}

	c.events.Dispatch(EventStored, nil)
	return nil
}

// Restore merges a previously stored state into the active instance: items
// merge by rowID (stored rows win), coupons and fees are replaced
// wholesale. A missing record is a silent no-op.
func (c *Cart) Restore(identifier string) error {
	if c.repo == nil {
		return &ConfigError{Msg: "no cart repository configured"}
	}

	exists, err := c.repo.Exists(identifier, c.CurrentInstance())
	if err != nil {
		return fmt.Errorf("restore cart: %w", err)
	}
	if !exists {
		return nil
	}

	blob, err := c.repo.Load(identifier, c.CurrentInstance())
	if err != nil {
		return fmt.Errorf("restore cart: %w", err)
	}

	stored := NewState()
	if err := json.Unmarshal(blob, stored); err != nil {
		return fmt.Errorf("deserialize cart content: %w", err)
	}

	st := c.getState()
	for _, item := range stored.Items.Items() {
		item.attach(c.cfg)
		st.Items.Put(item)
	}
	st.Coupons = stored.Coupons
	if st.Coupons == nil {
		st.Coupons = make(map[string]*CartCoupon)
	}
	st.Fees = stored.Fees
	if st.Fees == nil {
		st.Fees = make(map[string]*CartFee)
	}

	c.events.Dispatch(EventRestored, nil)
	c.putState(st)
	return nil
}

// DeleteStoredCart removes every stored row for the identifier.
func (c *Cart) DeleteStoredCart(identifier string) error {
	if c.repo == nil {
		return &ConfigError{Msg: "no cart repository configured"}
	}
	return c.repo.Delete(identifier)
}

// Coupons returns the cart-level coupons keyed by code.
func (c *Cart) Coupons() map[string]*CartCoupon {
	return c.getState().Coupons
}

// Fees returns the cart-level fees keyed by name.
func (c *Cart) Fees() map[string]*CartFee {
	return c.getState().Fees
}
