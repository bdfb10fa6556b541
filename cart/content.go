package cart

import "encoding/json"

// Content is the cart's line-item collection: a rowID keyed map that
// preserves insertion order so serialization is stable.
type Content struct {
	order []string
	items map[string]*CartItem
}

func NewContent() *Content {
	return &Content{items: make(map[string]*CartItem)}
}

func (c *Content) Has(rowID string) bool {
	_, ok := c.items[rowID]
	return ok
}

func (c *Content) Get(rowID string) (*CartItem, bool) {
	item, ok := c.items[rowID]
	return item, ok
}

// Put inserts or replaces the item under its rowID. Replacing keeps the
// original position.
func (c *Content) Put(item *CartItem) {
	if _, ok := c.items[item.RowID]; !ok {
		c.order = append(c.order, item.RowID)
	}
	c.items[item.RowID] = item
}

// Pull removes and returns the item under rowID.
func (c *Content) Pull(rowID string) (*CartItem, bool) {
	item, ok := c.items[rowID]
	if !ok {
		return nil, false
	}
	delete(c.items, rowID)
	for i, id := range c.order {
		if id == rowID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return item, true
}

// Items returns the line items in insertion order.
func (c *Content) Items() []*CartItem {
	out := make([]*CartItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *Content) Len() int { return len(c.items) }

// MarshalJSON renders the collection as an ordered array.
func (c *Content) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Items())
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var items []*CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.order = nil
	c.items = make(map[string]*CartItem, len(items))
	for _, item := range items {
		c.Put(item)
	}
	return nil
}
