package cart

// Event names fired by the cart. Stored/restored events carry no item.
const (
	EventAdded    = "cart.added"
	EventUpdated  = "cart.updated"
	EventRemoved  = "cart.removed"
	EventStored   = "cart.stored"
	EventRestored = "cart.restored"
)

// Dispatcher receives fire-and-forget cart events.
type Dispatcher interface {
	Dispatch(event string, item *CartItem)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(event string, item *CartItem)

func (f DispatcherFunc) Dispatch(event string, item *CartItem) { f(event, item) }

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(string, *CartItem) {}

// NopDispatcher discards all events.
func NopDispatcher() Dispatcher { return nopDispatcher{} }
