package domain

// CommandKind names a cart command the way it appears in logs, metrics and
// events.
type CommandKind string

const (
	KindAddToCart      CommandKind = "ADD_TO_CART"
	KindUpdateCart     CommandKind = "UPDATE_CART"
	KindRemoveFromCart CommandKind = "REMOVE_FROM_CART"
	KindClearCart      CommandKind = "CLEAR_CART"
	KindSetCart        CommandKind = "SET_CART"
)

// Command is a cart mutation. The set of commands is closed: only the types
// in this file implement it.
type Command interface {
	Kind() CommandKind
	command()
}

// AddToCart adds Quantity units of Item.ProductID, merging with an existing
// line if there is one. Item carries the product snapshot.
type AddToCart struct {
	Item     LineItem
	Quantity int
}

// UpdateCart replaces the quantity of an existing line.
type UpdateCart struct {
	ProductID string
	Quantity  int
}

// RemoveFromCart drops the line for ProductID.
type RemoveFromCart struct {
	ProductID string
}

// ClearCart empties the cart.
type ClearCart struct{}

// SetCart replaces the whole cart. It is only issued when a cart is
// hydrated from storage.
type SetCart struct {
	Items Cart
}

func (AddToCart) Kind() CommandKind      { return KindAddToCart }
func (UpdateCart) Kind() CommandKind     { return KindUpdateCart }
func (RemoveFromCart) Kind() CommandKind { return KindRemoveFromCart }
func (ClearCart) Kind() CommandKind      { return KindClearCart }
func (SetCart) Kind() CommandKind        { return KindSetCart }

func (AddToCart) command()      {}
func (UpdateCart) command()     {}
func (RemoveFromCart) command() {}
func (ClearCart) command()      {}
func (SetCart) command()        {}
