package domain

// LineItem is one product in a cart. Name, Price, Description and ImageURL
// are copied from the product when it is first added and are never
// refreshed from the catalog afterwards.
type LineItem struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Quantity    int    `json:"quantity"`
}

// Subtotal is Price * Quantity in minor units.
func (li LineItem) Subtotal() int64 {
	return li.Price * int64(li.Quantity)
}

// Valid reports whether the item could have been produced by the cart
// commands: a non-empty product id and a positive quantity.
func (li LineItem) Valid() bool {
	return li.ProductID != "" && li.Quantity >= 1
}

// Cart is an ordered list of line items with at most one entry per product.
// A Cart value is never modified in place; commands produce a new Cart.
type Cart []LineItem

// Empty returns a non-nil cart with no items, which serializes as [].
func Empty() Cart { return Cart{} }

// Find returns the index of the item for productID, or -1.
func (c Cart) Find(productID string) int {
	for i, item := range c {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// ItemCount is the sum of all quantities.
func (c Cart) ItemCount() int {
	n := 0
	for _, item := range c {
		n += item.Quantity
	}
	return n
}

// TotalAmount is the sum of all subtotals in minor units.
func (c Cart) TotalAmount() int64 {
	var total int64
	for _, item := range c {
		total += item.Subtotal()
	}
	return total
}

// Clone returns an independent copy. Clone of nil is an empty cart.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Snapshot builds the line item recorded for p when it is added to a cart.
func Snapshot(p Product, quantity int) LineItem {
	return LineItem{
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Quantity:    quantity,
	}
}
