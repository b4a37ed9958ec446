package domain

// Reduce returns the cart that results from applying cmd to prev. It does no
// I/O and never modifies prev or its items; when cmd changes nothing, prev
// itself is returned. A nil or unrecognised command leaves the cart as is.
//
// Reduce does not validate quantities. Callers reject non-positive values
// before dispatching.
func Reduce(prev Cart, cmd Command) Cart {
	switch c := cmd.(type) {
	case AddToCart:
		return add(prev, c)
	case UpdateCart:
		return update(prev, c)
	case RemoveFromCart:
		return remove(prev, c.ProductID)
	case ClearCart:
		return Empty()
	case SetCart:
		return c.Items.Clone()
	default:
		return prev
	}
}

func add(prev Cart, c AddToCart) Cart {
	if i := prev.Find(c.Item.ProductID); i >= 0 {
		next := prev.Clone()
		next[i].Quantity += c.Quantity
		return next
	}
	next := make(Cart, len(prev), len(prev)+1)
	copy(next, prev)
	item := c.Item
	item.Quantity = c.Quantity
	return append(next, item)
}

func update(prev Cart, c UpdateCart) Cart {
	i := prev.Find(c.ProductID)
	if i < 0 {
		return prev
	}
	next := prev.Clone()
	next[i].Quantity = c.Quantity
	return next
}

func remove(prev Cart, productID string) Cart {
	i := prev.Find(productID)
	if i < 0 {
		return prev
	}
	next := make(Cart, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	return append(next, prev[i+1:]...)
}
