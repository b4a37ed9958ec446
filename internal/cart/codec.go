package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
)

var errMalformed = errors.New("malformed cart snapshot")

// Encode serializes c as a JSON array; an empty or nil cart becomes [].
func Encode(c domain.Cart) ([]byte, error) {
	if c == nil {
		c = domain.Empty()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return data, nil
}

// Decode parses a stored snapshot. Anything other than an array of valid
// line items with distinct product ids is rejected.
func Decode(data []byte) (domain.Cart, error) {
	var c domain.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformed, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: not an array", errMalformed)
	}
	seen := make(map[string]struct{}, len(c))
	for i, item := range c {
		if !item.Valid() {
			return nil, fmt.Errorf("%w: invalid item at %d", errMalformed, i)
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, fmt.Errorf("%w: duplicate product %s", errMalformed, item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
	}
	return c, nil
}
