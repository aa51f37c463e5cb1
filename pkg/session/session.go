package session

// State is the full storefront session value. Everything a guest accumulates
// before logging in lives here: the session cart, the comparison list and the
// in-progress checkout data. The whole struct is serialized as one JSON value
// under the session id, so there is no partial-write ambiguity.
type State struct {
	Cart       map[string]CartLine `json:"cart,omitempty"`
	Comparison []string            `json:"comparison,omitempty"`
	OrderDraft *OrderDraft         `json:"order_draft,omitempty"`
}

// CartLine is one session-cart entry. Price is the unit price snapshotted at
// the moment the line was created, kept as a decimal string.
type CartLine struct {
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// OrderDraft carries checkout step data between requests until the order is
// confirmed.
type OrderDraft struct {
	FullName     string `json:"full_name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	DeliveryKind string `json:"delivery_kind,omitempty"`
	City         string `json:"city,omitempty"`
	Address      string `json:"address,omitempty"`
	PaymentKind  string `json:"payment_kind,omitempty"`
}

// ComparisonCapacity bounds the comparison list. Adding a fifth product evicts
// the oldest entry.
const ComparisonCapacity = 4

// NewState returns an empty session state.
func NewState() *State {
	return &State{Cart: map[string]CartLine{}}
}

// AddComparison appends a product id to the comparison list. Adding an id that
// is already present is a no-op; at capacity the oldest entry is evicted
// first. It reports whether the state changed.
func (s *State) AddComparison(productID string) bool {
	for _, id := range s.Comparison {
		if id == productID {
			return false
		}
	}
	if len(s.Comparison) >= ComparisonCapacity {
		s.Comparison = s.Comparison[1:]
	}
	s.Comparison = append(s.Comparison, productID)
	return true
}

// RemoveComparison drops a product id from the comparison list. It reports
// whether the id was present.
func (s *State) RemoveComparison(productID string) bool {
	for i, id := range s.Comparison {
		if id == productID {
			s.Comparison = append(s.Comparison[:i], s.Comparison[i+1:]...)
			return true
		}
	}
	return false
}

// ClearComparison empties the comparison list.
func (s *State) ClearComparison() {
	s.Comparison = nil
}

// SetCartLine upserts a session-cart line. A quantity of zero or less removes
// the line.
func (s *State) SetCartLine(productID string, quantity int, price string) {
	if s.Cart == nil {
		s.Cart = map[string]CartLine{}
	}
	if quantity <= 0 {
		delete(s.Cart, productID)
		return
	}
	line, ok := s.Cart[productID]
	if ok {
		line.Quantity = quantity
		s.Cart[productID] = line
		return
	}
	s.Cart[productID] = CartLine{Quantity: quantity, Price: price}
}

// AddCartLine increments an existing line or creates one with the given price
// snapshot.
func (s *State) AddCartLine(productID string, quantity int, price string) {
	if s.Cart == nil {
		s.Cart = map[string]CartLine{}
	}
	line, ok := s.Cart[productID]
	if ok {
		line.Quantity += quantity
		s.Cart[productID] = line
		return
	}
	s.Cart[productID] = CartLine{Quantity: quantity, Price: price}
}

// ClearCart empties the session cart.
func (s *State) ClearCart() {
	s.Cart = map[string]CartLine{}
}
