package cart

// Product is the menu-side view of an item the customer can add to the cart.
// Price is in whole rubles; it is captured into the line once, at add time.
type Product struct {
	ID       string
	Name     string
	Price    int
	Weight   string
	ImageURL string
}

// Line is one distinct product held in the cart together with its quantity.
// Weight and ImageURL are display-only and carry no invariant.
type Line struct {
	ID        string
	Name      string
	UnitPrice int
	Quantity  int
	Weight    string
	ImageURL  string
}

// Snapshot holds the derived totals over all lines. It is always recomputed
// from the current line set and never mutated independently of it.
type Snapshot struct {
	TotalCount int
	TotalPrice int
}

// Store is the canonical set of cart lines for one customer session.
// Exactly one line exists per product id, quantity is always >= 1, and
// enumeration preserves insertion order.
//
// A Store is owned by a single session and is not safe for concurrent use.
type Store struct {
	order []string
	lines map[string]*Line
}

func NewStore() *Store {
	return &Store{lines: make(map[string]*Line)}
}

// Add puts one unit of the product into the cart. A repeated add of the same
// id only bumps the quantity; the unit price stays the one captured on the
// first add.
func (s *Store) Add(p Product) {
	if line, ok := s.lines[p.ID]; ok {
		line.Quantity++
		return
	}
	s.lines[p.ID] = &Line{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
		Weight:    p.Weight,
		ImageURL:  p.ImageURL,
	}
	s.order = append(s.order, p.ID)
}

// Increase bumps the quantity of an existing line by one. Unknown ids are a
// silent no-op: callers only invoke this for ids already shown in the cart.
func (s *Store) Increase(id string) {
	if line, ok := s.lines[id]; ok {
		line.Quantity++
	}
}

// Remove takes one unit of the given product out of the cart. When the last
// unit goes, the line is deleted entirely. Unknown ids are a no-op.
func (s *Store) Remove(id string) {
	line, ok := s.lines[id]
	if !ok {
		return
	}
	if line.Quantity > 1 {
		line.Quantity--
		return
	}
	delete(s.lines, id)
	for i, lid := range s.order {
		if lid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Count returns the quantity held for the given id, 0 when absent.
func (s *Store) Count(id string) int {
	if line, ok := s.lines[id]; ok {
		return line.Quantity
	}
	return 0
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	return len(s.lines)
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.order = nil
	s.lines = make(map[string]*Line)
}

// Lines returns a copy of all lines in insertion order. Mutating the result
// does not affect the store.
func (s *Store) Lines() []Line {
	out := make([]Line, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.lines[id])
	}
	return out
}

// Snapshot derives the current totals.
func (s *Store) Snapshot() Snapshot {
	return Summarize(s.Lines())
}

// Summarize computes totals from a line set in a single pass. It is a pure
// function so any caller can derive totals on demand without going through
// a Store.
func Summarize(lines []Line) Snapshot {
	var snap Snapshot
	for _, line := range lines {
		snap.TotalCount += line.Quantity
		snap.TotalPrice += line.Quantity * line.UnitPrice
	}
	return snap
}
