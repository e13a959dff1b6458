package sales

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"backoffice-service/internal/models"
)

type CartLine struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	// Stock is the quantity known when the line was last validated.
	Stock int `json:"stock"`
}

func (l CartLine) Total() decimal.Decimal {
	return decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// Cart is one user's pending sale. Stock checks here use the last known
// quantity; checkout re-checks live stock.
type Cart struct {
	mu    sync.Mutex
	lines []CartLine
}

func (c *Cart) Add(p models.Product, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidQuantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, line := range c.lines {
		if line.ProductID != p.ProductID {
			continue
		}
		merged := line.Quantity + quantity
		if merged > p.Quantity {
			return fmt.Errorf("%w: %s has %d available, cart would hold %d", ErrInsufficientStock, p.Name, p.Quantity, merged)
		}
		c.lines[i].Quantity = merged
		c.lines[i].ProductName = p.Name
		c.lines[i].UnitPrice = p.Price
		c.lines[i].Stock = p.Quantity
		return nil
	}

	if quantity > p.Quantity {
		return fmt.Errorf("%w: %s has %d available, requested %d", ErrInsufficientStock, p.Name, p.Quantity, quantity)
	}

	c.lines = append(c.lines, CartLine{
		ProductID:   p.ProductID,
		ProductName: p.Name,
		Quantity:    quantity,
		UnitPrice:   p.Price,
		Stock:       p.Quantity,
	})
	return nil
}

// Update sets a line's quantity clamped to [1, stock]. It reports the
// stored quantity and whether clamping changed the request.
func (c *Cart) Update(productID, quantity, stock int) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, line := range c.lines {
		if line.ProductID != productID {
			continue
		}
		if stock < 1 {
			return line.Quantity, false, fmt.Errorf("%w: product %d is out of stock", ErrInsufficientStock, productID)
		}
		clamped := min(max(quantity, 1), stock)
		c.lines[i].Quantity = clamped
		c.lines[i].Stock = stock
		return clamped, clamped != quantity, nil
	}
	return 0, false, fmt.Errorf("%w: product %d", ErrNotInCart, productID)
}

func (c *Cart) Remove(productID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, line := range c.lines {
		if line.ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Deduct removes sold quantities and keeps anything added since the
// lines were read.
func (c *Cart) Deduct(sold []CartLine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range sold {
		for i, line := range c.lines {
			if line.ProductID != s.ProductID {
				continue
			}
			if line.Quantity > s.Quantity {
				c.lines[i].Quantity -= s.Quantity
			} else {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			}
			break
		}
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines() {
		total = total.Add(line.Total())
	}
	return total
}

// CartView is the JSON shape of a cart.
type CartView struct {
	Lines []CartLine `json:"lines"`
	Total float64    `json:"total"`
}

func (c *Cart) View() CartView {
	return CartView{Lines: c.Lines(), Total: c.Total().InexactFloat64()}
}

// CartStore keeps one cart per signed-in user in memory.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*Cart)}
}

func (s *CartStore) Get(userID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[userID]
	if !ok {
		cart = &Cart{}
		s.carts[userID] = cart
	}
	return cart
}
