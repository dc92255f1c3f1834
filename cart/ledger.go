package cart

import (
	"errors"
	"slices"

	"storefront/models"

	"github.com/shopspring/decimal"
)

// ErrEmptyCart rejects a checkout attempt on an empty ledger.
var ErrEmptyCart = errors.New("cart is empty")

// Ledger is an ordered product → quantity mapping. Lines keep insertion order and no line
// ever holds a quantity below one. A Ledger is owned by a single session and is not safe for
// concurrent use.
type Ledger struct {
	lines []models.CartLine
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) index(productID int) int {
	return slices.IndexFunc(l.lines, func(line models.CartLine) bool {
		return line.ProductID == productID
	})
}

// Add increments the product's quantity, appending a new line on first add.
func (l *Ledger) Add(p models.Product) {
	if i := l.index(p.ID); i >= 0 {
		l.lines[i].Quantity++
		return
	}
	l.lines = append(l.lines, models.CartLine{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Quantity:  1,
		Thumbnail: p.Thumbnail,
	})
}

// Increase adds one unit to an existing line. Unknown ids are ignored.
func (l *Ledger) Increase(productID int) {
	if i := l.index(productID); i >= 0 {
		l.lines[i].Quantity++
	}
}

// Decrease removes one unit; the line is deleted when it reaches zero.
func (l *Ledger) Decrease(productID int) {
	i := l.index(productID)
	if i < 0 {
		return
	}
	if l.lines[i].Quantity <= 1 {
		l.lines = slices.Delete(l.lines, i, i+1)
		return
	}
	l.lines[i].Quantity--
}

// Remove deletes the line regardless of its quantity.
func (l *Ledger) Remove(productID int) {
	if i := l.index(productID); i >= 0 {
		l.lines = slices.Delete(l.lines, i, i+1)
	}
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.lines = nil
}

// Subtotal is Σ price × quantity.
func (l *Ledger) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Lines returns a copy of the lines in insertion order.
func (l *Ledger) Lines() []models.CartLine {
	return slices.Clone(l.lines)
}

// Quantity of a product, zero when absent.
func (l *Ledger) Quantity(productID int) int {
	if i := l.index(productID); i >= 0 {
		return l.lines[i].Quantity
	}
	return 0
}

// Len is the number of distinct lines.
func (l *Ledger) Len() int { return len(l.lines) }

// Count is the total number of units across lines.
func (l *Ledger) Count() int {
	n := 0
	for _, line := range l.lines {
		n += line.Quantity
	}
	return n
}

func (l *Ledger) IsEmpty() bool { return len(l.lines) == 0 }

// CheckoutReady returns ErrEmptyCart when there is nothing to buy.
func (l *Ledger) CheckoutReady() error {
	if l.IsEmpty() {
		return ErrEmptyCart
	}
	return nil
}
