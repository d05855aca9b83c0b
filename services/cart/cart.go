package cart

import "slices"

// Line is a product and how many of it. It never carries a price.
type Line struct {
	ProductUID string `json:"id" form:"id"`
	Quantity   int    `json:"quantity" form:"quantity"`
}

// MaxQuantity is the most of one product a cart, and so an order, can hold.
const MaxQuantity = 99

// Cart keeps one line per product, in the order products were first added.
// totalCount always equals the sum of all quantities.
type Cart struct {
	lines      []Line
	totalCount int
}

// New restores a cart. Lines without product or with a quantity outside 1..MaxQuantity are dropped,
// lines for the same product are merged up to MaxQuantity.
func New(lines ...Line) Cart {
	cart := Cart{}
	for _, line := range lines {
		if line.ProductUID == "" || line.Quantity <= 0 || line.Quantity > MaxQuantity {
			continue
		}
		cart.addQuantity(line.ProductUID, line.Quantity)
	}
	return cart
}

func (c *Cart) Add(productUID string) {
	if productUID == "" {
		return
	}
	c.addQuantity(productUID, 1)
}

func (c *Cart) addQuantity(productUID string, quantity int) {
	c.lines = slices.Clone(c.lines)
	idx := c.indexOf(productUID)
	if idx >= 0 {
		quantity = min(quantity, MaxQuantity-c.lines[idx].Quantity)
		c.lines[idx].Quantity += quantity
	} else {
		c.lines = append(c.lines, Line{ProductUID: productUID, Quantity: quantity})
	}
	c.totalCount += quantity
}

// Decrease removes the line once its quantity reaches zero. Unknown products are ignored.
func (c *Cart) Decrease(productUID string) {
	idx := c.indexOf(productUID)
	if idx < 0 {
		return
	}

	c.lines = slices.Clone(c.lines)
	c.lines[idx].Quantity--
	c.totalCount--
	if c.lines[idx].Quantity == 0 {
		c.lines = slices.Delete(c.lines, idx, idx+1)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
	c.totalCount = 0
}

func (c Cart) TotalCount() int {
	return c.totalCount
}

func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c Cart) Lines() []Line {
	return append([]Line{}, c.lines...)
}

func (c Cart) QuantityOf(productUID string) int {
	idx := c.indexOf(productUID)
	if idx < 0 {
		return 0
	}
	return c.lines[idx].Quantity
}

func (c Cart) indexOf(productUID string) int {
	for i, line := range c.lines {
		if line.ProductUID == productUID {
			return i
		}
	}
	return -1
}
