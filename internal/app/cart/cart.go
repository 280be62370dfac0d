// Package cart holds the quantity rules of a shopping cart, independent of where it is stored.
package cart

import (
	"github.com/ashascraft/storefront-backend/internal/app/model"
)

// Item is one cart line. Product carries the live price and stock.
type Item struct {
	Product  model.Product `json:"product"`
	Quantity int           `json:"quantity"`
}

func (i Item) LineTotal() float64 {
	return i.Product.Price * float64(i.Quantity)
}

// Line is the persisted form of an Item.
type Line struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Cart keeps every entry at 1 <= quantity <= product.StockQty.
type Cart struct {
	Items []Item `json:"items"`
}

func New(items ...Item) *Cart {
	return &Cart{Items: items}
}

func clamp(quantity, stock int) int {
	if quantity > stock {
		quantity = stock
	}
	if quantity < 1 {
		quantity = 1
	}
	return quantity
}

func (c *Cart) index(productID uint) int {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// AddItem merges quantity into an existing entry or appends a new one.
// Products with no stock are ignored.
func (c *Cart) AddItem(product model.Product, quantity int) {
	if product.StockQty <= 0 {
		return
	}
	if i := c.index(product.ID); i >= 0 {
		c.Items[i].Product = product
		c.Items[i].Quantity = clamp(c.Items[i].Quantity+quantity, product.StockQty)
		return
	}
	c.Items = append(c.Items, Item{Product: product, Quantity: clamp(quantity, product.StockQty)})
}

// UpdateQuantity sets an entry's quantity. Zero or less removes it.
func (c *Cart) UpdateQuantity(productID uint, quantity int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 || c.Items[i].Product.StockQty <= 0 {
		c.RemoveItem(productID)
		return
	}
	c.Items[i].Quantity = clamp(quantity, c.Items[i].Product.StockQty)
}

func (c *Cart) RemoveItem(productID uint) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Subtotal prices each line at the product's current price.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

// Lines returns the storable projection of the cart.
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, Line{ProductID: item.Product.ID, Quantity: item.Quantity})
	}
	return lines
}

// Hydrate rebuilds a cart from stored lines and freshly loaded products.
// Lines whose product is gone or out of stock are dropped and quantities are
// re-clamped to current stock.
func Hydrate(lines []Line, products map[uint]model.Product) *Cart {
	c := New()
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok || product.StockQty <= 0 || line.Quantity <= 0 {
			continue
		}
		if i := c.index(product.ID); i >= 0 {
			c.Items[i].Quantity = clamp(c.Items[i].Quantity+line.Quantity, product.StockQty)
			continue
		}
		c.Items = append(c.Items, Item{Product: product, Quantity: clamp(line.Quantity, product.StockQty)})
	}
	return c
}
