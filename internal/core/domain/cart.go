package domain

import "time"

// Cart is a customer's pending basket, kept in the cache rather than the
// document store.
type Cart struct {
	CustomerID string     `json:"customer_id"`
	Items      []CartItem `json:"items"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CartItem is a product line in the cart, priced at the time it was added.
type CartItem struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	ImageURL   string  `json:"image_url,omitempty"`
	VendorID   string  `json:"vendor_id"`
	VendorName string  `json:"vendor_name"`
}

// Total returns the sum of price × quantity over all items.
func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var n int
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// FindItem returns the index of productID or -1.
func (c *Cart) FindItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// VendorGroup is the slice of a cart belonging to one vendor.
type VendorGroup struct {
	VendorID   string
	VendorName string
	Items      []CartItem
	Total      float64
}

// GroupByVendor splits the cart into per-vendor groups, in first-seen order.
func (c *Cart) GroupByVendor() []VendorGroup {
	idx := make(map[string]int)
	var groups []VendorGroup
	for _, it := range c.Items {
		i, ok := idx[it.VendorID]
		if !ok {
			i = len(groups)
			idx[it.VendorID] = i
			groups = append(groups, VendorGroup{VendorID: it.VendorID, VendorName: it.VendorName})
		}
		groups[i].Items = append(groups[i].Items, it)
		groups[i].Total += it.Price * float64(it.Quantity)
	}
	return groups
}
