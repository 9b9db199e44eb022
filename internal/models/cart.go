package models

import "time"

// CartLine is one amenity or beverage attached to the booking.
type CartLine struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

func (l CartLine) LineTotal() int64 {
	return l.Quantity * l.UnitPrice
}

// CartSelection is the in-progress booking for one session. It is owned by
// the cart service and mutated only through its operations; Total is
// recomputed on every mutation and StartTime/EndTime are either both set or
// both empty.
type CartSelection struct {
	SessionID    string     `json:"sessionId"`
	WorkspaceID  string     `json:"workspaceId"`
	PricePerUnit int64      `json:"pricePerUnit"`
	PriceMode    string     `json:"priceMode"`
	StartTime    string     `json:"startTime"`
	EndTime      string     `json:"endTime"`
	AmenityList  []CartLine `json:"amenityList"`
	BeverageList []CartLine `json:"beverageList"`
	Total        int64      `json:"total"`
}

// HasTime reports whether a complete time range is selected.
func (c *CartSelection) HasTime() bool {
	return c.StartTime != "" && c.EndTime != ""
}

// ItemsTotal sums the amenity and beverage lines.
func (c *CartSelection) ItemsTotal() int64 {
	var sum int64
	for _, l := range c.AmenityList {
		sum += l.LineTotal()
	}
	for _, l := range c.BeverageList {
		sum += l.LineTotal()
	}
	return sum
}

// CheckoutHandoff is the durable cart snapshot written when checkout is
// requested and consumed exactly once by the checkout page.
type CheckoutHandoff struct {
	SessionID    string     `json:"sessionId"`
	WorkspaceID  string     `json:"workspaceId"`
	AmenityList  []CartLine `json:"amenityList"`
	BeverageList []CartLine `json:"beverageList"`
	Total        int64      `json:"total"`
	StartTime    string     `json:"startTime"`
	EndTime      string     `json:"endTime"`
	CreatedAt    time.Time  `json:"createdAt"`
}
