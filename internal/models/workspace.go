package models

// Workspace is the subset of the catalog entry the booking flow needs:
// prices per granularity and the posted operating hours.
type Workspace struct {
	ID           string `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	PricePerHour int64  `json:"pricePerHour" yaml:"price_per_hour"`
	PricePerDay  int64  `json:"pricePerDay" yaml:"price_per_day"`
	Open24h      bool   `json:"open24h" yaml:"open_24h"`
	OpenHour     int    `json:"openHour" yaml:"open_hour"`
	CloseHour    int    `json:"closeHour" yaml:"close_hour"`
}

// PriceFor returns the unit price for a price mode.
func (w *Workspace) PriceFor(mode string) int64 {
	if mode == PriceModeDaily {
		return w.PricePerDay
	}
	return w.PricePerHour
}

// Customer is the authenticated user attempting to book. The gateway does
// not own authentication; it only gates checkout on presence and phone.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
