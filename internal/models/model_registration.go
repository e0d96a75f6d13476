package models

// DailyRegistration records meals and snacks collected by a customer on one
// visit. Append-only; deleting one reverses its effect on the active
// subscription's counters.
type DailyRegistration struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Meals      int    `json:"meals"`
	Snacks     int    `json:"snacks"`
	Notes      string `json:"notes"`
}
