package models

// Snapshot is the full export/import unit: all five collections plus
// settings. It is also the on-disk format of the local store, so an export
// of a local deployment is byte-compatible with its data file.
type Snapshot struct {
	Customers          []map[string]any `json:"customers"`
	Subscriptions      []map[string]any `json:"subscriptions"`
	Packages           []map[string]any `json:"packages"`
	DailyRegistrations []map[string]any `json:"dailyRegistrations"`
	Activities         []map[string]any `json:"activities"`
	Settings           Settings         `json:"settings"`
}

type Settings struct {
	PackageDuration int `json:"packageDuration"`
	CurrentMonth    int `json:"currentMonth"`
	CurrentYear     int `json:"currentYear"`
}

// Collection returns the slice backing a named collection, or nil for an
// unknown name.
func (s *Snapshot) Collection(name string) *[]map[string]any {
	switch name {
	case "customers":
		return &s.Customers
	case "subscriptions":
		return &s.Subscriptions
	case "packages":
		return &s.Packages
	case "dailyRegistrations":
		return &s.DailyRegistrations
	case "activities":
		return &s.Activities
	default:
		return nil
	}
}

// CollectionNames lists every collection in snapshot order.
var CollectionNames = []string{
	"customers", "subscriptions", "packages", "dailyRegistrations", "activities",
}
