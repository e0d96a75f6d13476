package models

import "github.com/bigdiet/backend/pkg/types"

// Activity is an append-only record of a notable mutation. Time24 is the
// canonical sortable form written at record time; 12-hour display is derived
// at read time, never stored.
type Activity struct {
	ID          string             `json:"id"`
	Type        types.ActivityType `json:"type"`
	CustomerID  string             `json:"customerId,omitempty"`
	Description string             `json:"description"`
	Date        string             `json:"date"`
	Time24      string             `json:"time24"`
}
