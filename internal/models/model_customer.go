package models

import "github.com/bigdiet/backend/pkg/types"

// Customer is keyed by phone number: the phone is the document ID in the
// customers collection, which makes registration an idempotent upsert.
type Customer struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Phone            string               `json:"phone"`
	RegistrationDate string               `json:"registrationDate"`
	Status           types.CustomerStatus `json:"status"`
	// CurrentPackage is a display label; nil until the first subscription.
	CurrentPackage *string `json:"currentPackage"`
	CreatedAt      string  `json:"createdAt"`
}
