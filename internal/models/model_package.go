package models

import "github.com/bigdiet/backend/pkg/types"

// Package is a meal package offered for subscription. Duration is fixed
// (26 days) at creation time; subscriptions reference packages by ID and
// never cascade on delete.
type Package struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Price        float64             `json:"price"`
	DurationDays int                 `json:"duration"`
	Meals        int                 `json:"meals"`
	HasSnacks    bool                `json:"hasSnacks"`
	Description  string              `json:"description"`
	Status       types.PackageStatus `json:"status"`
}
