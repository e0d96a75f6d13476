package models

import "github.com/bigdiet/backend/pkg/types"

// Subscription tracks a customer's meal entitlement. The remaining counters
// are owned by the registration service; nothing else may write them.
// Invariant: 0 <= RemainingMeals <= TotalMeals, same for snacks.
type Subscription struct {
	ID              string                   `json:"id"`
	CustomerID      string                   `json:"customerId"`
	PackageID       string                   `json:"packageId"`
	StartDate       string                   `json:"startDate"`
	EndDate         string                   `json:"endDate"`
	TotalMeals      int                      `json:"totalMeals"`
	TotalSnacks     int                      `json:"totalSnacks"`
	RemainingMeals  int                      `json:"remainingMeals"`
	RemainingSnacks int                      `json:"remainingSnacks"`
	HasSnacks       bool                     `json:"hasSnacks"`
	Status          types.SubscriptionStatus `json:"status"`
}

// ActiveOn reports whether the subscription counts as active on the given
// calendar date: status active and not past its end date. An empty end date
// never expires by date.
func (s *Subscription) ActiveOn(today string) bool {
	return s != nil &&
		s.Status == types.SubscriptionStatusActive &&
		(s.EndDate == "" || s.EndDate >= today)
}
