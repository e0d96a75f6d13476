package types

type CustomerStatus string

const (
	CustomerStatusNew     CustomerStatus = "new"
	CustomerStatusActive  CustomerStatus = "active"
	CustomerStatusExpired CustomerStatus = "expired"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

type PackageStatus string

const (
	PackageStatusActive   PackageStatus = "active"
	PackageStatusInactive PackageStatus = "inactive"
)

// customerTransitions lists the allowed customer status moves. A customer is
// "new" until the first subscription, "active" while one runs, "expired"
// once it runs out, and may re-subscribe from any state.
var customerTransitions = map[CustomerStatus][]CustomerStatus{
	CustomerStatusNew:     {CustomerStatusActive},
	CustomerStatusActive:  {CustomerStatusExpired, CustomerStatusNew},
	CustomerStatusExpired: {CustomerStatusActive, CustomerStatusNew},
}

func (s CustomerStatus) CanTransition(to CustomerStatus) bool {
	for _, t := range customerTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}
