package types

type ActivityType string

const (
	ActivityCustomerAdded       ActivityType = "customer_added"
	ActivityCustomerDeleted     ActivityType = "customer_deleted"
	ActivitySubscriptionAdded   ActivityType = "subscription_added"
	ActivitySubscriptionUpdated ActivityType = "subscription_updated"
	ActivitySubscriptionDeleted ActivityType = "subscription_deleted"
	ActivityPackageAdded        ActivityType = "package_added"
	ActivityPackageUpdated      ActivityType = "package_updated"
	ActivityPackageDeleted      ActivityType = "package_deleted"
	ActivityMealRegistered      ActivityType = "meal_registered"
)

// NotableActivityTypes is the allow-list surfaced in the activity feed.
// Meal registrations are recorded but intentionally kept out of the feed.
var NotableActivityTypes = []ActivityType{
	ActivityCustomerAdded,
	ActivitySubscriptionAdded,
	ActivitySubscriptionUpdated,
	ActivitySubscriptionDeleted,
	ActivityPackageAdded,
	ActivityPackageUpdated,
	ActivityPackageDeleted,
}
