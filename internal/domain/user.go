package domain

import "time"

// SubscriptionTier enumerates billing tiers.
type SubscriptionTier string

const (
	TierFree       SubscriptionTier = "free"
	TierPremium    SubscriptionTier = "premium"
	TierEnterprise SubscriptionTier = "enterprise"
	TierSuspended  SubscriptionTier = "suspended"
)

// DailyLimit returns the number of requests the tier may create per UTC
// day. Tiers without an explicit limit get zero.
func (t SubscriptionTier) DailyLimit() int {
	switch t {
	case TierFree:
		return 5
	case TierPremium:
		return 50
	case TierEnterprise:
		return 500
	}
	return 0
}

// AllowsQuality reports whether the tier may request the given quality.
func (t SubscriptionTier) AllowsQuality(q MediaQuality) bool {
	switch q {
	case MediaQualityPremium:
		return t != TierFree && t != TierSuspended
	case MediaQualityUltra:
		return t == TierEnterprise
	}
	return t != TierSuspended
}

// User represents an account within the platform.
type User struct {
	ID                    string
	Email                 string
	Name                  string
	GoogleID              string
	AvatarURL             string
	Tier                  SubscriptionTier
	SubscriptionExpiresAt *time.Time
	TotalMediaRequests    int
	LastLoginAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Suspended reports whether the account is blocked from all operations.
func (u User) Suspended() bool {
	return u.Tier == TierSuspended
}

// UserUpdate carries optional profile mutations.
type UserUpdate struct {
	Name      *string
	AvatarURL *string
	Tier      *SubscriptionTier
}
