// Package status - Derived promo code and trial state
// Status is never persisted; it is a pure function of a row and a clock
// instant, so a stored status column can never drift from the truth.
package status

import "time"

// PromoStatus is the derived state of a promo code.
type PromoStatus string

const (
	PromoActive    PromoStatus = "active"
	PromoExpired   PromoStatus = "expired"
	PromoExhausted PromoStatus = "exhausted"
	PromoDisabled  PromoStatus = "disabled"
)

// ForPromo derives a promo code's status. Precedence: disabled beats expired
// beats exhausted. MaxRedemptions <= 0 means unlimited.
func ForPromo(disabled bool, expiresAt *time.Time, maxRedemptions, redemptions int, now time.Time) PromoStatus {
	if disabled {
		return PromoDisabled
	}
	if expiresAt != nil && !now.Before(*expiresAt) {
		return PromoExpired
	}
	if maxRedemptions > 0 && redemptions >= maxRedemptions {
		return PromoExhausted
	}
	return PromoActive
}

// TrialStatus is the derived state of a trial grant.
type TrialStatus string

const (
	TrialPending  TrialStatus = "pending"
	TrialActive   TrialStatus = "active"
	TrialRedeemed TrialStatus = "redeemed"
	TrialExpired  TrialStatus = "expired"
)

// ForTrial derives a trial grant's status. A redeemed trial stays redeemed
// even after its window closes.
func ForTrial(startsAt, expiresAt time.Time, redeemedAt *time.Time, now time.Time) TrialStatus {
	if redeemedAt != nil {
		return TrialRedeemed
	}
	if !now.Before(expiresAt) {
		return TrialExpired
	}
	if now.Before(startsAt) {
		return TrialPending
	}
	return TrialActive
}
