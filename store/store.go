// Package store - Back-office persistence contracts
// Row types and the repository interface for the admin surface. Derived
// status fields are computed from core/status at read time and never stored.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"partnerops/core/status"
)

var (
	ErrPartnerNotFound   = errors.New("partner not found")
	ErrPromoCodeNotFound = errors.New("promo code not found")
	ErrTrialNotFound     = errors.New("trial grant not found")
	ErrDuplicateCode     = errors.New("promo code already exists")
)

// Partner is a commission partner (coach, club, or affiliate).
type Partner struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`          // active, suspended, pending
	CommissionMode string    `json:"commission_mode"` // individual, team
	AffiliateID    string    `json:"affiliate_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PromoCode is a redeemable discount code.
type PromoCode struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	MaxRedemptions  int             `json:"max_redemptions"` // <= 0 means unlimited
	Redemptions     int             `json:"redemptions"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	Disabled        bool            `json:"disabled"`
	CreatedAt       time.Time       `json:"created_at"`

	// Status is derived at read time, never persisted
	Status status.PromoStatus `json:"status"`
}

// TrialGrant is a manually granted free trial.
type TrialGrant struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	StartsAt   time.Time  `json:"starts_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	GrantedBy  string     `json:"granted_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	// Status is derived at read time, never persisted
	Status status.TrialStatus `json:"status"`
}

// Repository is the back-office data contract.
type Repository interface {
	// Partners
	ListPartners(ctx context.Context) ([]Partner, error)
	FindPartnerByID(ctx context.Context, id uuid.UUID) (*Partner, error)
	FindPartnerByEmail(ctx context.Context, email string) (*Partner, error)
	CreatePartner(ctx context.Context, p *Partner) error
	UpdatePartnerStatus(ctx context.Context, id uuid.UUID, partnerStatus string) error
	SetPartnerAffiliateID(ctx context.Context, id uuid.UUID, affiliateID string) error
	DeletePartner(ctx context.Context, id uuid.UUID) error

	// Promo codes
	ListPromoCodes(ctx context.Context) ([]PromoCode, error)
	FindPromoCode(ctx context.Context, code string) (*PromoCode, error)
	CreatePromoCode(ctx context.Context, pc *PromoCode) error
	DeletePromoCode(ctx context.Context, code string) error

	// Trial grants
	ListTrials(ctx context.Context) ([]TrialGrant, error)
	CreateTrial(ctx context.Context, tg *TrialGrant) error
}
