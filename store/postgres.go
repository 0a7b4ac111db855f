// Package store - PostgreSQL repository
// pgx-backed implementation of the Repository interface. Queries are plain
// SQL; no ORM. Derived status fields are filled in after scanning.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"partnerops/core/status"
)

// PostgresRepository implements Repository against a pgx pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a repository over an existing pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Connect opens a pool and verifies connectivity.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// ListPartners returns all partners, newest first.
func (r *PostgresRepository) ListPartners(ctx context.Context) ([]Partner, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, email, name, status, commission_mode, COALESCE(affiliate_id, ''), created_at, updated_at
		FROM partners ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []Partner
	for rows.Next() {
		var p Partner
		if err := rows.Scan(&p.ID, &p.Email, &p.Name, &p.Status, &p.CommissionMode, &p.AffiliateID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}
	return partners, rows.Err()
}

// FindPartnerByID retrieves a partner by primary key.
func (r *PostgresRepository) FindPartnerByID(ctx context.Context, id uuid.UUID) (*Partner, error) {
	var p Partner
	err := r.db.QueryRow(ctx, `
		SELECT id, email, name, status, commission_mode, COALESCE(affiliate_id, ''), created_at, updated_at
		FROM partners WHERE id = $1`, id).
		Scan(&p.ID, &p.Email, &p.Name, &p.Status, &p.CommissionMode, &p.AffiliateID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindPartnerByEmail retrieves a partner by email, case-insensitive.
func (r *PostgresRepository) FindPartnerByEmail(ctx context.Context, email string) (*Partner, error) {
	var p Partner
	err := r.db.QueryRow(ctx, `
		SELECT id, email, name, status, commission_mode, COALESCE(affiliate_id, ''), created_at, updated_at
		FROM partners WHERE lower(email) = lower($1)`, email).
		Scan(&p.ID, &p.Email, &p.Name, &p.Status, &p.CommissionMode, &p.AffiliateID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreatePartner inserts a partner, generating id and timestamps.
func (r *PostgresRepository) CreatePartner(ctx context.Context, p *Partner) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Status == "" {
		p.Status = "pending"
	}
	if p.CommissionMode == "" {
		p.CommissionMode = "team"
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO partners (id, email, name, status, commission_mode, affiliate_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)`,
		p.ID, p.Email, p.Name, p.Status, p.CommissionMode, p.AffiliateID, p.CreatedAt, p.UpdatedAt)
	return err
}

// UpdatePartnerStatus updates a partner's status.
func (r *PostgresRepository) UpdatePartnerStatus(ctx context.Context, id uuid.UUID, partnerStatus string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE partners SET status = $2, updated_at = now() WHERE id = $1`, id, partnerStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPartnerNotFound
	}
	return nil
}

// SetPartnerAffiliateID records the affiliate platform's id for a partner.
func (r *PostgresRepository) SetPartnerAffiliateID(ctx context.Context, id uuid.UUID, affiliateID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE partners SET affiliate_id = NULLIF($2, ''), updated_at = now() WHERE id = $1`, id, affiliateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPartnerNotFound
	}
	return nil
}

// DeletePartner deletes a partner by primary key.
func (r *PostgresRepository) DeletePartner(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPartnerNotFound
	}
	return nil
}

// ListPromoCodes returns all promo codes with derived status.
func (r *PostgresRepository) ListPromoCodes(ctx context.Context) ([]PromoCode, error) {
	rows, err := r.db.Query(ctx, `
		SELECT code, discount_percent, max_redemptions, redemptions, expires_at, disabled, created_at
		FROM promo_codes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	var codes []PromoCode
	for rows.Next() {
		var pc PromoCode
		if err := rows.Scan(&pc.Code, &pc.DiscountPercent, &pc.MaxRedemptions, &pc.Redemptions, &pc.ExpiresAt, &pc.Disabled, &pc.CreatedAt); err != nil {
			return nil, err
		}
		pc.Status = status.ForPromo(pc.Disabled, pc.ExpiresAt, pc.MaxRedemptions, pc.Redemptions, now)
		codes = append(codes, pc)
	}
	return codes, rows.Err()
}

// FindPromoCode retrieves one promo code with derived status.
func (r *PostgresRepository) FindPromoCode(ctx context.Context, code string) (*PromoCode, error) {
	var pc PromoCode
	err := r.db.QueryRow(ctx, `
		SELECT code, discount_percent, max_redemptions, redemptions, expires_at, disabled, created_at
		FROM promo_codes WHERE code = $1`, code).
		Scan(&pc.Code, &pc.DiscountPercent, &pc.MaxRedemptions, &pc.Redemptions, &pc.ExpiresAt, &pc.Disabled, &pc.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPromoCodeNotFound
		}
		return nil, err
	}
	pc.Status = status.ForPromo(pc.Disabled, pc.ExpiresAt, pc.MaxRedemptions, pc.Redemptions, time.Now().UTC())
	return &pc, nil
}

// CreatePromoCode inserts a promo code.
func (r *PostgresRepository) CreatePromoCode(ctx context.Context, pc *PromoCode) error {
	pc.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx, `
		INSERT INTO promo_codes (code, discount_percent, max_redemptions, redemptions, expires_at, disabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pc.Code, pc.DiscountPercent, pc.MaxRedemptions, pc.Redemptions, pc.ExpiresAt, pc.Disabled, pc.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCode
		}
		return err
	}
	pc.Status = status.ForPromo(pc.Disabled, pc.ExpiresAt, pc.MaxRedemptions, pc.Redemptions, pc.CreatedAt)
	return nil
}

// DeletePromoCode deletes a promo code by its code.
func (r *PostgresRepository) DeletePromoCode(ctx context.Context, code string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM promo_codes WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPromoCodeNotFound
	}
	return nil
}

// ListTrials returns all trial grants with derived status.
func (r *PostgresRepository) ListTrials(ctx context.Context) ([]TrialGrant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, email, starts_at, expires_at, redeemed_at, COALESCE(granted_by, ''), created_at
		FROM trial_grants ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	var trials []TrialGrant
	for rows.Next() {
		var tg TrialGrant
		if err := rows.Scan(&tg.ID, &tg.Email, &tg.StartsAt, &tg.ExpiresAt, &tg.RedeemedAt, &tg.GrantedBy, &tg.CreatedAt); err != nil {
			return nil, err
		}
		tg.Status = status.ForTrial(tg.StartsAt, tg.ExpiresAt, tg.RedeemedAt, now)
		trials = append(trials, tg)
	}
	return trials, rows.Err()
}

// CreateTrial inserts a trial grant.
func (r *PostgresRepository) CreateTrial(ctx context.Context, tg *TrialGrant) error {
	if tg.ID == uuid.Nil {
		tg.ID = uuid.New()
	}
	tg.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx, `
		INSERT INTO trial_grants (id, email, starts_at, expires_at, redeemed_at, granted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`,
		tg.ID, tg.Email, tg.StartsAt, tg.ExpiresAt, tg.RedeemedAt, tg.GrantedBy, tg.CreatedAt)
	if err != nil {
		return err
	}
	tg.Status = status.ForTrial(tg.StartsAt, tg.ExpiresAt, tg.RedeemedAt, tg.CreatedAt)
	return nil
}
