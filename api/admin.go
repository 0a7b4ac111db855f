// Package api - Admin back-office routes
// CRUD over partners, promo codes and trials, plus proxies for the affiliate
// and subscription platforms. Auth is deliberately not handled here; front
// these routes with a reverse proxy or gateway.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"partnerops/clients/mailer"
	"partnerops/core/commission"
	"partnerops/store"
)

func (s *Server) adminRoutes(r chi.Router) {
	r.Get("/partners", s.handleListPartners)
	r.Post("/partners", s.handleCreatePartner)
	r.Post("/partners/sync", s.handleSyncPartners)
	r.Get("/partners/{id}", s.handleGetPartner)
	r.Patch("/partners/{id}/status", s.handleUpdatePartnerStatus)
	r.Delete("/partners/{id}", s.handleDeletePartner)
	r.Post("/partners/{id}/earnings-report", s.handleEarningsReport)

	r.Get("/promocodes", s.handleListPromoCodes)
	r.Post("/promocodes", s.handleCreatePromoCode)
	r.Get("/promocodes/{code}", s.handleGetPromoCode)
	r.Delete("/promocodes/{code}", s.handleDeletePromoCode)

	r.Get("/trials", s.handleListTrials)
	r.Post("/trials", s.handleCreateTrial)

	r.Get("/metrics", s.handleMetrics)
}

func (s *Server) handleListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := s.repo.ListPartners(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"partners": partners,
		"count":    len(partners),
	}, http.StatusOK)
}

type createPartnerRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	CommissionMode string `json:"commission_mode,omitempty"`
}

func (s *Server) handleCreatePartner(w http.ResponseWriter, r *http.Request) {
	var req createPartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if !strings.Contains(req.Email, "@") || req.Name == "" {
		s.writeError(w, "VALIDATION_ERROR", "email and name are required", http.StatusBadRequest)
		return
	}
	if req.CommissionMode == "" {
		req.CommissionMode = string(commission.ModeTeam)
	}
	if req.CommissionMode != string(commission.ModeIndividual) && req.CommissionMode != string(commission.ModeTeam) {
		s.writeError(w, "VALIDATION_ERROR", "commission_mode must be individual or team", http.StatusBadRequest)
		return
	}

	partner := &store.Partner{Email: req.Email, Name: req.Name, CommissionMode: req.CommissionMode}
	if err := s.repo.CreatePartner(r.Context(), partner); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, partner, http.StatusCreated)
}

func (s *Server) handleGetPartner(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "VALIDATION_ERROR", "invalid partner id", http.StatusBadRequest)
		return
	}

	partner, err := s.repo.FindPartnerByID(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, partner, http.StatusOK)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

var partnerStatuses = map[string]bool{
	"active":    true,
	"suspended": true,
	"pending":   true,
}

func (s *Server) handleUpdatePartnerStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "VALIDATION_ERROR", "invalid partner id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if !partnerStatuses[req.Status] {
		s.writeError(w, "VALIDATION_ERROR", "status must be active, suspended or pending", http.StatusBadRequest)
		return
	}

	if err := s.repo.UpdatePartnerStatus(r.Context(), id, req.Status); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, map[string]string{"id": id.String(), "status": req.Status}, http.StatusOK)
}

// handleDeletePartner removes the partner locally and, when linked, from the
// affiliate platform as well.
func (s *Server) handleDeletePartner(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "VALIDATION_ERROR", "invalid partner id", http.StatusBadRequest)
		return
	}

	partner, err := s.repo.FindPartnerByID(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	if s.affiliate != nil && partner.AffiliateID != "" {
		if err := s.affiliate.DeletePartner(r.Context(), partner.AffiliateID); err != nil {
			// Keep going: the local row is the source of truth for the admin.
			s.log.Warn("affiliate platform delete failed",
				zap.String("partner_id", id.String()),
				zap.String("affiliate_id", partner.AffiliateID),
				zap.Error(err))
		}
	}

	if err := s.repo.DeletePartner(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSyncPartners reconciles local partner rows against the affiliate
// platform's list, matching by email.
func (s *Server) handleSyncPartners(w http.ResponseWriter, r *http.Request) {
	if s.affiliate == nil {
		s.writeError(w, "NOT_CONFIGURED", "affiliate platform not configured", http.StatusServiceUnavailable)
		return
	}

	remote, err := s.affiliate.ListPartners(r.Context())
	if err != nil {
		s.writeError(w, "UPSTREAM_ERROR", err.Error(), http.StatusBadGateway)
		return
	}

	linked, missing := 0, 0
	for _, rp := range remote {
		local, err := s.repo.FindPartnerByEmail(r.Context(), rp.Email)
		if err != nil {
			if errors.Is(err, store.ErrPartnerNotFound) {
				missing++
				continue
			}
			s.writeStoreError(w, err)
			return
		}
		if local.AffiliateID != rp.ID {
			if err := s.repo.SetPartnerAffiliateID(r.Context(), local.ID, rp.ID); err != nil {
				s.writeStoreError(w, err)
				return
			}
			linked++
		}
	}

	s.writeJSON(w, map[string]int{
		"remote":    len(remote),
		"linked":    linked,
		"unmatched": missing,
	}, http.StatusOK)
}

type earningsReportRequest struct {
	UserCount      int  `json:"user_count"`
	IsBulkPurchase bool `json:"is_bulk_purchase"`
}

// handleEarningsReport computes a commission projection under the partner's
// commission mode and emails it to them.
func (s *Server) handleEarningsReport(w http.ResponseWriter, r *http.Request) {
	if s.mail == nil {
		s.writeError(w, "NOT_CONFIGURED", "mail client not configured", http.StatusServiceUnavailable)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "VALIDATION_ERROR", "invalid partner id", http.StatusBadRequest)
		return
	}

	var req earningsReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	partner, err := s.repo.FindPartnerByID(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	mode := commission.Mode(partner.CommissionMode)
	if mode == "" {
		mode = commission.ModeTeam
	}
	result, err := commission.NewCalculator().Compute(commission.Input{
		Mode:           mode,
		UserCount:      req.UserCount,
		IsBulkPurchase: req.IsBulkPurchase,
	})
	if err != nil {
		s.writeCalcError(w, err)
		return
	}

	sent, err := s.mail.Send(r.Context(), mailer.Message{
		To:       partner.Email,
		Subject:  fmt.Sprintf("Your projected earnings for %d athletes", req.UserCount),
		HTMLBody: earningsReportHTML(partner.Name, req.UserCount, result, s.currency),
	})
	if err != nil {
		s.writeError(w, "UPSTREAM_ERROR", err.Error(), http.StatusBadGateway)
		return
	}

	s.writeJSON(w, map[string]string{
		"message_id": sent.ID,
		"to":         partner.Email,
	}, http.StatusOK)
}

func earningsReportHTML(name string, userCount int, result commission.Result, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", name)
	fmt.Fprintf(&b, "<p>For %d athletes at %s %s (%s):</p>", userCount, currency, result.PricePerUnit, result.TierLabel)
	fmt.Fprintf(&b, "<ul><li>Per payment: %s %s</li>", currency, result.TotalPerPayment)
	if result.Breakdown.HasBonus {
		fmt.Fprintf(&b, "<li>Includes %s %s bonus-band commission</li>", currency, result.Breakdown.BonusAmount)
	}
	fmt.Fprintf(&b, "<li>Projected per year: %s %s</li></ul>", currency, result.AnnualizedTotal)
	b.WriteString("<p>Projection assumes two renewal cycles per year and is not a guarantee.</p>")
	return b.String()
}

type createPromoCodeRequest struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	MaxRedemptions  int             `json:"max_redemptions"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
}

func (s *Server) handleListPromoCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := s.repo.ListPromoCodes(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"promo_codes": codes,
		"count":       len(codes),
	}, http.StatusOK)
}

func (s *Server) handleCreatePromoCode(w http.ResponseWriter, r *http.Request) {
	var req createPromoCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Code == "" {
		s.writeError(w, "VALIDATION_ERROR", "code is required", http.StatusBadRequest)
		return
	}
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		s.writeError(w, "VALIDATION_ERROR", "discount_percent must be in [0,100]", http.StatusBadRequest)
		return
	}

	pc := &store.PromoCode{
		Code:            strings.ToUpper(req.Code),
		DiscountPercent: req.DiscountPercent,
		MaxRedemptions:  req.MaxRedemptions,
		ExpiresAt:       req.ExpiresAt,
	}
	if err := s.repo.CreatePromoCode(r.Context(), pc); err != nil {
		if errors.Is(err, store.ErrDuplicateCode) {
			s.writeError(w, "CONFLICT", "promo code already exists", http.StatusConflict)
			return
		}
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, pc, http.StatusCreated)
}

func (s *Server) handleGetPromoCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	pc, err := s.repo.FindPromoCode(r.Context(), strings.ToUpper(code))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, pc, http.StatusOK)
}

func (s *Server) handleDeletePromoCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := s.repo.DeletePromoCode(r.Context(), strings.ToUpper(code)); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createTrialRequest struct {
	Email     string `json:"email"`
	Days      int    `json:"days"`
	GrantedBy string `json:"granted_by,omitempty"`
}

func (s *Server) handleListTrials(w http.ResponseWriter, r *http.Request) {
	trials, err := s.repo.ListTrials(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"trials": trials,
		"count":  len(trials),
	}, http.StatusOK)
}

func (s *Server) handleCreateTrial(w http.ResponseWriter, r *http.Request) {
	var req createTrialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if !strings.Contains(req.Email, "@") {
		s.writeError(w, "VALIDATION_ERROR", "email is required", http.StatusBadRequest)
		return
	}
	if req.Days <= 0 || req.Days > 365 {
		s.writeError(w, "VALIDATION_ERROR", "days must be in [1,365]", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	tg := &store.TrialGrant{
		Email:     req.Email,
		StartsAt:  now,
		ExpiresAt: now.AddDate(0, 0, req.Days),
		GrantedBy: req.GrantedBy,
	}
	if err := s.repo.CreateTrial(r.Context(), tg); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, tg, http.StatusCreated)
}

// handleMetrics proxies the subscription platform's overview numbers.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.subs == nil {
		s.writeError(w, "NOT_CONFIGURED", "subscription platform not configured", http.StatusServiceUnavailable)
		return
	}

	metrics, err := s.subs.GetMetrics(r.Context())
	if err != nil {
		s.writeError(w, "UPSTREAM_ERROR", err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, metrics, http.StatusOK)
}

// writeStoreError maps repository errors to HTTP status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrPartnerNotFound),
		errors.Is(err, store.ErrPromoCodeNotFound),
		errors.Is(err, store.ErrTrialNotFound):
		s.writeError(w, "NOT_FOUND", err.Error(), http.StatusNotFound)
	default:
		s.log.Error("store failure", zap.Error(err))
		s.writeError(w, "STORE_ERROR", "database operation failed", http.StatusInternalServerError)
	}
}
