// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, calculator orchestration,
// output serialization. The API NEVER performs pricing arithmetic.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"partnerops/clients/affiliate"
	"partnerops/clients/mailer"
	"partnerops/clients/subs"
	"partnerops/core/commission"
	"partnerops/core/profitability"
	"partnerops/internal/errors"
	"partnerops/internal/logging"
	"partnerops/store"
)

// Options wires the server's optional collaborators. A nil Repo disables the
// admin surface; nil clients disable their endpoints.
type Options struct {
	Repo      store.Repository
	Affiliate affiliate.API
	Subs      subs.API
	Mail      mailer.API
	Currency  string
}

// Server is the API server
type Server struct {
	router   chi.Router
	version  string
	currency string

	repo      store.Repository
	affiliate affiliate.API
	subs      subs.API
	mail      mailer.API

	log *zap.Logger
}

// NewServer creates an API server with just the calculators mounted.
func NewServer(version string) *Server {
	return NewServerWith(version, Options{})
}

// NewServerWith creates an API server with back-office collaborators.
func NewServerWith(version string, opts Options) *Server {
	currency := opts.Currency
	if currency == "" {
		currency = "USD"
	}

	s := &Server{
		version:   version,
		currency:  currency,
		repo:      opts.Repo,
		affiliate: opts.Affiliate,
		subs:      opts.Subs,
		mail:      opts.Mail,
		log:       logging.Named("api"),
	}

	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Core endpoints
	r.Post("/calculate/commission", s.handleCommission)
	r.Post("/calculate/profitability", s.handleProfitability)

	// Supporting endpoints
	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	// Admin surface mounts only when a store is configured
	if s.repo != nil {
		r.Route("/admin", s.adminRoutes)
	}

	return r
}

// handleCommission handles POST /calculate/commission
func (s *Server) handleCommission(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CommissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	userCount, err := resolveUserCount(req.UserCount, req.NumTeams, req.UsersPerTeam)
	if err != nil {
		s.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	calc := commission.NewCalculator()
	if req.BasePrice != nil {
		if req.BasePrice.IsNegative() {
			s.writeError(w, "VALIDATION_ERROR", "base_price must be >= 0", http.StatusBadRequest)
			return
		}
		calc = commission.NewCalculatorFor(*req.BasePrice)
	}

	result, err := calc.Compute(commission.Input{
		Mode:           commission.Mode(req.Mode),
		UserCount:      userCount,
		IsBulkPurchase: req.IsBulkPurchase,
	})
	if err != nil {
		s.writeCalcError(w, err)
		return
	}

	resp := &CommissionResponse{
		RequestID:       generateRequestID(),
		Timestamp:       time.Now().UTC(),
		UserCount:       userCount,
		PricePerUnit:    money(result.PricePerUnit, s.currency),
		TierLabel:       result.TierLabel,
		TotalPerPayment: money(result.TotalPerPayment, s.currency),
		AnnualizedTotal: money(result.AnnualizedTotal, s.currency),
		Breakdown: CommissionBreakdown{
			BaseAmount:  money(result.Breakdown.BaseAmount, s.currency),
			BonusAmount: money(result.Breakdown.BonusAmount, s.currency),
			HasBonus:    result.Breakdown.HasBonus,
		},
		Metadata: s.metadata(&req, start),
	}

	s.writeJSON(w, resp, http.StatusOK)
}

// handleProfitability handles POST /calculate/profitability
func (s *Server) handleProfitability(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ProfitabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	numUsers, err := resolveUserCount(req.NumUsers, req.NumTeams, req.UsersPerTeam)
	if err != nil {
		s.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := profitability.Compute(profitability.CostModel{
		PricePerSeat:             req.PricePerSeat,
		CostPerSeat:              req.CostPerSeat,
		NumUsers:                 numUsers,
		VolumeDiscountPercent:    req.VolumeDiscountPercent,
		PartnerCommissionPercent: req.PartnerCommissionPercent,
		MonthlyFixedCosts:        toCoreLineItems(req.MonthlyFixedCosts),
		PerUserAnnualCosts:       toCoreLineItems(req.PerUserAnnualCosts),
		AnnualFixedCostExtra:     req.AnnualFixedCostExtra,
		PerTransactionCost:       req.PerTransactionCost,
	})
	if err != nil {
		s.writeCalcError(w, err)
		return
	}

	resp := &ProfitabilityResponse{
		RequestID:              generateRequestID(),
		Timestamp:              time.Now().UTC(),
		NumUsers:               numUsers,
		DiscountedPricePerSeat: money(result.DiscountedPricePerSeat, s.currency),
		GrossRevenueAnnual:     money(result.GrossRevenueAnnual, s.currency),
		PartnerPayoutAnnual:    money(result.PartnerPayoutAnnual, s.currency),
		VariableCostsAnnual:    money(result.VariableCostsAnnual, s.currency),
		HardCostsAnnual:        money(result.HardCostsAnnual, s.currency),
		NetProfitAnnual:        money(result.NetProfitAnnual, s.currency),
		ProfitMarginPercent:    result.ProfitMarginPercent.Round(2).String(),
		ProfitPerUser:          money(result.ProfitPerUser, s.currency),
		Metadata:               s.metadata(&req, start),
	}

	s.writeJSON(w, resp, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "partnerops",
		"api_version": "v1",
	}, http.StatusOK)
}

// resolveUserCount accepts a direct count or derives one from teams.
func resolveUserCount(direct *int, numTeams, usersPerTeam int) (int, error) {
	if direct != nil {
		if *direct < 0 {
			return 0, errors.Inputf("user count must be >= 0, got %d", *direct)
		}
		return *direct, nil
	}
	return commission.UsersFromTeams(numTeams, usersPerTeam)
}

func toCoreLineItems(items []LineItem) []profitability.LineItem {
	out := make([]profitability.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, profitability.LineItem{Name: item.Name, Amount: item.Amount})
	}
	return out
}

// writeCalcError maps calculator errors to HTTP status codes.
func (s *Server) writeCalcError(w http.ResponseWriter, err error) {
	if errors.IsType(err, errors.TypeInput) {
		s.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Error("calculator failure", zap.Error(err))
	s.writeError(w, "ENGINE_ERROR", err.Error(), http.StatusInternalServerError)
}

func (s *Server) metadata(req interface{}, start time.Time) *ResponseMetadata {
	return &ResponseMetadata{
		InputHash:     computeInputHash(req),
		EngineVersion: s.version,
		DurationMs:    time.Since(start).Milliseconds(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, statusCode int) {
	s.writeJSON(w, ErrorBody{Error: ErrorDetail{Code: code, Message: message}}, statusCode)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Helper functions

func computeInputHash(req interface{}) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func generateRequestID() string {
	return uuid.NewString()
}
