package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"partnerops/clients/affiliate"
	"partnerops/clients/mailer"
	"partnerops/clients/subs"
	"partnerops/core/status"
	"partnerops/store"
)

// fakeRepo is an in-memory store.Repository.
type fakeRepo struct {
	partners map[uuid.UUID]*store.Partner
	promos   map[string]*store.PromoCode
	trials   []*store.TrialGrant
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		partners: make(map[uuid.UUID]*store.Partner),
		promos:   make(map[string]*store.PromoCode),
	}
}

func (f *fakeRepo) ListPartners(ctx context.Context) ([]store.Partner, error) {
	out := make([]store.Partner, 0, len(f.partners))
	for _, p := range f.partners {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeRepo) FindPartnerByID(ctx context.Context, id uuid.UUID) (*store.Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return nil, store.ErrPartnerNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) FindPartnerByEmail(ctx context.Context, email string) (*store.Partner, error) {
	for _, p := range f.partners {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrPartnerNotFound
}

func (f *fakeRepo) CreatePartner(ctx context.Context, p *store.Partner) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = "pending"
	}
	if p.CommissionMode == "" {
		p.CommissionMode = "team"
	}
	cp := *p
	f.partners[p.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdatePartnerStatus(ctx context.Context, id uuid.UUID, partnerStatus string) error {
	p, ok := f.partners[id]
	if !ok {
		return store.ErrPartnerNotFound
	}
	p.Status = partnerStatus
	return nil
}

func (f *fakeRepo) SetPartnerAffiliateID(ctx context.Context, id uuid.UUID, affiliateID string) error {
	p, ok := f.partners[id]
	if !ok {
		return store.ErrPartnerNotFound
	}
	p.AffiliateID = affiliateID
	return nil
}

func (f *fakeRepo) DeletePartner(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.partners[id]; !ok {
		return store.ErrPartnerNotFound
	}
	delete(f.partners, id)
	return nil
}

func (f *fakeRepo) ListPromoCodes(ctx context.Context) ([]store.PromoCode, error) {
	out := make([]store.PromoCode, 0, len(f.promos))
	for _, pc := range f.promos {
		out = append(out, *pc)
	}
	return out, nil
}

func (f *fakeRepo) FindPromoCode(ctx context.Context, code string) (*store.PromoCode, error) {
	pc, ok := f.promos[code]
	if !ok {
		return nil, store.ErrPromoCodeNotFound
	}
	cp := *pc
	return &cp, nil
}

func (f *fakeRepo) CreatePromoCode(ctx context.Context, pc *store.PromoCode) error {
	if _, ok := f.promos[pc.Code]; ok {
		return store.ErrDuplicateCode
	}
	pc.CreatedAt = time.Now().UTC()
	pc.Status = status.ForPromo(pc.Disabled, pc.ExpiresAt, pc.MaxRedemptions, pc.Redemptions, pc.CreatedAt)
	cp := *pc
	f.promos[pc.Code] = &cp
	return nil
}

func (f *fakeRepo) DeletePromoCode(ctx context.Context, code string) error {
	if _, ok := f.promos[code]; !ok {
		return store.ErrPromoCodeNotFound
	}
	delete(f.promos, code)
	return nil
}

func (f *fakeRepo) ListTrials(ctx context.Context) ([]store.TrialGrant, error) {
	out := make([]store.TrialGrant, 0, len(f.trials))
	for _, tg := range f.trials {
		out = append(out, *tg)
	}
	return out, nil
}

func (f *fakeRepo) CreateTrial(ctx context.Context, tg *store.TrialGrant) error {
	if tg.ID == uuid.Nil {
		tg.ID = uuid.New()
	}
	cp := *tg
	f.trials = append(f.trials, &cp)
	return nil
}

// fakeAffiliate is a canned affiliate.API.
type fakeAffiliate struct {
	partners []affiliate.Partner
	deleted  []string
}

func (f *fakeAffiliate) ListPartners(ctx context.Context) ([]affiliate.Partner, error) {
	return f.partners, nil
}

func (f *fakeAffiliate) DeletePartner(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeMail records sends.
type fakeMail struct {
	sent []mailer.Message
}

func (f *fakeMail) Send(ctx context.Context, msg mailer.Message) (*mailer.SendResult, error) {
	f.sent = append(f.sent, msg)
	return &mailer.SendResult{ID: "msg-1"}, nil
}

type fakeSubs struct{ metrics subs.Metrics }

func (f *fakeSubs) GetMetrics(ctx context.Context) (*subs.Metrics, error) {
	m := f.metrics
	return &m, nil
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(payload)
}

func adminServer(repo store.Repository, aff affiliate.API, mail mailer.API, sub subs.API) *Server {
	return NewServerWith("test", Options{Repo: repo, Affiliate: aff, Subs: sub, Mail: mail})
}

func TestCreateAndGetPartner(t *testing.T) {
	repo := newFakeRepo()
	s := adminServer(repo, nil, nil, nil)

	rec := postJSON(t, s, "/admin/partners", map[string]string{
		"email": "coach@club.example",
		"name":  "Coach Taylor",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var created store.Partner
	decodeInto(t, rec, &created)
	if created.Status != "pending" {
		t.Errorf("new partner status = %q, want pending", created.Status)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/partners/"+created.ID.String(), nil)
	got := httptest.NewRecorder()
	s.ServeHTTP(got, req)
	if got.Code != http.StatusOK {
		t.Fatalf("get status = %d", got.Code)
	}
}

func TestCreatePartnerValidation(t *testing.T) {
	s := adminServer(newFakeRepo(), nil, nil, nil)

	rec := postJSON(t, s, "/admin/partners", map[string]string{"email": "not-an-email", "name": "X"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdatePartnerStatus(t *testing.T) {
	repo := newFakeRepo()
	p := &store.Partner{Email: "a@b.example", Name: "A"}
	repo.CreatePartner(context.Background(), p)
	s := adminServer(repo, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPatch, "/admin/partners/"+p.ID.String()+"/status",
		jsonBody(t, map[string]string{"status": "active"}))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if repo.partners[p.ID].Status != "active" {
		t.Errorf("stored status = %q, want active", repo.partners[p.ID].Status)
	}

	req = httptest.NewRequest(http.MethodPatch, "/admin/partners/"+p.ID.String()+"/status",
		jsonBody(t, map[string]string{"status": "banned"}))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status: got %d, want 400", rec.Code)
	}
}

func TestSyncPartnersLinksByEmail(t *testing.T) {
	repo := newFakeRepo()
	local := &store.Partner{Email: "coach@club.example", Name: "Coach"}
	repo.CreatePartner(context.Background(), local)

	aff := &fakeAffiliate{partners: []affiliate.Partner{
		{ID: "aff-42", Email: "coach@club.example", Status: "active"},
		{ID: "aff-99", Email: "unknown@nowhere.example", Status: "active"},
	}}
	s := adminServer(repo, aff, nil, nil)

	rec := postJSON(t, s, "/admin/partners/sync", struct{}{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result map[string]int
	decodeInto(t, rec, &result)
	if result["linked"] != 1 || result["unmatched"] != 1 {
		t.Errorf("sync result = %v, want 1 linked / 1 unmatched", result)
	}
	if repo.partners[local.ID].AffiliateID != "aff-42" {
		t.Errorf("affiliate id = %q, want aff-42", repo.partners[local.ID].AffiliateID)
	}
}

func TestEarningsReportSendsMail(t *testing.T) {
	repo := newFakeRepo()
	p := &store.Partner{Email: "coach@club.example", Name: "Coach"}
	repo.CreatePartner(context.Background(), p)

	mail := &fakeMail{}
	s := adminServer(repo, nil, mail, nil)

	rec := postJSON(t, s, "/admin/partners/"+p.ID.String()+"/earnings-report", map[string]interface{}{
		"user_count":       200,
		"is_bulk_purchase": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(mail.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mail.sent))
	}
	if mail.sent[0].To != "coach@club.example" {
		t.Errorf("sent to %q", mail.sent[0].To)
	}
}

func TestPromoCodeLifecycle(t *testing.T) {
	s := adminServer(newFakeRepo(), nil, nil, nil)

	body := map[string]interface{}{"code": "spring20", "discount_percent": "20", "max_redemptions": 50}
	rec := postJSON(t, s, "/admin/promocodes", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var created store.PromoCode
	decodeInto(t, rec, &created)
	if created.Code != "SPRING20" {
		t.Errorf("code = %q, want SPRING20 (uppercased)", created.Code)
	}
	if created.Status != status.PromoActive {
		t.Errorf("derived status = %q, want active", created.Status)
	}

	rec = postJSON(t, s, "/admin/promocodes", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create: status = %d, want 409", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/promocodes/spring20", nil)
	got := httptest.NewRecorder()
	s.ServeHTTP(got, req)
	if got.Code != http.StatusOK {
		t.Errorf("get by code: status = %d", got.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/admin/promocodes/spring20", nil)
	del := httptest.NewRecorder()
	s.ServeHTTP(del, req)
	if del.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d, want 204", del.Code)
	}
}

func TestCreateTrialValidation(t *testing.T) {
	s := adminServer(newFakeRepo(), nil, nil, nil)

	rec := postJSON(t, s, "/admin/trials", map[string]interface{}{"email": "athlete@club.example", "days": 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero days: status = %d, want 400", rec.Code)
	}

	rec = postJSON(t, s, "/admin/trials", map[string]interface{}{"email": "athlete@club.example", "days": 14})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var tg store.TrialGrant
	decodeInto(t, rec, &tg)
	if got := tg.ExpiresAt.Sub(tg.StartsAt); got != 14*24*time.Hour {
		t.Errorf("trial window = %v, want 14 days", got)
	}
}

func TestMetricsProxy(t *testing.T) {
	s := adminServer(newFakeRepo(), nil, nil, &fakeSubs{metrics: subs.Metrics{ActiveSubscribers: 420}})

	req := httptest.NewRequest(http.MethodGet, "/admin/metrics", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var m subs.Metrics
	decodeInto(t, rec, &m)
	if m.ActiveSubscribers != 420 {
		t.Errorf("active subscribers = %d, want 420", m.ActiveSubscribers)
	}
}

func TestUnknownPartnerIs404(t *testing.T) {
	s := adminServer(newFakeRepo(), nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/partners/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
