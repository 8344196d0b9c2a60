package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/juleeperween/charity-backend/internal/config"
	"github.com/juleeperween/charity-backend/internal/models"
	"github.com/juleeperween/charity-backend/internal/receipt"
	"github.com/juleeperween/charity-backend/internal/services"
)

type stubRepo struct {
	donations map[string]*models.Donation
}

func newStubRepo() *stubRepo {
	return &stubRepo{donations: map[string]*models.Donation{}}
}

func (s *stubRepo) Insert(ctx context.Context, d *models.Donation) (string, error) {
	d.ID = primitive.NewObjectID()
	s.donations[d.ID.Hex()] = d
	return d.ID.Hex(), nil
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*models.Donation, error) {
	d, ok := s.donations[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *stubRepo) FindByDonorID(ctx context.Context, donorID string) (*models.Donation, error) {
	for _, d := range s.donations {
		if d.DonorID == donorID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *stubRepo) FindAll(ctx context.Context) ([]models.Donation, error) {
	out := make([]models.Donation, 0, len(s.donations))
	for _, d := range s.donations {
		out = append(out, *d)
	}
	return out, nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id, status string) (*models.Donation, error) {
	d, ok := s.donations[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	cp := *d
	return &cp, nil
}

func (s *stubRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.Donation, error) {
	d, ok := s.donations[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if msg, ok := fields["message"].(string); ok {
		d.Message = msg
	}
	d.UpdatedAt = time.Now()
	cp := *d
	return &cp, nil
}

func (s *stubRepo) Delete(ctx context.Context, id string) error {
	if _, ok := s.donations[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.donations, id)
	return nil
}

type stubQR struct{}

func (stubQR) DataURL(content string) (string, error) {
	return "data:image/png;base64,c3R1Yg==", nil
}

type stubVerifier struct{}

func (stubVerifier) GetCheckoutSession(ctx context.Context, sessionID string) (*services.CheckoutSession, error) {
	return &services.CheckoutSession{ID: sessionID, PaymentStatus: "unpaid"}, nil
}

func newTestRouter(t *testing.T) (*mux.Router, *stubRepo) {
	t.Helper()
	repo := newStubRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer := receipt.NewRenderer(receipt.DefaultOrganization(), t.TempDir())
	svc := services.NewDonationService(repo, stubQR{}, renderer, stubVerifier{}, logger, "trust@ybl", config.Profile{})
	h := NewDonationHandler(svc, logger)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/donations", h.CreateDonation).Methods("POST")
	api.HandleFunc("/donations", h.GetDonations).Methods("GET")
	api.HandleFunc("/donations/{donorID}", h.GetDonationByDonorID).Methods("GET")
	api.HandleFunc("/donation/{donationId}", h.GetDonationByID).Methods("GET")
	api.HandleFunc("/donation", h.GetDonationDetails).Methods("GET")
	api.HandleFunc("/update-status/{donationId}", h.UpdateStatus).Methods("PUT")
	api.HandleFunc("/update-donation/{donationId}", h.UpdateDonation).Methods("PUT")
	api.HandleFunc("/delete-donation/{donationId}", h.DeleteDonation).Methods("DELETE")
	api.HandleFunc("/download-invoice/{donationId}", h.DownloadInvoice).Methods("POST")
	api.HandleFunc("/payment-success", h.PaymentSuccess).Methods("GET")
	return router, repo
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("invalid JSON response: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, payload
}

func TestCreateAndFetchDonation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, payload := doJSON(t, router, http.MethodPost, "/api/donations",
		`{"amount": "100", "donorName": "Asha"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if payload["qr_code"] == "" || payload["qr_code"] == nil {
		t.Error("qr_code missing from create response")
	}
	link, _ := payload["genericUPILink"].(string)
	if !strings.Contains(link, "am=100") {
		t.Errorf("genericUPILink missing amount: %s", link)
	}
	id, _ := payload["donationId"].(string)
	if id == "" {
		t.Fatal("donationId missing from create response")
	}

	rec, payload = doJSON(t, router, http.MethodGet, "/api/donation/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on fetch, got %d", rec.Code)
	}
	donation, _ := payload["donation"].(map[string]any)
	if donation["status"] != "pending" {
		t.Errorf("status = %v, want pending", donation["status"])
	}
}

func TestCreateDonationValidationError(t *testing.T) {
	router, repo := newTestRouter(t)

	rec, payload := doJSON(t, router, http.MethodPost, "/api/donations",
		`{"amount": "100", "donorName": "   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if payload["success"] != false {
		t.Error("expected success=false in error envelope")
	}
	msg, _ := payload["message"].(string)
	if !strings.Contains(msg, "donorName") {
		t.Errorf("error message should name the field, got %q", msg)
	}
	if len(repo.donations) != 0 {
		t.Error("rejected submission must not persist")
	}
}

func TestGetDonationNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, payload := doJSON(t, router, http.MethodGet,
		"/api/donation/"+primitive.NewObjectID().Hex(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if payload["success"] != false {
		t.Error("expected success=false in error envelope")
	}
}

func TestListDonationsUniformShape(t *testing.T) {
	router, repo := newTestRouter(t)

	sparse := &models.Donation{DonorName: "Ravi", Amount: "50", Status: models.StatusPending}
	if _, err := repo.Insert(context.Background(), sparse); err != nil {
		t.Fatalf("insert sparse record: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/donations", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Success   bool             `json:"success"`
		Donations []map[string]any `json:"donations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(payload.Donations) != 1 {
		t.Fatalf("expected 1 item, got %d", len(payload.Donations))
	}
	item := payload.Donations[0]
	for _, key := range []string{"amount", "status", "donorName", "donationDate", "paymentMethod", "donationId"} {
		if _, present := item[key]; !present {
			t.Errorf("projection missing key %q", key)
		}
	}
	if item["paymentMethod"] != nil {
		t.Errorf("unset payment method should be explicit null, got %v", item["paymentMethod"])
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	_, payload := doJSON(t, router, http.MethodPost, "/api/donations",
		`{"amount": "500", "donorName": "Ravi"}`)
	id, _ := payload["donationId"].(string)

	rec, payload := doJSON(t, router, http.MethodPut, "/api/update-status/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	donation, _ := payload["donation"].(map[string]any)
	if donation["status"] != "paid" {
		t.Errorf("status = %v, want paid", donation["status"])
	}

	rec, _ = doJSON(t, router, http.MethodPut, "/api/update-status/"+primitive.NewObjectID().Hex(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestUpdateStatusRejectsMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	_, payload := doJSON(t, router, http.MethodPost, "/api/donations",
		`{"amount": "500", "donorName": "Ravi"}`)
	id, _ := payload["donationId"].(string)

	// garbage is not the same as an absent body: it must not default to paid
	rec, _ := doJSON(t, router, http.MethodPut, "/api/update-status/"+id, `{"status": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}

	_, payload = doJSON(t, router, http.MethodGet, "/api/donation/"+id, "")
	donation, _ := payload["donation"].(map[string]any)
	if donation["status"] != "pending" {
		t.Errorf("status = %v, want pending", donation["status"])
	}
}

func TestUpdateDonationRejectsUnknownField(t *testing.T) {
	router, _ := newTestRouter(t)

	_, payload := doJSON(t, router, http.MethodPost, "/api/donations",
		`{"amount": "100", "donorName": "Asha"}`)
	id, _ := payload["donationId"].(string)

	rec, _ := doJSON(t, router, http.MethodPut, "/api/update-donation/"+id,
		`{"status": "completed"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-mergeable field, got %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodPut, "/api/update-donation/"+id,
		`{"message": 123}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrongly-typed value, got %d", rec.Code)
	}

	rec, payload = doJSON(t, router, http.MethodPut, "/api/update-donation/"+id,
		`{"message": "Jai Ganesh"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	donation, _ := payload["donation"].(map[string]any)
	if donation["message"] != "Jai Ganesh" {
		t.Errorf("message = %v", donation["message"])
	}
}

func TestDeleteDonationEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	_, payload := doJSON(t, router, http.MethodPost, "/api/donations",
		`{"amount": "100", "donorName": "Asha"}`)
	id, _ := payload["donationId"].(string)

	rec, _ := doJSON(t, router, http.MethodDelete, "/api/delete-donation/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec, _ = doJSON(t, router, http.MethodGet, "/api/donation/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestDownloadInvoice(t *testing.T) {
	router, _ := newTestRouter(t)

	_, payload := doJSON(t, router, http.MethodPost, "/api/donations",
		`{"amount": "1500", "donorName": "Asha", "spouseName": "Ravi"}`)
	id, _ := payload["donationId"].(string)

	req := httptest.NewRequest(http.MethodPost, "/api/download-invoice/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "donation_receipt_") {
		t.Errorf("content disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("response body is not a PDF")
	}
}

func TestDownloadInvoiceUnknownIDFallsBackToJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, payload := doJSON(t, router, http.MethodPost,
		"/api/download-invoice/"+primitive.NewObjectID().Hex(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if payload["success"] != false {
		t.Error("expected JSON error envelope, not a partial file")
	}
}

func TestPaymentSuccess(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/api/payment-success", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session_id, got %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/payment-success?session_id=cs_1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unpaid session, got %d", rec.Code)
	}
}
