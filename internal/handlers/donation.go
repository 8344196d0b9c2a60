package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/juleeperween/charity-backend/internal/models"
	"github.com/juleeperween/charity-backend/internal/services"
)

// DonationHandler exposes the donation lifecycle over HTTP.
type DonationHandler struct {
	service *services.DonationService
	logger  *slog.Logger
}

func NewDonationHandler(service *services.DonationService, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{service: service, logger: logger}
}

// CreateDonation handles POST /api/donations.
func (h *DonationHandler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	var input services.CreateDonationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	result, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type donationsResponse struct {
	Success   bool                      `json:"success"`
	Donations []models.DonationListItem `json:"donations"`
}

// GetDonations handles GET /api/donations.
func (h *DonationHandler) GetDonations(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, donationsResponse{Success: true, Donations: items})
}

type donationResponse struct {
	Success  bool             `json:"success"`
	Donation *models.Donation `json:"donation"`
}

// GetDonationByDonorID handles GET /api/donations/{donorID}.
func (h *DonationHandler) GetDonationByDonorID(w http.ResponseWriter, r *http.Request) {
	donorID := mux.Vars(r)["donorID"]
	donation, err := h.service.GetByDonorID(r.Context(), donorID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, donationResponse{Success: true, Donation: donation})
}

// GetDonationByID handles GET /api/donation/{donationId}.
func (h *DonationHandler) GetDonationByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["donationId"]
	donation, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, donationResponse{Success: true, Donation: donation})
}

type donationDetail struct {
	ID            string    `json:"id"`
	DonorID       string    `json:"donorID"`
	DonorName     string    `json:"donorName"`
	SpouseName    string    `json:"spouseName"`
	DonationDate  time.Time `json:"donationDate"`
	Amount        string    `json:"amount"`
	AmountInWords string    `json:"amountInWords"`
	Message       string    `json:"message"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	UPILink       string    `json:"upiLink"`
	QRCode        string    `json:"qrCode"`
}

type donationDetailResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Donation donationDetail `json:"donation"`
}

// GetDonationDetails handles GET /api/donation?id=.
func (h *DonationHandler) GetDonationDetails(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeMessage(w, http.StatusBadRequest, "Donation ID is required.")
		return
	}

	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, donationDetailResponse{
		Success: true,
		Message: "Donation details fetched successfully.",
		Donation: donationDetail{
			ID:            d.ID.Hex(),
			DonorID:       d.DonorID,
			DonorName:     d.DonorName,
			SpouseName:    d.SpouseName,
			DonationDate:  d.DonationDate,
			Amount:        d.Amount,
			AmountInWords: d.AmountInWords,
			Message:       d.Message,
			PaymentMethod: d.PaymentMethod,
			Status:        d.Status,
			UPILink:       d.UPILink,
			QRCode:        d.QRCodeURL,
		},
	})
}

type updateStatusResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Donation *models.Donation `json:"donation"`
}

// UpdateStatus handles PUT /api/update-status/{donationId}. An absent or
// empty body defaults the target status to "paid".
func (h *DonationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["donationId"]

	var body struct {
		Status string `json:"status"`
	}
	if r.Body != nil {
		// body is optional, but a present body must be valid JSON
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, h.logger, &models.ValidationError{Field: "body", Reason: "invalid JSON"})
			return
		}
	}

	donation, err := h.service.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updateStatusResponse{
		Success:  true,
		Message:  fmt.Sprintf("Donation status updated to %s", donation.Status),
		Donation: donation,
	})
}

// UpdateDonation handles PUT /api/update-donation/{donationId}.
func (h *DonationHandler) UpdateDonation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["donationId"]

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	donation, err := h.service.UpdateFields(r.Context(), id, fields)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, donationResponse{Success: true, Donation: donation})
}

// DeleteDonation handles DELETE /api/delete-donation/{donationId}.
func (h *DonationHandler) DeleteDonation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["donationId"]
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Donation deleted successfully.")
}

// DownloadInvoice handles POST /api/download-invoice/{donationId}. The PDF
// is rendered fully in memory first; failures fall back to a JSON error
// rather than a truncated file.
func (h *DonationHandler) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["donationId"]
	if id == "" {
		writeMessage(w, http.StatusBadRequest, "Donation ID is required.")
		return
	}

	pdf, filename, err := h.service.RenderInvoice(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.logger.Error("failed to stream invoice", "donationId", id, "error", err)
	}
}

// PaymentSuccess handles GET /api/payment-success?session_id=.
func (h *DonationHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.VerifyExternalPayment(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
