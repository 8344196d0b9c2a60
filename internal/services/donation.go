package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juleeperween/charity-backend/internal/config"
	"github.com/juleeperween/charity-backend/internal/models"
	"github.com/juleeperween/charity-backend/internal/numwords"
	"github.com/juleeperween/charity-backend/internal/qr"
	"github.com/juleeperween/charity-backend/internal/receipt"
	"github.com/juleeperween/charity-backend/internal/repository"
	"github.com/juleeperween/charity-backend/internal/upi"
)

// AmountOther is the sentinel selecting a custom donation amount.
const AmountOther = "other"

const defaultNote = "Donation"

var allowedAmounts = map[string]bool{
	"1": true, "2": true, "10": true, "20": true, "50": true, "100": true,
	"200": true, "500": true, "1000": true, "1500": true, "2000": true,
	"2500": true, "3000": true, "5000": true, "7000": true, "10000": true,
	"15000": true, "20000": true,
}

var allowedPurposes = map[string]bool{
	"abhishek": true, "donation": true, "annadaan": true, "jeernoddhar": true,
}

var (
	minCustomAmount = decimal.RequireFromString("0.50")
	maxCustomAmount = decimal.RequireFromString("20000")
)

// Indian mobile numbers: 10 digits, leading 6-9.
var phonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// DonationService implements the donation lifecycle: submission validation,
// link and QR generation, persistence, status transitions and receipt
// orchestration.
type DonationService struct {
	repo     repository.DonationRepository
	qr       qr.Encoder
	receipts *receipt.Renderer
	payments PaymentVerifier
	logger   *slog.Logger
	upiID    string
	profile  config.Profile
	validate *validator.Validate
}

func NewDonationService(
	repo repository.DonationRepository,
	qrEncoder qr.Encoder,
	receipts *receipt.Renderer,
	payments PaymentVerifier,
	logger *slog.Logger,
	upiID string,
	profile config.Profile,
) *DonationService {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &DonationService{
		repo:     repo,
		qr:       qrEncoder,
		receipts: receipts,
		payments: payments,
		logger:   logger,
		upiID:    upiID,
		profile:  profile,
		validate: v,
	}
}

// CreateDonationInput is a donation submission. CustomAmount is consulted
// only when Amount is "other"; decimal accepts both quoted and bare numbers.
type CreateDonationInput struct {
	Amount        string          `json:"amount" validate:"required"`
	CustomAmount  decimal.Decimal `json:"customAmount"`
	DonorName     string          `json:"donorName"`
	Email         string          `json:"email" validate:"omitempty,email"`
	PhoneNumber   string          `json:"phoneNumber"`
	Address       string          `json:"address"`
	Purpose       string          `json:"purpose"`
	Message       string          `json:"message"`
	SpouseName    string          `json:"spouseName"`
	DonationType  string          `json:"donationType"`
	Relation      string          `json:"relation"`
	PaymentMethod string          `json:"paymentMethod"`
	IsAnonymous   bool            `json:"isAnonymous"`
}

// CreateDonationResult is the create response: the persisted id plus every
// generated payment artifact the frontend renders.
type CreateDonationResult struct {
	Success        bool   `json:"success"`
	DonorName      string `json:"donorName"`
	QRCode         string `json:"qr_code"`
	GenericUPILink string `json:"genericUPILink"`
	GooglePayLink  string `json:"googlePayLink"`
	PhonePeLink    string `json:"phonePeLink"`
	DonationID     string `json:"donationId"`
	DonorID        string `json:"donorID"`
	Amount         string `json:"amount"`
}

// validateSubmission applies the submission rules and returns the effective
// amount string. Nothing is written when it fails.
func (s *DonationService) validateSubmission(in *CreateDonationInput) (string, error) {
	in.DonorName = strings.TrimSpace(in.DonorName)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Purpose = strings.TrimSpace(in.Purpose)

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return "", &models.ValidationError{Field: fe.Field(), Reason: "failed " + fe.Tag() + " validation"}
		}
		return "", &models.ValidationError{Field: "body", Reason: "invalid input"}
	}

	if in.DonorName == "" {
		return "", &models.ValidationError{Field: "donorName", Reason: "donor name is required"}
	}

	amount := in.Amount
	if amount == AmountOther {
		if in.CustomAmount.LessThan(minCustomAmount) {
			return "", &models.ValidationError{Field: "customAmount", Reason: "custom amount must be at least 0.50"}
		}
		if in.CustomAmount.GreaterThan(maxCustomAmount) {
			return "", &models.ValidationError{Field: "customAmount", Reason: "custom amount cannot exceed 20000"}
		}
		amount = in.CustomAmount.String()
	} else if !allowedAmounts[amount] {
		return "", &models.ValidationError{Field: "amount", Reason: "not an allowed donation amount"}
	}

	if s.profile.RequirePhone && in.PhoneNumber == "" {
		return "", &models.ValidationError{Field: "phoneNumber", Reason: "phone number is required"}
	}
	if in.PhoneNumber != "" && !phonePattern.MatchString(in.PhoneNumber) {
		return "", &models.ValidationError{Field: "phoneNumber", Reason: "must be 10 digits starting with 6-9"}
	}

	if s.profile.RequirePurpose && in.Purpose == "" {
		return "", &models.ValidationError{Field: "purpose", Reason: "purpose is required"}
	}
	if in.Purpose != "" && !allowedPurposes[in.Purpose] {
		return "", &models.ValidationError{Field: "purpose", Reason: "not an allowed purpose"}
	}

	if s.profile.RequireAddress && strings.TrimSpace(in.Address) == "" {
		return "", &models.ValidationError{Field: "address", Reason: "address is required"}
	}

	return amount, nil
}

// Create validates the submission, generates the UPI links and QR artifact,
// and persists a pending record. Any failure leaves nothing persisted.
func (s *DonationService) Create(ctx context.Context, in CreateDonationInput) (*CreateDonationResult, error) {
	amount, err := s.validateSubmission(&in)
	if err != nil {
		return nil, err
	}

	note := defaultNote
	if in.Purpose != "" {
		note = in.Purpose
	}
	params := upi.Params{
		PayeeAddress: s.upiID,
		PayeeName:    in.DonorName,
		Amount:       amount,
		Note:         note,
	}
	genericLink := upi.GenericLink(params)
	phonePeLink := upi.PhonePeLink(params)

	qrCodeURL, err := s.qr.DataURL(genericLink)
	if err != nil {
		return nil, &models.RenderError{Op: "generate UPI QR code", Err: err}
	}

	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "UPI"
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		message = "No message"
	}

	now := time.Now()
	donation := &models.Donation{
		DonorID:       uuid.NewString(),
		DonorName:     in.DonorName,
		Email:         in.Email,
		PhoneNumber:   in.PhoneNumber,
		Address:       strings.TrimSpace(in.Address),
		Purpose:       in.Purpose,
		Amount:        amount,
		Message:       message,
		DonationDate:  now,
		IsAnonymous:   in.IsAnonymous,
		Status:        models.StatusPending,
		AmountInWords: amountWords(amount),
		PaymentMethod: paymentMethod,
		DonationType:  in.DonationType,
		Relation:      in.Relation,
		SpouseName:    in.SpouseName,
		UPILink:       genericLink,
		QRCodeURL:     qrCodeURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	id, err := s.repo.Insert(ctx, donation)
	if err != nil {
		return nil, err
	}

	s.logger.Info("donation created", "donationId", id, "donorId", donation.DonorID, "amount", amount)
	return &CreateDonationResult{
		Success:        true,
		DonorName:      in.DonorName,
		QRCode:         qrCodeURL,
		GenericUPILink: genericLink,
		GooglePayLink:  genericLink,
		PhonePeLink:    phonePeLink,
		DonationID:     id,
		DonorID:        donation.DonorID,
		Amount:         amount,
	}, nil
}

// amountWords spells the whole-rupee part of the amount; sub-rupee custom
// amounts have no words form.
func amountWords(amount string) string {
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return ""
	}
	n := dec.IntPart()
	if n <= 0 {
		return ""
	}
	words, err := numwords.ToWords(n)
	if err != nil {
		return ""
	}
	return words
}

// Get returns the donation with the given primary id.
func (s *DonationService) Get(ctx context.Context, id string) (*models.Donation, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByDonorID returns the donation for a donor's secondary identifier.
func (s *DonationService) GetByDonorID(ctx context.Context, donorID string) (*models.Donation, error) {
	return s.repo.FindByDonorID(ctx, donorID)
}

// List returns all donations projected to the uniform caller-visible shape.
func (s *DonationService) List(ctx context.Context) ([]models.DonationListItem, error) {
	donations, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]models.DonationListItem, 0, len(donations))
	for i := range donations {
		items = append(items, donations[i].ListItem())
	}
	return items, nil
}

// UpdateStatus moves a donation to the given status (default "paid").
// Repeating the current status is a no-op; backward transitions are refused.
func (s *DonationService) UpdateStatus(ctx context.Context, id, status string) (*models.Donation, error) {
	if status == "" {
		status = models.StatusPaid
	}
	if !models.ValidStatus(status) {
		return nil, &models.ValidationError{Field: "status", Reason: "not one of pending, paid, completed, failed"}
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if !models.CanTransition(current.Status, status) {
		return nil, &models.ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("cannot transition from %s to %s", current.Status, status),
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("donation status updated", "donationId", id, "status", status)
	return updated, nil
}

type mutableField struct {
	key  string
	kind reflect.Kind
}

// mutableFields maps caller-facing field names onto store keys and the type
// each value must carry. Generated artifacts and the status are not
// mergeable; status moves only through UpdateStatus.
var mutableFields = map[string]mutableField{
	"donorName":     {"donor_name", reflect.String},
	"email":         {"email", reflect.String},
	"phoneNumber":   {"phone_number", reflect.String},
	"address":       {"address", reflect.String},
	"purpose":       {"purpose", reflect.String},
	"message":       {"message", reflect.String},
	"spouseName":    {"spouse_name", reflect.String},
	"donationType":  {"donation_type", reflect.String},
	"relation":      {"relation", reflect.String},
	"isAnonymous":   {"is_anonymous", reflect.Bool},
	"paymentMethod": {"payment_method", reflect.String},
}

// UpdateFields merges the allow-listed fields into the record. Values are
// type-checked before the store sees them; a wrongly-typed value would
// otherwise poison every later decode of the record.
func (s *DonationService) UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.Donation, error) {
	if len(fields) == 0 {
		return nil, &models.ValidationError{Field: "body", Reason: "no fields to update"}
	}

	set := make(map[string]any, len(fields))
	for name, value := range fields {
		field, ok := mutableFields[name]
		if !ok {
			return nil, &models.ValidationError{Field: name, Reason: "field is not updatable"}
		}
		if value == nil || reflect.TypeOf(value).Kind() != field.kind {
			return nil, &models.ValidationError{Field: name, Reason: fmt.Sprintf("must be a %s", field.kind)}
		}
		set[field.key] = value
	}

	updated, err := s.repo.UpdateFields(ctx, id, set)
	if err != nil {
		return nil, err
	}
	s.logger.Info("donation updated", "donationId", id)
	return updated, nil
}

// Delete removes a donation.
func (s *DonationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("donation deleted", "donationId", id)
	return nil
}

// RenderInvoice renders the invoice PDF for a donation into memory so a
// failed render can fall back to a JSON error instead of a partial file.
func (s *DonationService) RenderInvoice(ctx context.Context, id string) ([]byte, string, error) {
	donation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := s.receipts.RenderInvoice(&buf, donation); err != nil {
		return nil, "", &models.RenderError{Op: "render invoice", Err: err}
	}
	return buf.Bytes(), receipt.FileName(donation.DonorID), nil
}

// rupees converts a processor total in paise to a rupee amount string,
// keeping any fractional part.
func rupees(totalPaise int64) string {
	return decimal.NewFromInt(totalPaise).Div(decimal.NewFromInt(100)).String()
}

// PaymentSuccessResult reports a verified processor payment and where the
// generated receipt was written.
type PaymentSuccessResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ReceiptPath string `json:"receiptPath"`
}

// VerifyExternalPayment looks up a processor checkout session; when the
// session is paid it writes the receipt from the session metadata.
func (s *DonationService) VerifyExternalPayment(ctx context.Context, sessionID string) (*PaymentSuccessResult, error) {
	if sessionID == "" {
		return nil, &models.ValidationError{Field: "session_id", Reason: "session ID is required"}
	}

	session, err := s.payments.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PaymentStatus != "paid" {
		return nil, models.ErrPaymentNotCompleted
	}

	amount := rupees(session.AmountTotal)
	donorID := session.Metadata["donorID"]
	if donorID == "" {
		donorID = session.ID
	}
	words := session.Metadata["amountInWords"]
	if words == "" {
		words = amountWords(amount)
	}

	donation := &models.Donation{
		DonorID:         donorID,
		DonorName:       session.Metadata["donorName"],
		SpouseName:      session.Metadata["spouseName"],
		Amount:          amount,
		AmountInWords:   words,
		PaymentMethod:   "Stripe",
		PaymentIntentID: session.PaymentIntent,
		DonationDate:    time.Now(),
	}

	path, err := s.receipts.WriteFile(donation)
	if err != nil {
		return nil, &models.RenderError{Op: "write receipt", Err: err}
	}

	s.logger.Info("payment verified, receipt written", "sessionId", sessionID, "path", path)
	return &PaymentSuccessResult{
		Success:     true,
		Message:     "Thank you for your donation! Your payment was successful.",
		ReceiptPath: path,
	}, nil
}
