package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donation statuses. A record is created as pending and only ever moves
// forward; paid and completed both mean the money arrived.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ValidStatus reports whether s is one of the enumerated donation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// allowedTransitions lists the forward status moves. Repeating the current
// status is always a no-op and is handled before this table is consulted.
var allowedTransitions = map[string][]string{
	StatusPending: {StatusPaid, StatusCompleted, StatusFailed},
	StatusPaid:    {StatusCompleted},
}

// CanTransition reports whether a donation may move from one status to
// another. Same-status repeats are allowed (idempotent updates).
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Donation struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DonorID         string             `bson:"donor_id" json:"donorID"`
	DonorName       string             `bson:"donor_name" json:"donorName"`
	Email           string             `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber     string             `bson:"phone_number,omitempty" json:"phoneNumber,omitempty"`
	Address         string             `bson:"address,omitempty" json:"address,omitempty"`
	Purpose         string             `bson:"purpose,omitempty" json:"purpose,omitempty"`
	Amount          string             `bson:"amount" json:"amount"`
	Message         string             `bson:"message" json:"message"`
	DonationDate    time.Time          `bson:"donation_date" json:"donationDate"`
	IsAnonymous     bool               `bson:"is_anonymous" json:"isAnonymous"`
	Status          string             `bson:"status" json:"status"`
	AmountInWords   string             `bson:"amount_in_words,omitempty" json:"amountInWords,omitempty"`
	PaymentMethod   string             `bson:"payment_method,omitempty" json:"paymentMethod,omitempty"`
	DonationType    string             `bson:"donation_type,omitempty" json:"donationType,omitempty"`
	Relation        string             `bson:"relation,omitempty" json:"relation,omitempty"`
	SpouseName      string             `bson:"spouse_name,omitempty" json:"spouseName,omitempty"`
	PaymentIntentID string             `bson:"payment_intent_id,omitempty" json:"paymentIntentId,omitempty"`
	UPILink         string             `bson:"upi_link,omitempty" json:"upiLink,omitempty"`
	QRCodeURL       string             `bson:"qr_code_url,omitempty" json:"qrCodeUrl,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// DonationListItem is the caller-visible projection returned by the list
// endpoint. Every field is always present in the JSON shape; a field the
// record lacks is serialized as an explicit null, never omitted.
type DonationListItem struct {
	Amount        *string    `json:"amount"`
	Status        *string    `json:"status"`
	DonorName     *string    `json:"donorName"`
	DonationDate  *time.Time `json:"donationDate"`
	PaymentMethod *string    `json:"paymentMethod"`
	DonationID    string     `json:"donationId"`
}

// ListItem projects a donation for the list endpoint.
func (d *Donation) ListItem() DonationListItem {
	item := DonationListItem{DonationID: d.ID.Hex()}
	if d.Amount != "" {
		item.Amount = &d.Amount
	}
	if d.Status != "" {
		item.Status = &d.Status
	}
	if d.DonorName != "" {
		item.DonorName = &d.DonorName
	}
	if !d.DonationDate.IsZero() {
		item.DonationDate = &d.DonationDate
	}
	if d.PaymentMethod != "" {
		item.PaymentMethod = &d.PaymentMethod
	}
	return item
}
