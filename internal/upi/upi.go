// Package upi builds UPI deep links. UPI apps share a common query-parameter
// set; only the scheme prefix differs between the generic link and brand
// deep links.
package upi

import (
	"fmt"
	"net/url"
)

const currency = "INR"

// Params carries the fields embedded in a payment link. Amount is taken as
// already validated; this package only formats.
type Params struct {
	PayeeAddress string // receiving UPI VPA, e.g. "trust@ybl"
	PayeeName    string
	Amount       string
	Note         string
}

// GenericLink returns the upi:// deep link understood by every UPI app.
// Google Pay accepts this link unchanged.
func GenericLink(p Params) string {
	return build("upi://pay", p)
}

// PhonePeLink returns the PhonePe-branded deep link with the same query
// parameters as the generic link.
func PhonePeLink(p Params) string {
	return build("phonepe://upi/pay", p)
}

func build(base string, p Params) string {
	return fmt.Sprintf("%s?pa=%s&pn=%s&am=%s&cu=%s&tn=%s",
		base,
		url.QueryEscape(p.PayeeAddress),
		url.QueryEscape(p.PayeeName),
		p.Amount,
		currency,
		url.QueryEscape(p.Note),
	)
}
