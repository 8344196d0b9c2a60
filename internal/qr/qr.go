// Package qr renders payment links as QR images.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Encoder produces a scannable image for a payment link. The service depends
// on this interface so tests can substitute a stub.
type Encoder interface {
	DataURL(content string) (string, error)
}

// PNGEncoder encodes QR codes as base64 PNG data URLs, the same artifact
// shape the frontend already consumes as an <img> source.
type PNGEncoder struct {
	Size int // image edge in pixels
}

func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{Size: 256}
}

func (e *PNGEncoder) DataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, e.Size)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
