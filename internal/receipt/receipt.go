// Package receipt draws donation receipts and invoices as PDF documents.
// Layout constants follow the trust's printed seva receipt.
package receipt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/juleeperween/charity-backend/internal/models"
)

// Organization is the static header block printed on every document.
type Organization struct {
	Name     string
	Locality string
	RegNo    string
	Title    string
}

// DefaultOrganization returns the trust header. The trust name is romanized;
// the core PDF fonts carry only Latin glyphs.
func DefaultOrganization() Organization {
	return Organization{
		Name:     "Shree Gopal Ganpati Devasthan Trust",
		Locality: "Farmagudi Bandivade Ponda - Goa",
		RegNo:    "Reg. No. PON-4-10-2020",
		Title:    "Seva Receipt",
	}
}

// Placeholders for optional fields so a sparse record still renders a
// complete document.
const (
	placeholderNA      = "N/A"
	placeholderMessage = "No message"
	placeholderAddress = "No address provided"

	closingLine = "Thank you for your generous contribution!"
	dateLayout  = "02/01/2006"
)

// Renderer lays out receipt documents for donation records.
type Renderer struct {
	org       Organization
	outputDir string
}

func NewRenderer(org Organization, outputDir string) *Renderer {
	return &Renderer{org: org, outputDir: outputDir}
}

// FileName returns the artifact name for a donor's receipt.
func FileName(donorID string) string {
	return fmt.Sprintf("donation_receipt_%s.pdf", donorID)
}

func generatedDate() string {
	return time.Now().Format(dateLayout)
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}

func newPage() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(30, 30, 30)
	pdf.AddPage()
	pdf.Rect(30, 30, 550, 750, "D")
	return pdf
}

func blueRule(pdf *gofpdf.Fpdf, y float64) {
	pdf.SetDrawColor(30, 144, 255)
	pdf.SetLineWidth(1)
	pdf.Line(32, y, 578, y)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
}

// Render writes the file-receipt layout: header block, receipt number and
// date, donor line, message, the one-row itemization table, amount in words,
// total, payment method and the closing acknowledgment.
func (r *Renderer) Render(w io.Writer, d *models.Donation) error {
	pdf := newPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(50, 100, r.org.Name)
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(50, 120, r.org.Locality)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(50, 140, r.org.RegNo)
	pdf.Text(50, 160, r.org.Title)

	pdf.Text(330, 200, "Receipt Number: "+d.DonorID)
	pdf.Text(330, 220, "Date: "+d.DonationDate.Format(dateLayout))

	pdf.Text(50, 250, "Donor: Shri. "+d.DonorName)
	pdf.Text(50, 270, "Message: "+orPlaceholder(d.Message, placeholderMessage))
	pdf.Text(50, 290, "Address: "+orPlaceholder(d.Address, placeholderAddress))

	pdf.Text(50, 320, "S.No")
	pdf.Text(150, 320, "Spouse")
	pdf.Text(300, 320, "Amount")
	pdf.Line(50, 330, 450, 330)

	spouse := placeholderNA
	if d.SpouseName != "" {
		spouse = "Smt. " + d.SpouseName
	}
	pdf.Text(50, 345, "1")
	pdf.Text(150, 345, spouse)
	pdf.Text(300, 345, "Rs. "+d.Amount)

	pdf.Text(50, 380, "Amount in Words: "+orPlaceholder(d.AmountInWords, placeholderNA))

	pdf.Text(300, 410, "Total")
	pdf.Text(360, 410, "Rs. "+d.Amount)

	pdf.Text(50, 440, "Payment Method:")
	pdf.Text(160, 440, orPlaceholder(d.PaymentMethod, placeholderNA))
	pdf.Text(300, 440, "Date:")
	pdf.Text(360, 440, d.DonationDate.Format(dateLayout))

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(30, 480)
	pdf.CellFormat(550, 16, closingLine, "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

// RenderInvoice writes the streamed-invoice variant: generated date and
// registration number top-right, centered header, ruled sections between the
// donor block, itemization table and payment block.
func (r *Renderer) RenderInvoice(w io.Writer, d *models.Donation) error {
	pdf := newPage()

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(440, 55, "Date: "+generatedDate())
	pdf.Text(440, 70, r.org.RegNo)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(150, 105, r.org.Name)
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(200, 125, r.org.Locality)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(260, 160, r.org.Title)
	blueRule(pdf, 180)

	pdf.Text(50, 205, "Donor: "+d.DonorName)
	pdf.Text(50, 225, "Amount: Rs. "+d.Amount)
	pdf.Text(50, 245, "Donation Date: "+d.DonationDate.Format(dateLayout))
	blueRule(pdf, 270)

	pdf.Text(50, 290, "S.No")
	pdf.Text(150, 290, "Spouse")
	pdf.Text(300, 290, "Amount")

	spouse := placeholderNA
	if d.SpouseName != "" {
		spouse = "Smt. " + d.SpouseName
	}
	pdf.Text(50, 320, "1")
	pdf.Text(150, 320, spouse)
	pdf.Text(300, 320, "Rs. "+d.Amount)
	blueRule(pdf, 340)

	pdf.Text(50, 365, "Amount in Words: "+orPlaceholder(d.AmountInWords, placeholderNA))

	pdf.Text(300, 395, "Total")
	pdf.Text(360, 395, "Rs. "+d.Amount)

	pdf.Text(50, 430, "Payment Method:")
	pdf.Text(160, 430, orPlaceholder(d.PaymentMethod, placeholderNA))
	pdf.Text(300, 430, "Date:")
	pdf.Text(360, 430, d.DonationDate.Format(dateLayout))
	blueRule(pdf, 450)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(30, 475)
	pdf.CellFormat(550, 16, closingLine, "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

// WriteFile renders the receipt into the configured output directory and
// returns the file path. A failed render never leaves a truncated artifact
// behind.
func (r *Renderer) WriteFile(d *models.Donation) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create receipt directory: %w", err)
	}

	path := filepath.Join(r.outputDir, FileName(d.DonorID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}

	if err := r.Render(f, d); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("render receipt: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close receipt file: %w", err)
	}
	return path, nil
}
