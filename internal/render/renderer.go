// Package render produces certificate PDFs with embedded raster assets.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/internal/models"
)

// ErrRender means the PDF engine failed; no partial output is returned.
var ErrRender = errors.New("certificate rendering failed")

// Letter landscape in millimeters, zero margins.
const (
	pageW = 279.4
	pageH = 215.9
)

// Renderer turns a certificate record into a single-page PDF.
type Renderer struct {
	fetch      *Fetcher
	background string // source of the fixed background template image
	logger     *zap.Logger
}

// NewRenderer creates a certificate renderer.
func NewRenderer(fetch *Fetcher, backgroundSource string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{fetch: fetch, background: backgroundSource, logger: logger}
}

// Render produces the PDF bytes for one certificate, or ErrRender on engine
// failure. Missing images leave their slot blank; rendering proceeds.
func (r *Renderer) Render(ctx context.Context, cert *models.CertificateDetail) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	r.placeImage(ctx, pdf, "background", r.background, 0, 0, pageW, pageH)

	// Participant name with professional title, centered on the layout.
	name := cert.ParticipantName
	if cert.ParticipantTitle != "" {
		name = cert.ParticipantTitle + " " + name
	}
	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetTextColor(30, 30, 30)
	pdf.SetXY(0, 80)
	pdf.CellFormat(pageW, 14, tr(name), "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.SetXY(0, 100)
	label := "por su participación en el curso"
	if cert.IsWebinar {
		label = "por su participación en el webinar"
	}
	pdf.CellFormat(pageW, 8, tr(label), "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(0, 112)
	pdf.CellFormat(pageW, 10, tr(cert.CourseName), "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 13)
	pdf.SetXY(0, 128)
	detail := fmt.Sprintf("con una duración de %s horas, concluido el %s",
		FormatDurationHours(cert.DurationHours), FormatLongDate(cert.SessionEnd))
	pdf.CellFormat(pageW, 7, tr(detail), "", 0, "C", false, 0, "")

	// Signature blocks: manager on the left, specialist on the right.
	r.signatureBlock(ctx, pdf, tr, 40, cert.ManagerSignature, cert.ManagerName, cert.ManagerJobTitle)
	r.signatureBlock(ctx, pdf, tr, 169.4, cert.SpecialistSignature, cert.SpecialistName, cert.SpecialistJobTitle)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(110, 110, 110)
	pdf.SetXY(0, 205)
	pdf.CellFormat(pageW, 5, tr("Código de verificación: "+cert.VerificationCode), "", 0, "C", false, 0, "")

	if pdf.Err() {
		r.logger.Error("pdf engine error", zap.String("certificate_id", cert.ID.String()), zap.String("error", pdf.Error().Error()))
		return nil, ErrRender
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.logger.Error("pdf output failed", zap.Error(err), zap.String("certificate_id", cert.ID.String()))
		return nil, ErrRender
	}
	return buf.Bytes(), nil
}

// signatureBlock draws one signature image above the signer's name and title.
func (r *Renderer) signatureBlock(ctx context.Context, pdf *gofpdf.Fpdf, tr func(string) string, x float64, source, name, jobTitle string) {
	const blockW = 70.0
	r.placeImage(ctx, pdf, "sig-"+name, source, x+10, 150, blockW-20, 20)

	pdf.SetTextColor(30, 30, 30)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(x, 172)
	pdf.CellFormat(blockW, 5, tr(name), "T", 0, "C", false, 0, "")
	if jobTitle != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(x, 178)
		pdf.CellFormat(blockW, 4, tr(jobTitle), "", 0, "C", false, 0, "")
	}
}

// placeImage fetches, flattens and embeds one image. A missing or broken
// image leaves the slot blank.
func (r *Renderer) placeImage(ctx context.Context, pdf *gofpdf.Fpdf, name, source string, x, y, w, h float64) {
	if source == "" {
		return
	}
	raw, err := r.fetch.Fetch(ctx, source)
	if err != nil || raw == nil {
		r.logger.Warn("image unavailable, leaving slot blank", zap.String("source", source), zap.Error(err))
		return
	}
	flat, err := FlattenToJPEG(raw)
	if err != nil {
		r.logger.Warn("image flatten failed, leaving slot blank", zap.String("source", source), zap.Error(err))
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "JPEG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(flat))
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}
