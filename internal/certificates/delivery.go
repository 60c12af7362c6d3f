package certificates

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/internal/emaillog"
	"github.com/constancia-hub/backend/internal/models"
	"github.com/constancia-hub/backend/pkg/mailer"
)

// PDFRenderer turns a certificate into its PDF bytes. Satisfied by
// *render.Renderer.
type PDFRenderer interface {
	Render(ctx context.Context, cert *models.CertificateDetail) ([]byte, error)
}

// SendSummary tallies a mass-email run.
type SendSummary struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed,omitempty"`
}

// Delivery renders certificates and gets them to participants: single
// downloads, zip archives and email batches.
type Delivery struct {
	repo     *Repository
	renderer PDFRenderer
	sender   mailer.Sender
	logs     *emaillog.Repository
	logger   *zap.Logger
}

// NewDelivery wires the delivery service.
func NewDelivery(repo *Repository, renderer PDFRenderer, sender mailer.Sender, logs *emaillog.Repository, logger *zap.Logger) *Delivery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Delivery{repo: repo, renderer: renderer, sender: sender, logs: logs, logger: logger}
}

// ArchiveEntryName builds a stable, filesystem-safe file name for one
// certificate PDF.
func ArchiveEntryName(cert *models.CertificateDetail) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		case ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(cert.ParticipantName))
	return fmt.Sprintf("constancia_%s_%s.pdf", name, cert.ID.String()[:8])
}

// RenderOne fetches and renders a single certificate PDF.
func (d *Delivery) RenderOne(ctx context.Context, id uuid.UUID) (*models.CertificateDetail, []byte, error) {
	cert, err := d.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := d.renderer.Render(ctx, cert)
	if err != nil {
		return nil, nil, err
	}
	return cert, pdf, nil
}

// BuildArchive renders the given certificates into a zip archive, one PDF per
// entry. Rendering failures abort the archive rather than shipping it incomplete.
func (d *Delivery) BuildArchive(ctx context.Context, ids []uuid.UUID) ([]byte, error) {
	certs, err := d.repo.ListDetails(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates found for archive")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i := range certs {
		cert := &certs[i]
		pdf, err := d.renderer.Render(ctx, cert)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("render %s: %w", cert.ID, err)
		}
		w, err := zw.Create(ArchiveEntryName(cert))
		if err != nil {
			zw.Close()
			return nil, err
		}
		if _, err := w.Write(pdf); err != nil {
			zw.Close()
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SendBatch emails each certificate to its participant with the PDF attached,
// logging every attempt. One recipient failing does not stop the rest; the
// summary carries the tally.
func (d *Delivery) SendBatch(ctx context.Context, ids []uuid.UUID, surveyBaseURL string) (*SendSummary, error) {
	certs, err := d.repo.ListDetails(ctx, ids)
	if err != nil {
		return nil, err
	}

	sum := &SendSummary{}
	for i := range certs {
		cert := &certs[i]
		if err := d.sendOne(ctx, cert, surveyBaseURL); err != nil {
			d.logger.Warn("certificate email failed",
				zap.String("certificate_id", cert.ID.String()),
				zap.String("recipient", cert.ParticipantEmail),
				zap.Error(err))
			sum.Failed = append(sum.Failed, fmt.Sprintf("%s: %v", cert.ParticipantEmail, err))
			continue
		}
		sum.Sent++
	}
	return sum, nil
}

func (d *Delivery) sendOne(ctx context.Context, cert *models.CertificateDetail, surveyBaseURL string) error {
	pdf, err := d.renderer.Render(ctx, cert)
	if err != nil {
		d.logAttempt(ctx, cert, models.EmailLogStatusFailed, err)
		return err
	}

	subject := fmt.Sprintf("Constancia de participación: %s", cert.CourseName)
	body := fmt.Sprintf("Hola %s,\n\nAdjuntamos tu constancia de participación en %q.\n",
		cert.ParticipantName, cert.CourseName)
	if surveyBaseURL != "" && cert.SurveyToken != "" {
		body += fmt.Sprintf("\nAyúdanos a mejorar respondiendo una breve encuesta:\n%s/%s\n",
			strings.TrimRight(surveyBaseURL, "/"), cert.SurveyToken)
	}

	err = d.sender.Send(ctx, mailer.Message{
		ToName:    cert.ParticipantName,
		ToAddress: cert.ParticipantEmail,
		Subject:   subject,
		BodyText:  body,
		Attachments: []mailer.Attachment{{
			Content:     pdf,
			ContentType: "application/pdf",
			Filename:    ArchiveEntryName(cert),
		}},
	})
	if err != nil {
		d.logAttempt(ctx, cert, models.EmailLogStatusFailed, err)
		return err
	}
	d.logAttempt(ctx, cert, models.EmailLogStatusSent, nil)
	return nil
}

// logAttempt records the delivery outcome; audit failures are logged, not fatal.
func (d *Delivery) logAttempt(ctx context.Context, cert *models.CertificateDetail, status string, sendErr error) {
	entry := &models.EmailLog{
		CertificateID:  &cert.ID,
		EmailType:      models.EmailTypeCertificate,
		RecipientEmail: cert.ParticipantEmail,
		Subject:        fmt.Sprintf("Constancia de participación: %s", cert.CourseName),
		Status:         status,
	}
	if status == models.EmailLogStatusSent {
		entry.SentAt = emaillog.Now()
	}
	if sendErr != nil {
		entry.ErrorMessage = sendErr.Error()
	}
	if err := d.logs.Create(ctx, entry); err != nil {
		d.logger.Error("email log write failed", zap.Error(err))
	}
}
