package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/constancia-hub/backend/internal/models"
)

func testCert() *models.CertificateDetail {
	return &models.CertificateDetail{
		Certificate: models.Certificate{
			SessionStart:     time.Date(2025, time.March, 10, 16, 0, 0, 0, time.UTC),
			SessionEnd:       time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC),
			DurationHours:    2,
			VerificationCode: "A1B2C3D4",
		},
		ParticipantName:    "Ana García",
		ParticipantTitle:   "Q.F.B.",
		CourseName:         "Curso de Hematología",
		ManagerName:        "María López",
		ManagerJobTitle:    "Gerente de Marketing",
		SpecialistName:     "Juan Pérez",
		SpecialistJobTitle: "Especialista de Producto",
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRenderer(NewFetcher(nil), "", nil)
	pdf, err := r.Render(context.Background(), testCert())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")), "output should be a PDF document")
}

func TestRenderSurvivesMissingImages(t *testing.T) {
	// Background and signatures point at sources nothing can resolve.
	r := NewRenderer(NewFetcher(nil), "no/such/background.png", nil)
	cert := testCert()
	cert.ManagerSignature = "no/such/firma.png"
	cert.SpecialistSignature = "no/such/firma2.png"

	pdf, err := r.Render(context.Background(), cert)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestFlattenToJPEGTurnsAlphaWhite(t *testing.T) {
	// A fully transparent PNG must flatten to white, not black.
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	flat, err := FlattenToJPEG(buf.Bytes())
	require.NoError(t, err)

	decoded, err := imaging.Decode(bytes.NewReader(flat))
	require.NoError(t, err)
	r, g, b, _ := decoded.At(4, 4).RGBA()
	assert.Greater(t, r, uint32(0xF000))
	assert.Greater(t, g, uint32(0xF000))
	assert.Greater(t, b, uint32(0xF000))
}

func TestFlattenToJPEGRejectsGarbage(t *testing.T) {
	_, err := FlattenToJPEG([]byte("not an image"))
	assert.Error(t, err)
}
