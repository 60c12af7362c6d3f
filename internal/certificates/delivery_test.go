package certificates

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/constancia-hub/backend/internal/models"
)

func TestArchiveEntryName(t *testing.T) {
	id := uuid.MustParse("0b5e9a1c-1111-2222-3333-444455556666")
	cert := &models.CertificateDetail{
		Certificate:     models.Certificate{ID: id},
		ParticipantName: "Ana María García/Q.F.B.",
	}
	name := ArchiveEntryName(cert)
	assert.Equal(t, "constancia_Ana_María_García-Q.F.B._0b5e9a1c.pdf", name)
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, " ")
}
