package certificate

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPDF(t *testing.T) {
	out, err := Render(Data{
		SchoolName:  "Colegio San Andrés",
		StudentName: "Ana Rojas",
		StudentRUT:  "12345678-5",
		CourseLabel: "1° Básico A",
		Period:      "2025",
		Status:      "confirmada",
		IssuedAt:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		VerifyURL:   "https://colegio.test/verificar/abc",
		Folio:       "MAT-20250301-abcdef12",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestFolio(t *testing.T) {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "MAT-20250301-0f1e2d3c", Folio("0f1e2d3c-aaaa-bbbb-cccc-000000000000", at))
	assert.Equal(t, "MAT-20250301-abc", Folio("abc", at))
}
