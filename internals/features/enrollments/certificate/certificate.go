package certificate

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// Data is everything printed on an enrollment certificate.
type Data struct {
	SchoolName  string
	StudentName string
	StudentRUT  string
	CourseLabel string
	Period      string
	Status      string
	IssuedAt    time.Time
	// VerifyURL is encoded in the QR; empty skips the QR block
	VerifyURL string
	Folio     string
}

var statusLabel = map[string]string{
	"pre-matricula": "Pre-matrícula",
	"confirmada":    "Matrícula confirmada",
	"retirada":      "Retirado",
	"anulada":       "Anulada",
}

// Render writes an A4 certificate.
func Render(d Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Certificado de matrícula"), false)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(d.SchoolName), "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr("CERTIFICADO DE MATRÍCULA"), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	rut := ""
	if d.StudentRUT != "" {
		rut = fmt.Sprintf(", RUT %s,", d.StudentRUT)
	}
	label, ok := statusLabel[d.Status]
	if !ok {
		label = d.Status
	}
	body := fmt.Sprintf(
		"Se certifica que %s%s se encuentra matriculado(a) en %s para el periodo académico %s. Estado: %s.",
		d.StudentName, rut, d.CourseLabel, d.Period, label,
	)
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 7, tr(body), "", "J", false)
	pdf.Ln(8)
	pdf.MultiCell(0, 7, tr("Se extiende el presente certificado a solicitud del interesado para los fines que estime conveniente."), "", "J", false)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Emitido el %s", d.IssuedAt.Format("02-01-2006 15:04"))), "", 1, "L", false, 0, "")
	if d.Folio != "" {
		pdf.CellFormat(0, 6, tr("Folio: "+d.Folio), "", 1, "L", false, 0, "")
	}

	if d.VerifyURL != "" {
		png, err := qrcode.Encode(d.VerifyURL, qrcode.Medium, 256)
		if err != nil {
			return nil, errors.Wrap(err, "qr")
		}
		opt := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("qr", opt, bytes.NewReader(png))
		y := pdf.GetY() + 6
		pdf.ImageOptions("qr", 20, y, 35, 35, false, opt, 0, "")
		pdf.SetXY(60, y+12)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr("Verifique la autenticidad escaneando el código o en "+d.VerifyURL), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "pdf")
	}
	return buf.Bytes(), nil
}

// Folio is a short human reference for a certificate.
func Folio(enrollmentID string, at time.Time) string {
	id := enrollmentID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("MAT-%s-%s", at.Format("20060102"), id)
}
