// Package sheet renders an evaluation sheet as PDF.
package sheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	questionModel "colegio_backend/internals/features/academics/questions/model"
)

type Sheet struct {
	SchoolName  string
	CourseLabel string
	SubjectName string
	TeacherName string
	Title       string
	Description string
	Type        string
	Date        string
	Questions   []questionModel.Question
}

func Render(s Sheet) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(s.Title), false)
	pdf.SetMargins(18, 16, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s · página %d", s.SchoolName, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// header
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr(s.SchoolName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(95, 6, tr("Curso: "+s.CourseLabel), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Asignatura: "+s.SubjectName), "", 1, "L", false, 0, "")
	pdf.CellFormat(95, 6, tr("Docente: "+s.TeacherName), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Fecha: "+s.Date), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Nombre: ______________________________________   Puntaje: ______"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 7, tr(strings.ToUpper(s.Title)), "", "C", false)
	if s.Type != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 5, tr("Evaluación "+s.Type), "", 1, "C", false, 0, "")
	}
	if s.Description != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(s.Description), "", "J", false)
	}
	pdf.Ln(4)

	for i, q := range s.Questions {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s (%s pts)", i+1, q.QuestionStatement, trimFloat(q.QuestionPoints))), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		switch q.QuestionType {
		case questionModel.TypeMultipleChoice:
			for _, o := range q.QuestionOptions.Data() {
				pdf.SetX(26)
				pdf.MultiCell(0, 5, tr(fmt.Sprintf("%s) %s", o.Key, o.Text)), "", "L", false)
			}
		case questionModel.TypeTrueFalse:
			pdf.SetX(26)
			pdf.CellFormat(0, 5, "V ____    F ____", "", 1, "L", false, 0, "")
		default:
			for j := 0; j < 4; j++ {
				pdf.SetX(26)
				pdf.CellFormat(0, 7, "", "B", 1, "L", false, 0, "")
			}
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "pdf")
	}
	return buf.Bytes(), nil
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
