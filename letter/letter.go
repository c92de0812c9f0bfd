// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package letter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/danielhkuo/usulan-gedung/models"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidJenis = errors.New("jenisKegiatan must be Pembangunan or Pemeliharaan")
)

// Page geometry in millimetres (A4 portrait).
const (
	marginLeft   = 25.0
	marginTop    = 20.0
	marginRight  = 20.0
	contentWidth = 210.0 - marginLeft - marginRight
	lineHeight   = 6.0
	labelWidth   = 40.0
	boxSize      = 4.0
)

// documentDate is stamped as creation and modification date so output
// depends only on the request.
var documentDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

const perihal = "Permohonan Analisis Standar Belanja Bangunan Gedung"

// Checkbox is one activity-type box on the letter.
type Checkbox struct {
	Label   string
	Checked bool
}

// Checkboxes returns the activity-type boxes with the matching one marked.
func Checkboxes(jenisKegiatan string) []Checkbox {
	return []Checkbox{
		{Label: models.JenisPembangunan, Checked: jenisKegiatan == models.JenisPembangunan},
		{Label: models.JenisPemeliharaan, Checked: jenisKegiatan == models.JenisPemeliharaan},
	}
}

// Validate checks that every field is present and the activity type is known.
func Validate(req models.LetterRequest) error {
	fields := []struct{ name, value string }{
		{"opd", req.OPD},
		{"namaKegiatan", req.NamaKegiatan},
		{"jenisKegiatan", req.JenisKegiatan},
		{"lokasi", req.Lokasi},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	if req.JenisKegiatan != models.JenisPembangunan && req.JenisKegiatan != models.JenisPemeliharaan {
		return ErrInvalidJenis
	}
	return nil
}

// Build renders the request letter as a PDF.
func Build(req models.LetterRequest) ([]byte, error) {
	return render(req, true)
}

func render(req models.LetterRequest, compress bool) ([]byte, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	pdf.SetTitle("Surat "+perihal, true)
	pdf.SetAuthor(req.OPD, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	// Case-map before translating; the translated text is no longer UTF-8.
	writeLetterhead(pdf, tr(strings.ToUpper(req.OPD)))
	writeReference(pdf)
	writeAddressee(pdf)
	writeBody(pdf, tr, req)
	writeSignature(pdf, tr(req.OPD))

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render letter: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write letter: %w", err)
	}
	return buf.Bytes(), nil
}

func writeLetterhead(pdf *fpdf.Fpdf, opd string) {
	pdf.SetFont("Times", "B", 14)
	pdf.CellFormat(contentWidth, 7, "PEMERINTAH DAERAH", "", 1, "C", false, 0, "")
	pdf.SetFont("Times", "B", 16)
	pdf.CellFormat(contentWidth, 8, opd, "", 1, "C", false, 0, "")
	y := pdf.GetY() + 2
	pdf.SetLineWidth(0.8)
	pdf.Line(marginLeft, y, marginLeft+contentWidth, y)
	pdf.SetLineWidth(0.2)
	pdf.Line(marginLeft, y+1, marginLeft+contentWidth, y+1)
	pdf.SetY(y + 8)
}

func writeReference(pdf *fpdf.Fpdf) {
	pdf.SetFont("Times", "", 12)
	rows := [][2]string{
		{"Nomor", ": ......................................"},
		{"Lampiran", ": 1 (satu) berkas"},
		{"Perihal", ": " + perihal},
	}
	for _, row := range rows {
		pdf.CellFormat(25, lineHeight, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(contentWidth-25, lineHeight, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(lineHeight)
}

func writeAddressee(pdf *fpdf.Fpdf) {
	pdf.SetFont("Times", "", 12)
	for _, line := range []string{"Kepada Yth.", "Kepala BAPPEDA", "di", "      Tempat"} {
		pdf.CellFormat(contentWidth, lineHeight, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(lineHeight)
}

func writeBody(pdf *fpdf.Fpdf, tr func(string) string, req models.LetterRequest) {
	pdf.SetFont("Times", "", 12)
	pdf.CellFormat(contentWidth, lineHeight, "Dengan hormat,", "", 1, "L", false, 0, "")
	pdf.MultiCell(contentWidth, lineHeight,
		"Bersama ini kami mengajukan permohonan analisis standar belanja bangunan gedung "+
			"untuk kegiatan dengan rincian sebagai berikut:", "", "J", false)
	pdf.Ln(2)

	field := func(label, value string) {
		pdf.CellFormat(labelWidth, lineHeight, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(5, lineHeight, ":", "", 0, "L", false, 0, "")
		pdf.MultiCell(contentWidth-labelWidth-5, lineHeight, value, "", "L", false)
	}
	field("Nama OPD", tr(req.OPD))
	field("Nama Kegiatan", tr(req.NamaKegiatan))

	pdf.CellFormat(labelWidth, lineHeight, "Jenis Kegiatan", "", 0, "L", false, 0, "")
	pdf.CellFormat(5, lineHeight, ":", "", 0, "L", false, 0, "")
	for _, box := range Checkboxes(req.JenisKegiatan) {
		drawCheckbox(pdf, box)
	}
	pdf.Ln(lineHeight)

	field("Lokasi", tr(req.Lokasi))
	pdf.Ln(2)
	pdf.MultiCell(contentWidth, lineHeight,
		"Demikian permohonan ini kami sampaikan. Atas perhatian dan kerja sama "+
			"Bapak/Ibu, kami ucapkan terima kasih.", "", "J", false)
}

// drawCheckbox draws a square at the cursor, crossed when checked,
// followed by its label.
func drawCheckbox(pdf *fpdf.Fpdf, box Checkbox) {
	x, y := pdf.GetX(), pdf.GetY()
	top := y + (lineHeight-boxSize)/2
	pdf.Rect(x, top, boxSize, boxSize, "D")
	if box.Checked {
		pdf.Line(x, top, x+boxSize, top+boxSize)
		pdf.Line(x, top+boxSize, x+boxSize, top)
	}
	pdf.SetX(x + boxSize + 2)
	pdf.CellFormat(35, lineHeight, box.Label, "", 0, "L", false, 0, "")
}

func writeSignature(pdf *fpdf.Fpdf, opd string) {
	pdf.Ln(lineHeight * 2)
	x := marginLeft + contentWidth/2
	lines := []string{
		"................, ........................ 20....",
		"Kepala " + opd,
		"", "", "",
		"(......................................)",
		"NIP. ......................................",
	}
	pdf.SetFont("Times", "", 12)
	for _, line := range lines {
		pdf.SetX(x)
		pdf.CellFormat(contentWidth/2, lineHeight, line, "", 1, "C", false, 0, "")
	}
}
