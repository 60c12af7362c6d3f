// Package attendance parses vendor webinar-attendance exports and classifies
// participants against a minimum-minutes threshold.
package attendance

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEncoding means the file could not be decoded as UTF-8 or UTF-16.
// The user should re-export the report from the webinar platform.
var ErrEncoding = errors.New("unrecognized file encoding")

// DefaultMinMinutes is the qualification threshold when none is configured.
const DefaultMinMinutes = 30

// Vendor export layout: two header rows, then fixed column offsets.
const (
	headerRows     = 2
	colFirstName   = 0
	colLastName    = 1
	colInstitution = 2
	colEmail       = 3
	colDuration    = 4
)

var (
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
	xlsxSig  = []byte{0x50, 0x4B, 0x03, 0x04} // zip local file header
	utf16BEb = []byte{0xFE, 0xFF}
	utf16LEb = []byte{0xFF, 0xFE}
)

// Attendee is one aggregated participant summary.
type Attendee struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Institution string `json:"institution,omitempty"`
	Minutes     int    `json:"minutes"`
}

// Result splits aggregated attendees by the qualification threshold,
// both lists in encounter order.
type Result struct {
	Qualified    []Attendee `json:"qualified"`
	NotQualified []Attendee `json:"not_qualified"`
}

// Parse reads a vendor attendance export (xlsx or delimited text), aggregates
// duration per email and classifies each attendee against minMinutes.
// Rows without an email are dropped; rows that fail field extraction are
// skipped without aborting the batch.
func Parse(data []byte, minMinutes int) (Result, error) {
	if minMinutes <= 0 {
		minMinutes = DefaultMinMinutes
	}

	rows, err := extractRows(data)
	if err != nil {
		return Result{}, err
	}

	byEmail := make(map[string]*Attendee)
	var order []string

	for i, row := range rows {
		if i < headerRows {
			continue
		}
		if len(row) <= colEmail {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(row[colEmail]))
		if email == "" {
			continue
		}
		if len(row) <= colDuration {
			continue
		}
		minutes, err := leadingInt(row[colDuration])
		if err != nil {
			continue
		}

		if existing, ok := byEmail[email]; ok {
			existing.Minutes += minutes
			continue
		}
		name := strings.TrimSpace(strings.TrimSpace(row[colFirstName]) + " " + strings.TrimSpace(row[colLastName]))
		byEmail[email] = &Attendee{
			FullName:    name,
			Email:       email,
			Institution: strings.TrimSpace(row[colInstitution]),
			Minutes:     minutes,
		}
		order = append(order, email)
	}

	var res Result
	for _, email := range order {
		a := byEmail[email]
		if a.Minutes >= minMinutes {
			res.Qualified = append(res.Qualified, *a)
		} else {
			res.NotQualified = append(res.NotQualified, *a)
		}
	}
	return res, nil
}

// extractRows returns the raw cell rows of the export, either from the first
// sheet of an xlsx workbook or from delimited text.
func extractRows(data []byte) ([][]string, error) {
	if bytes.HasPrefix(data, xlsxSig) {
		return xlsxRows(data)
	}
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	return textRows(text), nil
}

func xlsxRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// decodeText tries UTF-8 (BOM tolerated) first, then BOM-aware UTF-16.
func decodeText(data []byte) (string, error) {
	trimmed := bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(trimmed) {
		return string(trimmed), nil
	}
	if bytes.HasPrefix(data, utf16LEb) || bytes.HasPrefix(data, utf16BEb) || len(data)%2 == 0 {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err == nil && utf8.Valid(out) && !bytes.ContainsRune(out, utf8.RuneError) {
			return string(out), nil
		}
	}
	return "", ErrEncoding
}

// textRows splits decoded text into rows and cells. Tab is the vendor
// delimiter; comma is accepted as a fallback when the file has no tabs.
func textRows(text string) [][]string {
	sep := "\t"
	if !strings.Contains(text, "\t") {
		sep = ","
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, sep))
	}
	return rows
}

// leadingInt parses the integer prefix of a duration cell like "35 min".
func leadingInt(s string) (int, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty duration")
	}
	return strconv.Atoi(fields[0])
}
