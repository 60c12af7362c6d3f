package attendance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sampleHeader = "Asistentes\t\t\t\t\n" +
	"Nombre\tApellido\tInstitución\tCorreo\tDuración\n"

func sampleReport() string {
	return sampleHeader +
		"Ana\tGarcía\tHospital General\tana@example.com\t10 min\n" +
		"Bob\tLee\tClínica Norte\tbob@example.com\t5 min\n" +
		"Ana\tGarcía\tHospital General\tANA@example.com\t25 min\n"
}

func TestParseAggregatesByEmail(t *testing.T) {
	res, err := Parse([]byte(sampleReport()), 30)
	require.NoError(t, err)

	require.Len(t, res.Qualified, 1)
	require.Len(t, res.NotQualified, 1)

	ana := res.Qualified[0]
	assert.Equal(t, "ana@example.com", ana.Email)
	assert.Equal(t, "Ana García", ana.FullName)
	assert.Equal(t, "Hospital General", ana.Institution)
	assert.Equal(t, 35, ana.Minutes)

	bob := res.NotQualified[0]
	assert.Equal(t, "bob@example.com", bob.Email)
	assert.Equal(t, 5, bob.Minutes)
}

func TestParseThresholdBoundary(t *testing.T) {
	report := sampleHeader + "Eva\tRuiz\t\teva@example.com\t30 min\n"
	res, err := Parse([]byte(report), 30)
	require.NoError(t, err)
	assert.Len(t, res.Qualified, 1, "exactly the threshold qualifies")
	assert.Empty(t, res.NotQualified)
}

func TestParseRowOrderDoesNotChangeTotals(t *testing.T) {
	shuffled := sampleHeader +
		"Ana\tGarcía\tHospital General\tANA@example.com\t25 min\n" +
		"Bob\tLee\tClínica Norte\tbob@example.com\t5 min\n" +
		"Ana\tGarcía\tHospital General\tana@example.com\t10 min\n"

	a, err := Parse([]byte(sampleReport()), 30)
	require.NoError(t, err)
	b, err := Parse([]byte(shuffled), 30)
	require.NoError(t, err)

	require.Len(t, b.Qualified, len(a.Qualified))
	assert.Equal(t, a.Qualified[0].Minutes, b.Qualified[0].Minutes)
	assert.Equal(t, a.NotQualified[0].Minutes, b.NotQualified[0].Minutes)
}

func TestParseEveryAttendeeClassifiedExactlyOnce(t *testing.T) {
	res, err := Parse([]byte(sampleReport()), 30)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, a := range res.Qualified {
		seen[a.Email]++
	}
	for _, a := range res.NotQualified {
		seen[a.Email]++
	}
	assert.Equal(t, map[string]int{"ana@example.com": 1, "bob@example.com": 1}, seen)
}

func TestParseSkipsMalformedRows(t *testing.T) {
	report := sampleHeader +
		"NoEmail\tRow\tSomewhere\t\t15 min\n" +
		"Bad\tDuration\tSomewhere\tbad@example.com\tn/a\n" +
		"Short\trow\n" +
		"Ok\tPerson\t\tok@example.com\t45 min\n"
	res, err := Parse([]byte(report), 30)
	require.NoError(t, err)
	require.Len(t, res.Qualified, 1)
	assert.Equal(t, "ok@example.com", res.Qualified[0].Email)
	assert.Empty(t, res.NotQualified)
}

func TestParseEmptyFile(t *testing.T) {
	res, err := Parse(nil, 30)
	require.NoError(t, err)
	assert.Empty(t, res.Qualified)
	assert.Empty(t, res.NotQualified)
}

func TestParseZeroDurationNotQualified(t *testing.T) {
	report := sampleHeader + "Zed\tCero\t\tzed@example.com\t0 min\n"
	res, err := Parse([]byte(report), 30)
	require.NoError(t, err)
	assert.Empty(t, res.Qualified)
	require.Len(t, res.NotQualified, 1)
	assert.Equal(t, 0, res.NotQualified[0].Minutes)
}

func TestParseDefaultsThreshold(t *testing.T) {
	report := sampleHeader + "Eva\tRuiz\t\teva@example.com\t29 min\n"
	res, err := Parse([]byte(report), 0)
	require.NoError(t, err)
	assert.Empty(t, res.Qualified)
	require.Len(t, res.NotQualified, 1)
}

func TestParseUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(sampleReport())...)
	res, err := Parse(data, 30)
	require.NoError(t, err)
	assert.Len(t, res.Qualified, 1)
}

func TestParseUTF16LE(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, _, err := transform.Bytes(enc, []byte(sampleReport()))
	require.NoError(t, err)

	res, err := Parse(data, 30)
	require.NoError(t, err)
	require.Len(t, res.Qualified, 1)
	assert.Equal(t, "Ana García", res.Qualified[0].FullName)
}

func TestParseRejectsBinaryGarbage(t *testing.T) {
	_, err := Parse([]byte{0x00, 0xFF, 0xFE, 0x01, 0x80, 0x81, 0x92}, 30)
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestParseCommaFallback(t *testing.T) {
	report := strings.ReplaceAll(sampleHeader, "\t", ",") +
		"Ana,García,Hospital General,ana@example.com,40 min\n"
	res, err := Parse([]byte(report), 30)
	require.NoError(t, err)
	require.Len(t, res.Qualified, 1)
	assert.Equal(t, 40, res.Qualified[0].Minutes)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Asistentes"},
		{"Nombre", "Apellido", "Institución", "Correo", "Duración"},
		{"Ana", "García", "Hospital General", "ana@example.com", "10 min"},
		{"Bob", "Lee", "Clínica Norte", "bob@example.com", "5 min"},
		{"Ana", "García", "Hospital General", "ana@example.com", "25 min"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := Parse(buf.Bytes(), 30)
	require.NoError(t, err)
	require.Len(t, res.Qualified, 1)
	assert.Equal(t, 35, res.Qualified[0].Minutes)
	require.Len(t, res.NotQualified, 1)
	assert.Equal(t, "bob@example.com", res.NotQualified[0].Email)
}
