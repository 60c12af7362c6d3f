package render

import (
	"fmt"
	"math"
	"time"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatLongDate renders a date as Spanish long-form prose,
// e.g. "2 de enero de 2006".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// FormatDurationHours renders the certificate duration as a two-digit
// zero-padded integer, e.g. "08".
func FormatDurationHours(hours float64) string {
	return fmt.Sprintf("%02d", int(math.Round(hours)))
}
