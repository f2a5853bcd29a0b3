// Package document renders closing receipts as PDF and receivable exports as XLSX.
package document

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// formatter prints money, dates and enum labels the way the shop's customers read them
type formatter struct {
	printer *message.Printer
	caser   cases.Caser
	loc     *time.Location
}

func newFormatter(tag language.Tag, loc *time.Location) formatter {
	if loc == nil {
		loc = time.UTC
	}
	return formatter{
		printer: message.NewPrinter(tag),
		caser:   cases.Title(tag),
		loc:     loc,
	}
}

// money formats an amount as "R$ 1.234,50"
func (f formatter) money(d decimal.Decimal) string {
	v, _ := d.Round(2).Float64()
	return "R$ " + f.printer.Sprint(number.Decimal(v, number.Scale(2)))
}

func (f formatter) date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(f.loc).Format("02/01/2006")
}

func (f formatter) dateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(f.loc).Format("02/01/2006 15:04")
}

// label turns an enum value like READY_TO_CLOSE into "Ready To Close"
func (f formatter) label(s string) string {
	return f.caser.String(strings.ReplaceAll(strings.ToLower(s), "_", " "))
}
