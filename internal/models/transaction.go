package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one append-only row of the Transactions sheet:
// [date, actor, label, signed amount, notes].
type TransactionRecord struct {
	Timestamp string          `csv:"Date"`
	Actor     string          `csv:"Actor"`
	Label     string          `csv:"Label"`
	Amount    decimal.Decimal `csv:"Amount"`
	Notes     string          `csv:"Notes"`
}

// NewTransactionRecord stamps a record with t in TimestampLayout.
func NewTransactionRecord(t time.Time, actor, label string, amount decimal.Decimal, notes string) TransactionRecord {
	return TransactionRecord{
		Timestamp: t.Format(TimestampLayout),
		Actor:     actor,
		Label:     label,
		Amount:    amount,
		Notes:     notes,
	}
}

// Row returns the record in sheet column order.
func (r TransactionRecord) Row() []string {
	return []string{r.Timestamp, r.Actor, r.Label, r.Amount.String(), r.Notes}
}

// Time parses the timestamp back into a time in loc.
func (r TransactionRecord) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(TimestampLayout, strings.TrimSpace(r.Timestamp), loc)
}

// ParseTransactionRow converts a sheet row into a record. The timestamp and the
// amount must both parse; trailing notes are optional.
func ParseTransactionRow(row []string) (TransactionRecord, error) {
	if len(row) < 4 {
		return TransactionRecord{}, fmt.Errorf("transaction row has %d columns, need at least 4", len(row))
	}
	rec := TransactionRecord{
		Timestamp: strings.TrimSpace(row[0]),
		Actor:     row[1],
		Label:     row[2],
	}
	if _, err := time.Parse(TimestampLayout, rec.Timestamp); err != nil {
		return TransactionRecord{}, fmt.Errorf("invalid timestamp '%s': %w", row[0], err)
	}
	amount, err := ParseAmount(row[3])
	if err != nil {
		return TransactionRecord{}, err
	}
	rec.Amount = amount
	if len(row) > 4 {
		rec.Notes = row[4]
	}
	return rec, nil
}

// ParseAmount parses a sheet-rendered amount such as "7", "-10", "$4.20",
// "($3.00)" or "1,250.50".
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	amount := strings.TrimSpace(amountStr)
	negative := false
	if strings.HasPrefix(amount, "(") && strings.HasSuffix(amount, ")") {
		negative = true
		amount = strings.TrimSuffix(strings.TrimPrefix(amount, "("), ")")
	}
	amount = strings.ReplaceAll(amount, "$", "")
	amount = strings.ReplaceAll(amount, ",", "")
	amount = strings.ReplaceAll(amount, " ", "")

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount string '%s': %w", amountStr, err)
	}
	if negative {
		dec = dec.Neg()
	}
	return dec, nil
}

// FormatAmount renders an amount the way confirmation messages show it:
// whole numbers without decimals, everything else with two.
func FormatAmount(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}
