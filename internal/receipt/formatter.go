// Package receipt renders sales as fixed-width text suitable for a 40
// column thermal printer.
package receipt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/dawadesk/backend-pharmacy/internal/sales/model"
)

const width = 40

// Options configure the printed header and footer.
type Options struct {
	StoreName string
	Address   []string
	Phone     string
	Currency  string
	Footer    string
}

func (o Options) withDefaults() Options {
	if o.StoreName == "" {
		o.StoreName = "DawaDesk Pharmacy"
	}
	if o.Currency == "" {
		o.Currency = "KES"
	}
	if o.Footer == "" {
		o.Footer = "Thank you, get well soon!"
	}
	return o
}

// Format renders the sale as printable receipt text.
func Format(sale model.Sale, opts Options) string {
	opts = opts.withDefaults()
	var b strings.Builder

	writeCentered(&b, opts.StoreName)
	for _, line := range opts.Address {
		writeCentered(&b, line)
	}
	if opts.Phone != "" {
		writeCentered(&b, "Tel: "+opts.Phone)
	}
	rule(&b)
	writeKV(&b, "Receipt", sale.ReceiptNumber)
	writeKV(&b, "Date", sale.CreatedAt.Format("02 Jan 2006 15:04"))
	if sale.CustomerName != "" {
		writeKV(&b, "Customer", sale.CustomerName)
	}
	rule(&b)

	for _, it := range sale.Items {
		name := it.DrugName
		if it.Dosage != "" {
			name += " " + it.Dosage
		}
		b.WriteString(truncate(name, width))
		b.WriteByte('\n')
		qty := fmt.Sprintf("  %d x %s", it.Quantity, money(it.UnitPrice))
		writeKV(&b, qty, money(it.LineTotal))
	}
	rule(&b)

	writeKV(&b, "Subtotal", money(sale.Subtotal))
	if sale.Discount.IsPositive() {
		label := "Discount"
		if sale.DiscountReason != "" {
			label = truncate("Discount ("+sale.DiscountReason+")", width-12)
		}
		writeKV(&b, label, "-"+money(sale.Discount))
	}
	writeKV(&b, "Tax", money(sale.Tax))
	writeKV(&b, "TOTAL "+opts.Currency, money(sale.Total))
	rule(&b)

	writeKV(&b, "Paid by", strings.ToUpper(sale.PaymentMethod))
	if sale.AmountTendered != nil {
		writeKV(&b, "Tendered", money(*sale.AmountTendered))
	}
	if sale.Change != nil {
		writeKV(&b, "Change", money(*sale.Change))
	}
	rule(&b)
	writeCentered(&b, opts.Footer)
	return b.String()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func rule(b *strings.Builder) {
	b.WriteString(strings.Repeat("-", width))
	b.WriteByte('\n')
}

func writeCentered(b *strings.Builder, text string) {
	text = truncate(text, width)
	pad := (width - utf8.RuneCountInString(text)) / 2
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(text)
	b.WriteByte('\n')
}

func writeKV(b *strings.Builder, key, value string) {
	gap := width - utf8.RuneCountInString(key) - utf8.RuneCountInString(value)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(key)
	b.WriteString(strings.Repeat(" ", gap))
	b.WriteString(value)
	b.WriteByte('\n')
}

// truncate caps the text at max printable characters without splitting a
// multibyte rune.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
