package funcs

import (
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var TemplateFuncs = template.FuncMap{
	"formatTime":  formatTime,
	"formatMoney": FormatMoney,
	"upper":       strings.ToUpper,
	"lower":       strings.ToLower,
}

func formatTime(format string, t time.Time) string {
	return t.Format(format)
}

// FormatMoney renders a naira amount with thousand separators,
// e.g. 1234567.5 -> "₦1,234,567.50"
func FormatMoney(amount decimal.Decimal) string {
	value, _ := amount.Round(2).Float64()
	return printer.Sprintf("₦%.2f", value)
}
