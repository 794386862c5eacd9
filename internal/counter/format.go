package counter

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type magnitude struct {
	limit float64
	unit  string
}

var magnitudes = []magnitude{
	{limit: 1.0e12, unit: "T"},
	{limit: 1.0e9, unit: "B"},
	{limit: 1.0e6, unit: "M"},
	{limit: 1.0e3, unit: "K"},
}

// Formatter turns counter values into display text. It is pure for a
// given locale.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a formatter using the locale's fixed-point
// conventions. An undefined tag falls back to English.
func NewFormatter(tag language.Tag) *Formatter {
	if tag == language.Und {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// ParseLocale parses a BCP 47 tag, falling back to English.
func ParseLocale(s string) language.Tag {
	if s == "" {
		return language.English
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}

// Format renders value under cfg: decimals, currency abbreviation, then
// the separator pass.
func (f *Formatter) Format(value float64, cfg Config) string {
	var text string
	if cfg.Decimals <= 0 {
		text = Fixed(value, 0)
	} else {
		text = f.printer.Sprintf("%v", number.Decimal(roundTo(value, cfg.Decimals),
			number.MinFractionDigits(cfg.Decimals),
			number.MaxFractionDigits(cfg.Decimals),
		))
	}
	if cfg.Currency {
		text = Currency(value, cfg)
	}
	return ApplySeparator(text, cfg)
}

// Currency abbreviates the absolute magnitude of value with a unit suffix.
// The sign is dropped.
func Currency(value float64, cfg Config) string {
	digits := cfg.Decimals
	if digits <= 0 {
		digits = 1
	}
	abs := math.Abs(value)
	for _, m := range magnitudes {
		if abs >= m.limit {
			return cfg.CurrencySymbol + Fixed(abs/m.limit, digits) + " " + m.unit
		}
	}
	return cfg.CurrencySymbol + strconv.FormatFloat(abs, 'f', -1, 64)
}

// Fixed formats value with exactly digits fractional digits, or as a
// truncated integer when digits is not positive. Exact ties round away
// from zero.
func Fixed(value float64, digits int) string {
	if digits <= 0 {
		// Adding zero turns -0 into 0.
		return strconv.FormatFloat(math.Trunc(value)+0, 'f', 0, 64)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', digits, 64)
	}
	prec := uint(2200 + 4*digits)
	scaled := new(big.Float).SetPrec(prec).SetFloat64(math.Abs(value))
	scale := new(big.Float).SetPrec(prec).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil))
	scaled.Mul(scaled, scale)
	scaled.Add(scaled, big.NewFloat(0.5))
	n, _ := scaled.Int(nil)

	s := n.String()
	if len(s) <= digits {
		s = strings.Repeat("0", digits-len(s)+1) + s
	}
	s = s[:len(s)-digits] + "." + s[len(s)-digits:]
	if value < 0 {
		s = "-" + s
	}
	return s
}

// ApplySeparator strips commas when separators are off. Otherwise it groups
// integer digit runs by three and swaps commas for the configured symbol.
func ApplySeparator(text string, cfg Config) string {
	if !cfg.Separator {
		return strings.ReplaceAll(text, ",", "")
	}
	grouped := groupDigits(strings.ReplaceAll(text, ",", ""))
	return strings.ReplaceAll(grouped, ",", cfg.SeparatorSymbol)
}

func groupDigits(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/3)
	fraction := false
	for i := 0; i < len(text); {
		if !isDigit(text[i]) {
			fraction = text[i] == '.'
			b.WriteByte(text[i])
			i++
			continue
		}
		j := i
		for j < len(text) && isDigit(text[j]) {
			j++
		}
		run := text[i:j]
		if fraction {
			b.WriteString(run)
		} else {
			for k := 0; k < len(run); k++ {
				if k > 0 && (len(run)-k)%3 == 0 {
					b.WriteByte(',')
				}
				b.WriteByte(run[k])
			}
		}
		fraction = false
		i = j
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
