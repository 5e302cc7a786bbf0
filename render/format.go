package render

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/princinho/catalogviewer/models"
)

const (
	maxStars         = 5
	reviewDateLayout = "1/2/2006"

	DefaultSku      = "N/A"
	DefaultShipping = "Free shipping on all orders"
	DefaultWarranty = "1-year manufacturer warranty"
	DefaultReturns  = "30-day return policy"
)

// formatPrice prints dollars with two decimals and no grouping: 1899.99 ->
// "$1899.99".
func formatPrice(v float64) string {
	return message.NewPrinter(language.AmericanEnglish).Sprintf("$%v", number.Decimal(v, number.Scale(2), number.NoSeparator()))
}

// formatPercent prints the discount the way the API sends it: 20 -> "20",
// 12.96 -> "12.96".
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func starCount(avg float64) int {
	n := int(math.Round(avg))
	if n < 0 {
		return 0
	}
	if n > maxStars {
		return maxStars
	}
	return n
}

func starSlots(filled int) []bool {
	slots := make([]bool, maxStars)
	for i := range slots {
		slots[i] = i < filled
	}
	return slots
}

func formatReviewDate(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(reviewDateLayout)
		}
	}
	return raw
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

type priceView struct {
	Original   string
	Final      string
	Discounted bool
	Percent    string
}

func newPriceView(p models.Product) priceView {
	pv := priceView{Original: formatPrice(p.Price), Final: formatPrice(p.Price)}
	if p.HasDiscount() {
		pv.Discounted = true
		pv.Final = formatPrice(p.DiscountedPrice())
		pv.Percent = formatPercent(p.DiscountPercentage)
	}
	return pv
}
