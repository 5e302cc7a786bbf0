package models

type PriceBand string

const ProductsPerPage = 12

const (
	PriceAny     PriceBand = ""
	PriceUnder10 PriceBand = "under10"
	Price10To50  PriceBand = "10to50"
	Price50To100 PriceBand = "50to100"
	PriceOver100 PriceBand = "over100"
)

var PriceBands = []PriceBand{PriceUnder10, Price10To50, Price50To100, PriceOver100}

func (b PriceBand) Label() string {
	switch b {
	case PriceUnder10:
		return "Under $10"
	case Price10To50:
		return "$10 - $50"
	case Price50To100:
		return "$50 - $100"
	case PriceOver100:
		return "Over $100"
	}
	return "All Prices"
}

type FilterState struct {
	SearchTerm string    `json:"q"`
	Category   string    `json:"category"`
	Brand      string    `json:"brand"`
	PriceBand  PriceBand `json:"price"`
}

type OptionSets struct {
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
}
