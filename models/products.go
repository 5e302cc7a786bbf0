package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

const LowStockStatus = "Low Stock"

type Review struct {
	ReviewerName  string `json:"reviewerName"`
	ReviewerEmail string `json:"reviewerEmail,omitempty"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	Date          string `json:"date"`
}

type Product struct {
	Id                  int      `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Brand               string   `json:"brand"`
	Category            string   `json:"category"`
	Price               float64  `json:"price"`
	DiscountPercentage  float64  `json:"discountPercentage,omitempty"`
	Stock               int      `json:"stock"`
	AvailabilityStatus  string   `json:"availabilityStatus"`
	Thumbnail           string   `json:"thumbnail,omitempty"`
	Images              []string `json:"images"`
	Tags                []string `json:"tags,omitempty"`
	Reviews             []Review `json:"reviews"`
	Sku                 string   `json:"sku,omitempty"`
	ShippingInformation string   `json:"shippingInformation,omitempty"`
	WarrantyInformation string   `json:"warrantyInformation,omitempty"`
	ReturnPolicy        string   `json:"returnPolicy,omitempty"`
}

func (p Product) HasDiscount() bool {
	return p.DiscountPercentage > 0
}

func (p Product) DiscountedPrice() float64 {
	if !p.HasDiscount() {
		return p.Price
	}
	return p.Price * (1 - p.DiscountPercentage/100)
}

// AverageRating is the arithmetic mean of review ratings, 0 without reviews.
func (p Product) AverageRating() float64 {
	if len(p.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(p.Reviews))
}

func (p Product) IsLowStock() bool {
	return p.AvailabilityStatus == LowStockStatus
}

// ProductCollection accepts either a JSON array of products or an object
// keyed by product id. Keyed objects are unwrapped in property order:
// integer keys ascending, then the remaining keys in document order.
type ProductCollection []Product

func (pc *ProductCollection) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*pc = ProductCollection{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var list []Product
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*pc = list
		return nil
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil {
			return err
		}
		var entries []keyedProduct
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, _ := tok.(string)
			var p Product
			if err := dec.Decode(&p); err != nil {
				return fmt.Errorf("product %v: %w", key, err)
			}
			index, isIndex := arrayIndex(key)
			entries = append(entries, keyedProduct{index: index, isIndex: isIndex, product: p})
		}
		if _, err := dec.Token(); err != nil {
			return err
		}
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.isIndex != b.isIndex {
				return a.isIndex
			}
			return a.isIndex && a.index < b.index
		})
		list := make([]Product, 0, len(entries))
		for _, e := range entries {
			list = append(list, e.product)
		}
		*pc = list
		return nil
	}
	return fmt.Errorf("products: unexpected json value starting with %q", trimmed[0])
}

type keyedProduct struct {
	index   uint64
	isIndex bool
	product Product
}

// arrayIndex reports whether key is a canonical array index ("0", "17", not
// "017" or "-1"), which object iteration visits first in ascending order.
func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == 1<<32-1 {
		return 0, false
	}
	return n, true
}

type ProductsResponse struct {
	Products ProductCollection `json:"products"`
	Total    int               `json:"total,omitempty"`
}
