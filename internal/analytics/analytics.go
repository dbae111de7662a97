// Package analytics computes dashboard aggregates by reduction over the
// catalog. All functions are pure; the catalog service supplies the data.
package analytics

import (
	"time"

	"github.com/cartodev/carto/internal/models"
)

type Report struct {
	TotalProducts       int            `json:"totalProducts"`
	BoughtProducts      int            `json:"boughtProducts"`
	TotalValue          float64        `json:"totalValue"`
	BoughtValue         float64        `json:"boughtValue"`
	ThisMonthCount      int            `json:"thisMonthCount"`
	ThisMonthValue      float64        `json:"thisMonthValue"`
	PurchasingThisMonth int            `json:"purchasingThisMonth"`
	Categories          map[string]int `json:"categories"`
}

// Compute reduces the catalog into a report. "This month" means bought
// within the calendar month of now, by purchase date.
func Compute(products []models.Product, now time.Time) Report {
	report := Report{
		Categories: make(map[string]int),
	}

	for _, p := range products {
		report.TotalProducts++
		report.TotalValue += p.Price

		if p.Category != "" {
			report.Categories[p.Category]++
		}

		if p.PurchasingThisMonth {
			report.PurchasingThisMonth++
		}

		if p.IsBought {
			report.BoughtProducts++
			report.BoughtValue += p.Price

			if p.PurchaseDate != nil &&
				p.PurchaseDate.Month() == now.Month() &&
				p.PurchaseDate.Year() == now.Year() {
				report.ThisMonthCount++
				report.ThisMonthValue += p.Price
			}
		}
	}

	return report
}
