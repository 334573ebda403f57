package clean

import (
	"github.com/shopspring/decimal"

	"github.com/stockpipe/data-clean-service/internal/dataset"
	"github.com/stockpipe/data-clean-service/internal/models"
)

// QualityScore returns the completeness of the dataset as a percentage
// rounded to two decimal places: 1 - nulls/(rows x columns), over the final
// column set including any appended indicator or analysis columns.
func QualityScore(ds *models.Dataset) float64 {
	cells := dataset.CellCount(ds)
	if cells == 0 {
		return 0
	}
	completeness := 1 - float64(dataset.NullCells(ds))/float64(cells)
	return decimal.NewFromFloat(completeness * 100).Round(2).InexactFloat64()
}
