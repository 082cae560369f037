package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceScale decimales que admite la columna price (NUMERIC(12,2)).
const PriceScale = 2

// MaxPrice mayor precio almacenable.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// ValidPrice indica si el precio es positivo, tiene a lo sumo PriceScale decimales y no supera MaxPrice.
func ValidPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.Equal(p.Round(PriceScale)) && p.LessThanOrEqual(MaxPrice)
}

// Product representa un producto del catálogo. Inmutable salvo el borrado.
type Product struct {
	ID        int64
	Name      string
	Price     decimal.Decimal // precio de venta, siempre > 0
	CreatedAt time.Time
}
