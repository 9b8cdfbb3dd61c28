package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DamageReport constancia numerada de mercancía marcada como dañada.
type DamageReport struct {
	ID           string
	ReportNumber string
	LotID        string
	WarehouseID  string
	Quantity     decimal.Decimal
	Reason       string
	ReportedBy   string
	Role         string
	CreatedAt    time.Time
}
