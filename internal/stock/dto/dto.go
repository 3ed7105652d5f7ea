package dto

import (
	"time"

	"github.com/gestionale/stock-service/internal/model"
)

type MovementFilters struct {
	ProductID    *int64
	DocumentKind model.DocumentKind
	Direction    model.MovementDirection
	Reason       model.MovementReason
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}
