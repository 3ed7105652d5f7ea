package dto

import (
	"time"

	"github.com/gestionale/stock-service/internal/model"
)

type ReserveInput struct {
	ProductID    int64
	DocumentKind model.DocumentKind
	DocumentID   int64
	Quantity     int
	Note         string
}

type CompleteInput struct {
	DocumentKind   model.DocumentKind
	DocumentID     int64
	DocumentDate   time.Time
	DocumentNumber string
}
