package main

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// schema is idempotent; stockctl applies it on every run. Real migrations for
// the catalog and document tables live with their owning modules; only the
// stock tables (and the detail-line tables this service reads) are covered.
const schema = `
CREATE TABLE IF NOT EXISTS product_stock (
    product_id   BIGINT PRIMARY KEY,
    physical_qty INT NOT NULL DEFAULT 0,
    reserved_qty INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS stock_reservations (
    id            UUID PRIMARY KEY,
    product_id    BIGINT NOT NULL,
    document_kind TEXT NOT NULL CHECK (document_kind IN ('ORDER', 'INVOICE')),
    document_id   BIGINT NOT NULL,
    reserved_qty  INT NOT NULL CHECK (reserved_qty > 0),
    status        TEXT NOT NULL CHECK (status IN ('ACTIVE', 'CANCELLED', 'COMPLETED')),
    note          TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (product_id, document_kind, document_id)
);

CREATE TABLE IF NOT EXISTS warehouse_movements (
    id              UUID PRIMARY KEY,
    product_id      BIGINT NOT NULL,
    occurred_at     TIMESTAMPTZ NOT NULL,
    direction       TEXT NOT NULL CHECK (direction IN ('INWARD', 'OUTWARD')),
    quantity        INT NOT NULL CHECK (quantity > 0),
    reason          TEXT NOT NULL CHECK (reason IN ('SALE', 'PURCHASE')),
    document_number TEXT NOT NULL,
    document_kind   TEXT NOT NULL CHECK (document_kind IN ('ORDER', 'INVOICE')),
    note            TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reservations_document
    ON stock_reservations (document_kind, document_id, status);

CREATE INDEX IF NOT EXISTS idx_movements_document
    ON warehouse_movements (document_kind, document_number);

CREATE INDEX IF NOT EXISTS idx_movements_product
    ON warehouse_movements (product_id, occurred_at);
`

func ensureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
