// Package postgres holds the sqlx repositories of the clip catalog.
//
// Expected schema:
//
//	CREATE TABLE clips (
//	    id                   uuid PRIMARY KEY,
//	    owner_id             text NOT NULL,
//	    owner_display_name   text NOT NULL,
//	    title                text NOT NULL,
//	    primary_asset_path   text NOT NULL,
//	    thumbnail_asset_path text NOT NULL,
//	    primary_asset_url    text NOT NULL,
//	    thumbnail_asset_url  text NOT NULL,
//	    created_at           timestamptz NOT NULL
//	);
//	CREATE INDEX clips_feed_idx ON clips (created_at, id);
//	CREATE INDEX clips_owner_idx ON clips (owner_id, created_at, id);
//
//	CREATE TABLE outbox (
//	    id           bigserial PRIMARY KEY,
//	    event_id     uuid NOT NULL,
//	    event_type   text NOT NULL,
//	    aggregate_id uuid NOT NULL,
//	    payload      jsonb NOT NULL,
//	    occurred_at  timestamptz NOT NULL,
//	    processed_at timestamptz
//	);
package postgres

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
