// Package database also owns the relational schema for the catalog.  The
// tables form a three level hierarchy: showcases contain shelves, shelves
// hold minerals.  Minerals survive the deletion of their containers, which is
// why minerals.shelf_id is nullable and carries ON DELETE behaviour handled
// in the repository layer rather than by the database.
package database

import (
	"context"
	"database/sql"
)

// schema lists the CREATE TABLE statements executed at startup.  Statements
// are idempotent so repeated startups are harmless.  Uniqueness rules live
// here as real constraints: a showcase code is globally unique, a shelf code
// is unique within its showcase, a mineral number is unique across the whole
// collection.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS showcases (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		code        VARCHAR(32)  NOT NULL,
		name        VARCHAR(255) NOT NULL,
		location    VARCHAR(255) NULL,
		description TEXT         NULL,
		image_ref   VARCHAR(128) NULL,
		created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_showcases_code (code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS shelves (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		showcase_id    BIGINT UNSIGNED NOT NULL,
		code           VARCHAR(32)  NOT NULL,
		name           VARCHAR(255) NOT NULL,
		description    TEXT         NULL,
		position_order INT          NOT NULL DEFAULT 0,
		image_ref      VARCHAR(128) NULL,
		created_at     TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_shelves_showcase_code (showcase_id, code),
		CONSTRAINT fk_shelves_showcase FOREIGN KEY (showcase_id) REFERENCES showcases (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS minerals (
		id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		number            VARCHAR(64)  NOT NULL,
		name              VARCHAR(255) NOT NULL,
		color             VARCHAR(128) NULL,
		description       TEXT         NULL,
		location          VARCHAR(255) NULL,
		latitude          DOUBLE       NULL,
		longitude         DOUBLE       NULL,
		purchase_location VARCHAR(255) NULL,
		rock_type         VARCHAR(128) NULL,
		shelf_id          BIGINT UNSIGNED NULL,
		image_ref         VARCHAR(128) NULL,
		created_at        TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_minerals_number (number),
		KEY idx_minerals_shelf (shelf_id),
		CONSTRAINT fk_minerals_shelf FOREIGN KEY (shelf_id) REFERENCES shelves (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS admin_credential (
		id            TINYINT UNSIGNED NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		updated_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema statements in order.  It is called once during
// startup before any repository is used.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
