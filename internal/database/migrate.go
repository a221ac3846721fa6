package database

import (
	"context"
	"database/sql"
)

// Schema statements are idempotent (IF NOT EXISTS) so concurrent or repeated
// startup runs converge without error.  Running them once, before the server
// accepts traffic, means no request path ever has to probe whether a table
// or column exists.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name          VARCHAR(255)    NOT NULL,
		email         VARCHAR(255)    NOT NULL,
		password_hash VARCHAR(255)    NOT NULL,
		is_manager    TINYINT(1)      NOT NULL DEFAULT 0,
		created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_accounts_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS profiles (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		account_id   BIGINT UNSIGNED NOT NULL,
		act_category VARCHAR(255)    NULL,
		genre        VARCHAR(255)    NULL,
		bio          TEXT            NULL,
		availability CHAR(1)         NOT NULL DEFAULT 'N',
		location     VARCHAR(255)    NULL,
		is_performer TINYINT(1)      NOT NULL DEFAULT 0,
		image_path   VARCHAR(512)    NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_profiles_account (account_id),
		CONSTRAINT fk_profiles_account FOREIGN KEY (account_id) REFERENCES accounts(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS media_items (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		account_id BIGINT UNSIGNED NOT NULL,
		kind       VARCHAR(16)     NOT NULL,
		path       VARCHAR(512)    NOT NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_media_account (account_id),
		CONSTRAINT fk_media_account FOREIGN KEY (account_id) REFERENCES accounts(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the application tables.  Call it once at startup, after
// Open and before registering routes.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
