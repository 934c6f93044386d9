package store

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// ForeignKey declares that Table.Column refers to OtherTable.OtherColumn.
type ForeignKey struct {
	Table       string `db:"table_name"`
	Column      string `db:"column_name"`
	OtherTable  string `db:"other_table"`
	OtherColumn string `db:"other_column"`
}

// AddForeignKey records a relationship. Declaring a column that already has a
// relationship is a no-op.
func (db *DB) AddForeignKey(ctx context.Context, fk ForeignKey) error {
	if !isTable(fk.Table) {
		return goerr.New("unknown table", goerr.V("table", fk.Table))
	}
	if !isTable(fk.OtherTable) {
		return goerr.New("unknown table", goerr.V("table", fk.OtherTable))
	}

	query := `
		INSERT INTO foreign_keys (table_name, column_name, other_table, other_column)
		VALUES (:table_name, :column_name, :other_table, :other_column)
		ON CONFLICT(table_name, column_name) DO NOTHING
	`
	if _, err := db.conn.NamedExecContext(ctx, query, fk); err != nil {
		return goerr.Wrap(err, "failed to add foreign key",
			goerr.V("table", fk.Table), goerr.V("column", fk.Column))
	}
	return nil
}

// ForeignKeys returns all declared relationships.
func (db *DB) ForeignKeys(ctx context.Context) ([]ForeignKey, error) {
	exists, err := db.hasTable(ctx, "foreign_keys")
	if err != nil || !exists {
		return nil, err
	}

	var fks []ForeignKey
	query := `
		SELECT table_name, column_name, other_table, other_column
		FROM foreign_keys
		ORDER BY table_name, column_name
	`
	if err := db.conn.SelectContext(ctx, &fks, query); err != nil {
		return nil, goerr.Wrap(err, "failed to query foreign keys")
	}
	return fks, nil
}
