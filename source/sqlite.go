package source

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/table"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

const (
	sqliteDriver = "sqlite"

	// catalogQuery lists user tables in catalog order, which is creation order
	catalogQuery = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'"
)

// readSQLite opens the database read only and reads every row of the first table in the catalog
func readSQLite(path string, logger *zap.Logger) (*table.Table, error) {
	dsn := (&url.URL{Scheme: "file", Path: path, RawQuery: "mode=ro"}).String()
	db, err := sql.Open(sqliteDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %v, %w", err, errkind.ErrUnreadableFile)
	}
	defer db.Close()

	ctx := context.Background()
	tables, err := listTables(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%s, %w", path, errkind.ErrNoTablesFound)
	}
	if len(tables) > 1 {
		logger.Info("database has several tables, reading the first one",
			zap.String("table", tables[0]),
			zap.Strings("tables", tables),
		)
	}
	return readRelation(ctx, db, tables[0])
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, catalogQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog, %v, %w", err, errkind.ErrUnreadableFile)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan catalog, %v, %w", err, errkind.ErrUnreadableFile)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog, %v, %w", err, errkind.ErrUnreadableFile)
	}
	return names, nil
}

func readRelation(ctx context.Context, db *sql.DB, name string) (*table.Table, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %q, %v, %w", name, err, errkind.ErrCorruptOrEmpty)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %q, %v, %w", name, err, errkind.ErrCorruptOrEmpty)
	}
	names := normalizeHeader(cols)

	var cells [][]table.Value
	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %q, %v, %w", name, err, errkind.ErrCorruptOrEmpty)
		}
		row := make([]table.Value, len(cols))
		for j, v := range raw {
			row[j] = sqlValue(v)
		}
		cells = append(cells, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows of %q, %v, %w", name, err, errkind.ErrCorruptOrEmpty)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("table %q has no rows, %w", name, errkind.ErrCorruptOrEmpty)
	}

	t, err := table.New(names, cells)
	if err != nil {
		return nil, fmt.Errorf("%v, %w", err, errkind.ErrCorruptOrEmpty)
	}
	return t, nil
}

// sqlValue keeps the storage class of a sqlite value: integers and reals become numbers, text
// and blobs stay text and NULL is the absent marker
func sqlValue(v any) table.Value {
	switch x := v.(type) {
	case nil:
		return table.NullValue()
	case int64:
		return table.NumberValue(float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return table.NullValue()
		}
		return table.NumberValue(x)
	case bool:
		if x {
			return table.NumberValue(1)
		}
		return table.NumberValue(0)
	case []byte:
		return table.TextValue(string(x))
	case string:
		return table.TextValue(x)
	case time.Time:
		return table.TextValue(x.Format(time.RFC3339Nano))
	default:
		return table.TextValue(fmt.Sprint(x))
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
