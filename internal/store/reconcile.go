package store

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"worldforge/internal/logging"
)

// ReconcileReport records what a reconcile pass did. DDLCount is the
// number of schema-changing statements executed; a clean database
// reconciles with DDLCount zero.
type ReconcileReport struct {
	TablesCreated []string
	ColumnsAdded  []string // "table.column"
	TypesRebuilt  []string // "table.column"
	DDLCount      int
}

// Reconcile brings every registered table up to its spec. Missing
// tables are created whole; existing tables gain any missing columns
// via ALTER TABLE ADD COLUMN with the registered default; columns whose
// declared type disagrees with the registry are rebuilt through
// RebuildColumnType with the column's registered coercion. Columns are
// never dropped.
func (s *WorldStore) Reconcile() (*ReconcileReport, error) {
	timer := logging.StartTimer(logging.CategorySchema, "reconcile")
	report := &ReconcileReport{}

	for _, name := range Tables() {
		spec, _ := Spec(name)

		exists, err := TableExists(s.db, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			if err := s.EnsureTable(name); err != nil {
				return nil, err
			}
			report.TablesCreated = append(report.TablesCreated, name)
			report.DDLCount++
			logging.Schema("Created missing table %s", name)
			continue
		}

		live, err := TableColumns(s.db, name)
		if err != nil {
			return nil, err
		}
		liveType := make(map[string]string, len(live))
		for _, c := range live {
			liveType[strings.ToLower(c.Name)] = c.Type
		}

		var drifted []string
		for _, col := range spec.Columns {
			lt, present := liveType[strings.ToLower(col.Name)]
			if !present {
				stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", name, col.Name, col.Type)
				if col.Default != "" {
					stmt += " DEFAULT " + col.Default
				}
				if _, err := s.db.Exec(stmt); err != nil {
					return nil, fmt.Errorf("failed to add column %s.%s: %w", name, col.Name, err)
				}
				report.ColumnsAdded = append(report.ColumnsAdded, name+"."+col.Name)
				report.DDLCount++
				logging.Schema("Added missing column %s.%s (%s)", name, col.Name, col.Type)
				continue
			}
			if !strings.EqualFold(lt, col.Type) {
				drifted = append(drifted, col.Name)
			}
		}

		// Each rebuild recreates the table from the registry spec, but
		// per-column coercions still have to run against the old values,
		// so drifted columns rebuild one at a time.
		for _, col := range drifted {
			target, _ := specColumnType(spec, col)
			if err := s.RebuildColumnType(name, col, target, coercionFor(col)); err != nil {
				return nil, fmt.Errorf("failed to rebuild %s.%s: %w", name, col, err)
			}
			report.TypesRebuilt = append(report.TypesRebuilt, name+"."+col)
			report.DDLCount++
		}

		// Indexes skipped at open time because their column was
		// missing can be created now.
		if err := s.ensureIndexes(spec); err != nil {
			return nil, err
		}
	}

	timer.StopWithInfo("%d DDL statements", report.DDLCount)
	return report, nil
}

// columnCoercions maps registered column names to the value coercion
// applied when the reconciler rebuilds that column's type.
var columnCoercions = map[string]func(any) any{
	"quality": CoerceQuality,
}

func coercionFor(column string) func(any) any {
	if fn, ok := columnCoercions[strings.ToLower(column)]; ok {
		return fn
	}
	return func(v any) any { return v }
}

// RebuildColumnType changes a column's declared type by rebuilding the
// table through a shadow copy, coercing each existing value with
// coerce. The whole rebuild runs in one transaction so a failed
// coercion leaves the original table untouched.
func (s *WorldStore) RebuildColumnType(table, column, newType string, coerce func(any) any) error {
	spec, ok := Spec(table)
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}

	live, err := TableColumns(s.db, table)
	if err != nil {
		return err
	}
	idx := -1
	names := make([]string, 0, len(live))
	for _, c := range live {
		if strings.EqualFold(c.Name, "id") {
			continue
		}
		if strings.EqualFold(c.Name, column) {
			idx = len(names)
		}
		names = append(names, c.Name)
	}
	if idx < 0 {
		return fmt.Errorf("table %s has no column %q", table, column)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin rebuild: %w", err)
	}
	defer tx.Rollback()

	shadow := table + "_rebuild"
	create := strings.Replace(spec.CreateSQL(),
		"CREATE TABLE IF NOT EXISTS "+table,
		"CREATE TABLE "+shadow, 1)
	// The registry already declares the target type; guard against a
	// spec that still carries the old one.
	if _, ok := specColumnType(spec, column); ok {
		create = rewriteColumnType(create, column, newType)
	}
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("failed to create shadow table: %w", err)
	}

	colList := "id, " + strings.Join(names, ", ")
	rows, err := tx.Query(fmt.Sprintf("SELECT %s FROM %s", colList, table))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)+1), ", ")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", shadow, colList, placeholders)

	var batch [][]any
	for rows.Next() {
		vals := make([]any, len(names)+1)
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		vals[idx+1] = coerce(vals[idx+1])
		batch = append(batch, vals)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, vals := range batch {
		if _, err := tx.Exec(insert, vals...); err != nil {
			return fmt.Errorf("failed to copy row into shadow table: %w", err)
		}
	}

	if _, err := tx.Exec("DROP TABLE " + table); err != nil {
		return fmt.Errorf("failed to drop old table: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("ALTER TABLE %s RENAME TO %s", shadow, table)); err != nil {
		return fmt.Errorf("failed to rename shadow table: %w", err)
	}
	for _, stmt := range spec.IndexSQL() {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to recreate index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rebuild: %w", err)
	}
	logging.Schema("Rebuilt %s.%s as %s (%d rows)", table, column, newType, len(batch))
	return nil
}

func specColumnType(spec TableSpec, column string) (string, bool) {
	for _, c := range spec.Columns {
		if strings.EqualFold(c.Name, column) {
			return c.Type, true
		}
	}
	return "", false
}

func rewriteColumnType(create, column, newType string) string {
	lines := strings.Split(create, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, "\t ")
		if strings.HasPrefix(trimmed, column+" ") {
			fields := strings.Fields(trimmed)
			fields[1] = newType
			lines[i] = "\t" + strings.Join(fields, " ")
			break
		}
	}
	return strings.Join(lines, "\n")
}

// qualityGrades maps legacy textual quality values onto the integer
// scale used everywhere else.
var qualityGrades = map[string]int64{
	"broken":    0,
	"poor":      1,
	"standard":  2,
	"common":    2,
	"good":      3,
	"uncommon":  3,
	"excellent": 4,
	"rare":      4,
	"pristine":  5,
	"epic":      5,
	"legendary": 5,
}

// CoerceQuality converts a legacy quality value to its integer form.
// Recognized textual grades map to their rank, numeric strings parse,
// and anything else collapses to 0.
func CoerceQuality(v any) any {
	switch q := v.(type) {
	case nil:
		return int64(0)
	case int64:
		return q
	case int:
		return int64(q)
	case float64:
		return int64(q)
	case []byte:
		return CoerceQuality(string(q))
	case string:
		if n, ok := qualityGrades[strings.ToLower(strings.TrimSpace(q))]; ok {
			return n
		}
		if n, err := strconv.ParseInt(strings.TrimSpace(q), 10, 64); err == nil {
			return n
		}
		return int64(0)
	default:
		return int64(0)
	}
}

// BackupFile copies the database file aside before a destructive
// migration. In-memory databases are skipped.
func (s *WorldStore) BackupFile() (string, error) {
	if s.path == ":memory:" {
		return "", nil
	}
	backup := fmt.Sprintf("%s.backup-%s", s.path, time.Now().Format("20060102-150405"))

	src, err := os.Open(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to open database for backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(backup)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(backup)
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	logging.Store("Backed up database to %s", backup)
	return backup, nil
}

// MissingRef is one dangling weak reference found by VerifyWeakRefs.
type MissingRef struct {
	Table    string
	RowID    string
	RefTable string
	RefID    string
}

// VerifyWeakRefs checks the (item_type, item_id) pairs in
// shop_inventory against the item tables without modifying anything.
// The full category-aware pass lives in the audit package; this is the
// cheap structural check the reconciler runs after a rebuild.
func (s *WorldStore) VerifyWeakRefs() ([]MissingRef, error) {
	var missing []MissingRef
	for _, itemTable := range ItemTables {
		exists, err := TableExists(s.db, itemTable)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		rows, err := s.db.Query(fmt.Sprintf(`
			SELECT si.id, si.item_id FROM shop_inventory si
			WHERE LOWER(si.item_type) || '_items' = ?
			  AND NOT EXISTS (SELECT 1 FROM %s it WHERE it.id = si.item_id)`,
			itemTable), itemTable)
		if err != nil {
			return nil, fmt.Errorf("failed to verify refs into %s: %w", itemTable, err)
		}
		for rows.Next() {
			var m MissingRef
			m.Table = "shop_inventory"
			m.RefTable = itemTable
			if err := rows.Scan(&m.RowID, &m.RefID); err != nil {
				rows.Close()
				return nil, err
			}
			missing = append(missing, m)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return missing, nil
}
