package store

import (
	"strconv"
	"strings"
)

// dialect captures what differs between the supported SQL backends.
// Queries are written with "?" placeholders and rebound per driver.
type dialect struct {
	name         string
	idColumn     string
	realType     string
	timeType     string
	tableExists  string
	unbounded    string
	supportsWAL  bool
	vacuumBackup bool
}

var dialects = map[string]dialect{
	DriverSQLite: {
		name:         DriverSQLite,
		idColumn:     "INTEGER PRIMARY KEY AUTOINCREMENT",
		realType:     "REAL",
		timeType:     "INTEGER",
		tableExists:  `SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)`,
		unbounded:    "-1",
		supportsWAL:  true,
		vacuumBackup: true,
	},
	DriverPostgres: {
		name:        DriverPostgres,
		idColumn:    "BIGSERIAL PRIMARY KEY",
		realType:    "DOUBLE PRECISION",
		timeType:    "BIGINT",
		tableExists: `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?)`,
		unbounded:   "ALL",
	},
}

// rebind rewrites "?" placeholders into the driver's native form.
func (d dialect) rebind(query string) string {
	if d.name != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// expand fills the {{id}}, {{real}} and {{time}} column type markers of a DDL template.
func (d dialect) expand(ddl string) string {
	return strings.NewReplacer(
		"{{id}}", d.idColumn,
		"{{real}}", d.realType,
		"{{time}}", d.timeType,
	).Replace(ddl)
}
