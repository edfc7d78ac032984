package dbx

import "strings"

const sqliteParams = "_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

// SQLiteDSN turns a database file path into a modernc.org/sqlite DSN with
// the settings the repositories rely on: immediate write transactions, a
// busy timeout, enforced foreign keys and WAL journaling. A path that
// already carries query parameters is returned unchanged.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?" + sqliteParams
}
