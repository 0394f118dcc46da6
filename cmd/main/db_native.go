//go:build !cgo_sqlite

package main

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"
)

const sqliteDriver = "sqlite"

// initDB opens the pure Go driver, which spells its pragmas differently from
// mattn/go-sqlite3: "_journal_mode=WAL" becomes "_pragma=journal_mode(WAL)".
func initDB(dataSource string) (*sql.DB, error) {
	return sql.Open(sqliteDriver, nativeDSN(dataSource))
}

func nativeDSN(dataSource string) string {
	path, query, found := strings.Cut(dataSource, "?")
	if !found {
		return dataSource
	}
	var params []string
	for _, param := range strings.Split(query, "&") {
		key, value, _ := strings.Cut(param, "=")
		if strings.HasPrefix(key, "_") && key != "_pragma" && key != "_txlock" && key != "_time_format" {
			params = append(params, "_pragma="+strings.TrimPrefix(key, "_")+"("+value+")")
			continue
		}
		params = append(params, param)
	}
	return path + "?" + strings.Join(params, "&")
}
