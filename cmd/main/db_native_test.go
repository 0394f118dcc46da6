//go:build !cgo_sqlite

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNativeDSN(t *testing.T) {
	assert.Equal(t, "model.db", nativeDSN("model.db"))
	assert.Equal(t,
		"data/model.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		nativeDSN("data/model.db?_journal_mode=WAL&_busy_timeout=5000"))
	assert.Equal(t,
		"model.db?_pragma=foreign_keys(1)&vfs=memdb",
		nativeDSN("model.db?_pragma=foreign_keys(1)&vfs=memdb"))
}
