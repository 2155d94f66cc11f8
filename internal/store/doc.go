// Package store provides the sqlite-backed counter storage.
package store

import "github.com/user/wfhbot/internal/types"

// Compile-time interface compliance check.
var _ types.CounterStore = (*Store)(nil)
