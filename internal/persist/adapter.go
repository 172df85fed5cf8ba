// Package persist provides the durable collection store used by collection-backed repositories.
package persist

import (
	"context"
	"encoding/json"
)

// Collection names.
const (
	Users = "users"
	Vault = "vault"
)

// Adapter stores named collections of JSON values keyed by string.
type Adapter interface {
	// LoadCollection returns every entry of the collection, or an empty map if it does not exist yet.
	LoadCollection(ctx context.Context, name string) (map[string]json.RawMessage, error)
	// SaveCollection replaces the whole collection atomically.
	SaveCollection(ctx context.Context, name string, entries map[string]json.RawMessage) error
}
