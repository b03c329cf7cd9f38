package main

import "time"

// Catalog is the value the daemon keeps in its store.
type Catalog struct {
	Version   int               `json:"version" yaml:"version" msgpack:"version"`
	UpdatedAt time.Time         `json:"updated_at" yaml:"updated_at" msgpack:"updated_at"`
	Entries   map[string]string `json:"entries" yaml:"entries" msgpack:"entries"`
}

// Default is the catalog written when no store file exists yet.
func (Catalog) Default() Catalog {
	return Catalog{Entries: map[string]string{}}
}
