// Package catalog is the offline catalog cache: a bbolt-backed store of flat
// catalog records, the mapper between records and rich catalog items, and
// the service the curation pipeline reads catalog items from.
package catalog

import (
	json "github.com/goccy/go-json"
)

// Codec serializes the nested fields of catalog records.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// JSONCodec encodes with goccy/go-json.
type JSONCodec struct{}

// Marshal implements Codec.
func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal implements Codec.
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name implements Codec.
func (JSONCodec) Name() string { return "json" }
