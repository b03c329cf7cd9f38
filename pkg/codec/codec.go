// Package codec converts values to and from the bytes kept in a store file.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Codec is a bidirectional conversion between T and bytes.
type Codec[T any] interface {
	Marshal(v T) ([]byte, error)
	Unmarshal(data []byte) (T, error)
}

// JSON encodes values with encoding/json, indented for readability.
type JSON[T any] struct{}

func (JSON[T]) Marshal(v T) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (JSON[T]) Unmarshal(data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

// YAML encodes values with gopkg.in/yaml.v3.
type YAML[T any] struct{}

func (YAML[T]) Marshal(v T) ([]byte, error) {
	return yaml.Marshal(v)
}

func (YAML[T]) Unmarshal(data []byte) (T, error) {
	var v T
	err := yaml.Unmarshal(data, &v)
	return v, err
}

// MsgPack encodes values as MessagePack, the most compact of the three.
type MsgPack[T any] struct{}

func (MsgPack[T]) Marshal(v T) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgPack[T]) Unmarshal(data []byte) (T, error) {
	var v T
	err := msgpack.Unmarshal(data, &v)
	return v, err
}

// ByName resolves "json", "yaml" (or "yml") and "msgpack".
func ByName[T any](name string) (Codec[T], error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON[T]{}, nil
	case "yaml", "yml":
		return YAML[T]{}, nil
	case "msgpack":
		return MsgPack[T]{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
