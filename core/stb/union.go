package stb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// encodeUnion writes a keyed map of union values as
// {"<key>": {"<Tag>": {...}}, ...}.
func encodeUnion[K comparable, V any](m map[K]V, tag func(V) string) ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	out := make(map[K]map[string]V, len(m))
	for k, v := range m {
		out[k] = map[string]V{tag(v): v}
	}
	return json.Marshal(out)
}

// decodeUnion reverses encodeUnion. Each entry must carry exactly one tag.
func decodeUnion[K comparable, V any](data []byte, decode func(tag string, body json.RawMessage) (V, error)) (map[K]V, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var raw map[K]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[K]V, len(raw))
	for k, tagged := range raw {
		if len(tagged) != 1 {
			return nil, fmt.Errorf("entry %v: want exactly one variant tag, got %d", k, len(tagged))
		}
		for tag, body := range tagged {
			v, err := decode(tag, body)
			if err != nil {
				return nil, fmt.Errorf("entry %v: %w", k, err)
			}
			out[k] = v
		}
	}
	return out, nil
}

// decodeAs decodes body into the concrete variant T and returns it as the
// union interface V.
func decodeAs[V any, T any](body json.RawMessage) (V, error) {
	var t T
	if err := json.Unmarshal(body, &t); err != nil {
		var zero V
		return zero, err
	}
	return any(t).(V), nil
}
