package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type StatEntry struct {
	Name  string
	Value Text
}

// Stats keeps the key order of the JSON object it was decoded from.
type Stats []StatEntry

func (s *Stats) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("stats: expected a JSON object")
	}

	out := Stats{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("stats: unexpected key %v", tok)
		}

		var value Text
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("stats: value of %q: %w", name, err)
		}
		out = append(out, StatEntry{Name: name, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = out
	return nil
}

func (s Stats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(statValue(e.Value))
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Get returns the value for name and whether it was present.
func (s Stats) Get(name string) (Text, bool) {
	for _, e := range s {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

func statValue(v Text) []byte {
	var n json.Number
	if err := json.Unmarshal([]byte(v), &n); err == nil {
		return []byte(n)
	}
	b, _ := json.Marshal(string(v))
	return b
}
