// Package catalog holds the value types shared by the prompt and workflow
// collections: identifiers, complexity levels, tags and stats sources.
package catalog

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"
)

// ErrInvalidID is returned when a non-numeric ID is bound to a relational column.
var ErrInvalidID = errors.New("id is not a server identifier")

// ID identifies a prompt or workflow. Server rows use decimal integers;
// items created offline use "<unix-millis>-<rand>".
type ID string

// NewLocalID returns a time-based identifier for items created without a server.
func NewLocalID() ID {
	return ID(fmt.Sprintf("%d-%d", time.Now().UnixMilli(), rand.IntN(10000)))
}

func (id ID) String() string {
	return string(id)
}

// Int64 returns the numeric value of a server identifier.
func (id ID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsNumeric reports whether id was assigned by the relational store.
func (id ID) IsNumeric() bool {
	_, ok := id.Int64()
	return ok
}

// MarshalJSON writes numeric ids as JSON numbers and all others as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Int64(); ok {
		return strconv.AppendInt(nil, n, 10), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*id = ID(strconv.FormatInt(v, 10))
	case string:
		*id = ID(v)
	case []byte:
		*id = ID(v)
	case nil:
		*id = ""
	default:
		return fmt.Errorf("scan id: unsupported type %T", src)
	}
	return nil
}

func (id ID) Value() (driver.Value, error) {
	n, ok := id.Int64()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, string(id))
	}
	return n, nil
}

// NumericIDs converts ids to int64 values, dropping any that are not server identifiers.
func NumericIDs(ids []ID) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		if n, ok := id.Int64(); ok {
			out = append(out, n)
		}
	}
	return out
}

// Complexity grades how hard an item is to adopt.
type Complexity string

const (
	Beginner     Complexity = "beginner"
	Intermediate Complexity = "intermediate"
	Advanced     Complexity = "advanced"
)

// OrDefault returns c, or Beginner when c is empty.
func (c Complexity) OrDefault() Complexity {
	if c == "" {
		return Beginner
	}
	return c
}

// Tag is a short colored label attached to a prompt.
type Tag struct {
	Text  string `json:"text" validate:"required"`
	Color string `json:"color" validate:"oneof=purple green blue yellow"`
}

// Source names where a counter value was read from.
type Source string

const (
	SourceServer Source = "d1"
	SourceLocal  Source = "localstorage"
)
