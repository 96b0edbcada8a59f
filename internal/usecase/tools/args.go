package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/review/internal/domain"
)

// number accepts a JSON number or a numeric string. Null and "" leave it unset.
type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%q is not a number", raw)
	}
	n.value, n.set = f, true
	return nil
}

func (n number) ptr() *float64 {
	if !n.set {
		return nil
	}
	v := n.value
	return &v
}

// intOr truncates toward zero, clamped to the int32 range; def is returned when unset.
func (n number) intOr(def int) int {
	if !n.set {
		return def
	}
	v := math.Trunc(n.value)
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}

// decodeArgs parses tool arguments into dst. Empty arguments decode as {}.
func decodeArgs(args json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(args)) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("decode arguments: %w: %w", err, domain.ErrInvalidArguments)
	}
	return nil
}

// decodeText accepts either an object holding field or a bare JSON string,
// for tools that take a single free-text input.
func decodeText(args json.RawMessage, field string) (string, error) {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf("decode arguments: %w: %w", err, domain.ErrInvalidArguments)
		}
		return s, nil
	}

	var obj map[string]json.RawMessage
	if err := decodeArgs(args, &obj); err != nil {
		return "", err
	}
	raw, ok := obj[field]
	if !ok {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s must be a string: %w", field, domain.ErrInvalidArguments)
	}
	return s, nil
}
