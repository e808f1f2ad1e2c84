package security

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Validation limits.
const (
	DefaultMaxPayloadSize = 1 << 20 // 1 MiB
	DefaultMaxJSONDepth   = 32
)

// Validation errors.
var (
	ErrPayloadTooLarge = errors.New("payload exceeds maximum size")
	ErrJSONTooDeep     = errors.New("JSON nesting exceeds maximum depth")
	ErrInvalidJSON     = errors.New("invalid JSON")
)

// ValidatePayloadSize checks that a plan file or request body does not exceed limit bytes.
// If limit is <= 0, DefaultMaxPayloadSize is used.
func ValidatePayloadSize(data []byte, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxPayloadSize
	}
	if len(data) > limit {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(data), limit)
	}
	return nil
}

// ValidatePayload applies both the size and the depth limit to a JSON
// document, using the defaults for non-positive limits.
func ValidatePayload(data []byte, maxSize, maxDepth int) error {
	if err := ValidatePayloadSize(data, maxSize); err != nil {
		return err
	}
	return ValidateJSONDepth(data, maxDepth)
}

// ValidateJSONDepth checks that the JSON in data does not nest deeper
// than limit levels. This protects against JSON bombs that could exhaust
// stack or memory in the plan decoder. If limit is <= 0, DefaultMaxJSONDepth is used.
func ValidateJSONDepth(data []byte, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxJSONDepth
	}
	if len(data) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	depth := 0

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}

		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
			if depth > limit {
				return fmt.Errorf("%w: depth %d (max %d)", ErrJSONTooDeep, depth, limit)
			}
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
	}
}
