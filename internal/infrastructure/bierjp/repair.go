package bierjp

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// Repair strategy names accepted by NewRepairer
const (
	RepairTrailingComma = "trailing_comma"
	RepairJSONRepair    = "jsonrepair"
)

// PayloadRepairer fixes known defects of detail payloads before they are parsed
type PayloadRepairer interface {
	Repair(raw []byte) ([]byte, error)
}

// NewRepairer returns the repair strategy registered under name
func NewRepairer(name string) (PayloadRepairer, error) {
	switch name {
	case "", RepairTrailingComma:
		return TrailingCommaRepairer{}, nil
	case RepairJSONRepair:
		return LenientRepairer{}, nil
	default:
		return nil, fmt.Errorf("unknown repair strategy: %s", name)
	}
}

// TrailingCommaRepairer removes the trailing commas the shop emits before
// closing brackets. The replacement is literal, so ",}" inside a string value
// is rewritten too.
type TrailingCommaRepairer struct{}

// Repair replaces ",}" with "}" and ",]" with "]"
func (TrailingCommaRepairer) Repair(raw []byte) ([]byte, error) {
	fixed := bytes.ReplaceAll(raw, []byte(",}"), []byte("}"))
	fixed = bytes.ReplaceAll(fixed, []byte(",]"), []byte("]"))
	return fixed, nil
}

// LenientRepairer applies the trailing comma fix and falls back to a general
// JSON repair when the result is still not valid JSON.
type LenientRepairer struct{}

// Repair returns valid JSON or an error
func (LenientRepairer) Repair(raw []byte) ([]byte, error) {
	fixed, _ := TrailingCommaRepairer{}.Repair(raw)
	if json.Valid(fixed) {
		return fixed, nil
	}

	repaired, err := jsonrepair.JSONRepair(string(raw))
	if err != nil {
		return nil, fmt.Errorf("json repair failed: %w", err)
	}
	return []byte(repaired), nil
}
