package registry

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Limit is a per-stage instance cap. Unlimited means no cap.
type Limit int

// Unlimited marks a block type that may be placed any number of times.
const Unlimited Limit = -1

// Bounded reports whether the limit caps instance count.
func (l Limit) Bounded() bool { return l != Unlimited }

// Allows reports whether one more instance fits when count are placed.
func (l Limit) Allows(count int) bool {
	return !l.Bounded() || count < int(l)
}

func (l Limit) String() string {
	if !l.Bounded() {
		return "unlimited"
	}
	return strconv.Itoa(int(l))
}

// MarshalJSON renders Unlimited as "unlimited" and bounded limits as numbers.
func (l Limit) MarshalJSON() ([]byte, error) {
	if !l.Bounded() {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(int(l))), nil
}

// UnmarshalJSON accepts a positive number or "unlimited".
func (l *Limit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "unlimited" {
			return fmt.Errorf("registry: invalid limit %q", s)
		}
		*l = Unlimited
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("registry: invalid limit %s", data)
	}
	*l = Limit(n)
	return nil
}

// MarshalYAML mirrors MarshalJSON for catalog exports.
func (l Limit) MarshalYAML() (interface{}, error) {
	if !l.Bounded() {
		return "unlimited", nil
	}
	return int(l), nil
}

// Descriptor is the static definition of a block type within one stage.
type Descriptor struct {
	TypeKey        string
	Label          string
	AcceptsInput   bool
	ProducesOutput bool
	MaxInstances   Limit
	// Protected types are seeded into every new canvas and cannot be deleted.
	Protected bool
	// SeedX and SeedY place a protected block when it is seeded.
	SeedX, SeedY float64
	// NewData returns a pointer to a fresh payload struct. Nil means the
	// type carries no configuration.
	NewData func() any
}

// DefaultData returns a fresh payload for the type, or nil.
func (d Descriptor) DefaultData() any {
	if d.NewData == nil {
		return nil
	}
	return d.NewData()
}

// TableRow is the serialized form of a descriptor.
type TableRow struct {
	TypeKey        string `json:"typeKey" yaml:"typeKey"`
	Label          string `json:"label" yaml:"label"`
	AcceptsInput   bool   `json:"acceptsInput" yaml:"acceptsInput"`
	ProducesOutput bool   `json:"producesOutput" yaml:"producesOutput"`
	MaxInstances   Limit  `json:"maxInstances" yaml:"maxInstances"`
	Protected      bool   `json:"protected" yaml:"protected"`
}

// Row returns the descriptor's table row.
func (d Descriptor) Row() TableRow {
	return TableRow{
		TypeKey:        d.TypeKey,
		Label:          d.Label,
		AcceptsInput:   d.AcceptsInput,
		ProducesOutput: d.ProducesOutput,
		MaxInstances:   d.MaxInstances,
		Protected:      d.Protected,
	}
}
