package block

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/kbukum/blockflow/errors"
	"github.com/kbukum/blockflow/registry"
	"github.com/kbukum/blockflow/validation"
)

// DecodePayload decodes raw JSON onto the type's default payload, so absent
// fields keep their defaults, and validates the result. Empty or null input
// yields the default payload.
func DecodePayload(desc registry.Descriptor, raw []byte) (Payload, error) {
	data := desc.DefaultData()
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return data, nil
	}
	if data == nil {
		if bytes.Equal(trimmed, []byte("{}")) {
			return nil, nil
		}
		return nil, errors.InvalidInput("data", fmt.Sprintf("block type %s takes no configuration", desc.TypeKey))
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(data); err != nil {
		return nil, errors.InvalidInput("data", fmt.Sprintf("invalid %s configuration: %v", desc.TypeKey, err))
	}
	if err := validation.Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// checkPayload verifies data has the concrete type the descriptor produces
// and passes struct validation.
func checkPayload(desc registry.Descriptor, data Payload) error {
	want := desc.DefaultData()
	if want == nil {
		if data != nil {
			return errors.InvalidInput("data", fmt.Sprintf("block type %s takes no configuration", desc.TypeKey))
		}
		return nil
	}
	if data == nil || reflect.TypeOf(data) != reflect.TypeOf(want) {
		return errors.InvalidInput("data", fmt.Sprintf("block type %s expects %T, got %T", desc.TypeKey, want, data))
	}
	return validation.Validate(data)
}
