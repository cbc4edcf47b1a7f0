package workspace

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/errors"
	"github.com/kbukum/blockflow/progress"
	"github.com/kbukum/blockflow/registry"
	"github.com/kbukum/blockflow/util"
	"github.com/kbukum/blockflow/validation"
)

// Record is the serialized form of a block instance. Input and Output hold
// the predecessor and successor ids, or null.
type Record struct {
	ID       string          `json:"id" validate:"required,max=128"`
	Type     string          `json:"type" validate:"required,max=64"`
	Data     json.RawMessage `json:"data"`
	Position block.Position  `json:"position"`
	Input    *string         `json:"input"`
	Output   *string         `json:"output"`
}

type recordSet struct {
	Blocks []Record `json:"blocks" validate:"dive"`
}

// ToRecord converts an instance to its serialized form.
func ToRecord(inst block.Instance) (Record, error) {
	data, err := json.Marshal(inst.Data)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s data: %w", inst.ID, err)
	}
	return Record{
		ID:       inst.ID,
		Type:     inst.TypeKey,
		Data:     data,
		Position: inst.Position,
		Input:    util.PtrOrNil(inst.Predecessor),
		Output:   util.PtrOrNil(inst.Successor),
	}, nil
}

// ToRecords converts instances in order.
func ToRecords(instances []block.Instance) ([]Record, error) {
	out := make([]Record, 0, len(instances))
	for _, inst := range instances {
		rec, err := ToRecord(inst)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// EncodeStage renders a stage's instances as a JSON array of records.
func EncodeStage(instances []block.Instance) ([]byte, error) {
	records, err := ToRecords(instances)
	if err != nil {
		return nil, err
	}
	return json.Marshal(records)
}

// DecodeStage parses a stage snapshot. Records are validated and their
// data decoded through the registry's payload factories; link integrity is
// left to block.Store.Restore.
func DecodeStage(reg *registry.Registry, raw []byte) ([]block.Instance, error) {
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.InvalidInput("snapshot", fmt.Sprintf("malformed stage snapshot: %v", err))
	}
	if err := validation.Validate(recordSet{Blocks: records}); err != nil {
		return nil, err
	}

	v := validation.New()
	instances := make([]block.Instance, 0, len(records))
	for i, rec := range records {
		v.Finite(fmt.Sprintf("blocks[%d].position.x", i), rec.Position.X).
			Finite(fmt.Sprintf("blocks[%d].position.y", i), rec.Position.Y)

		desc, err := reg.Get(rec.Type)
		if err != nil {
			return nil, err
		}
		data, err := block.DecodePayload(desc, rec.Data)
		if err != nil {
			return nil, err
		}
		instances = append(instances, block.Instance{
			ID:          rec.ID,
			TypeKey:     rec.Type,
			Data:        data,
			Position:    rec.Position,
			Predecessor: util.Deref(rec.Input),
			Successor:   util.Deref(rec.Output),
		})
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return instances, nil
}

// EncodeProgress renders the gate's completion map.
func EncodeProgress(g *progress.Gate) ([]byte, error) {
	return json.Marshal(g.Snapshot())
}

// DecodeProgress parses a completion map.
func DecodeProgress(raw []byte) (map[progress.Step]bool, error) {
	var snap map[progress.Step]bool
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, errors.InvalidInput("snapshot", fmt.Sprintf("malformed progress snapshot: %v", err))
	}
	return snap, nil
}
