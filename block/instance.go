package block

// Position is a canvas coordinate. The core stores it and never reads it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Payload is a block's type-specific configuration: a pointer to the
// struct returned by the type's registry.Descriptor.NewData, or nil.
type Payload = any

// Instance is one placed block. Predecessor and Successor hold instance ids;
// the empty string means no link.
type Instance struct {
	ID          string
	TypeKey     string
	Data        Payload
	Position    Position
	Predecessor string
	Successor   string
}

// IsHead reports whether the instance starts a chain.
func (i Instance) IsHead() bool { return i.Predecessor == "" }

// IsTail reports whether the instance ends a chain.
func (i Instance) IsTail() bool { return i.Successor == "" }

// Linked reports whether the instance has any link.
func (i Instance) Linked() bool { return i.Predecessor != "" || i.Successor != "" }
