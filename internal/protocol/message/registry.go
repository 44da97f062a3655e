package message

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danmuck/gamewire/internal/protocol/frame"
)

// Descriptor is one registry entry. A nil New marks an outbound-only
// message that the process never decodes.
type Descriptor struct {
	Opcode    uint32
	Name      string
	Channel   frame.Channel
	Direction Direction
	New       func() Decodable
}

// Decodable reports whether the registry can build a decoder for d.
func (d Descriptor) Decodable() bool {
	return d.New != nil
}

// RegistryError reports an invalid registry table.
type RegistryError struct {
	Opcode uint32
	Reason string
}

func (e RegistryError) Error() string {
	return fmt.Sprintf("message: registry opcode=%#04x: %s", e.Opcode, e.Reason)
}

// Registry maps opcodes to descriptors. It is built once and never mutated,
// so concurrent lookups need no locking.
type Registry struct {
	byOpcode map[uint32]Descriptor
	ordered  []Descriptor
}

// NewRegistry validates descs and builds a registry from them.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	reg := &Registry{
		byOpcode: make(map[uint32]Descriptor, len(descs)),
		ordered:  make([]Descriptor, 0, len(descs)),
	}
	for _, d := range descs {
		if strings.TrimSpace(d.Name) == "" {
			return nil, RegistryError{Opcode: d.Opcode, Reason: "missing name"}
		}
		if !d.Channel.Valid() {
			return nil, RegistryError{Opcode: d.Opcode, Reason: "invalid channel"}
		}
		if d.Direction < ClientToServer || d.Direction > Bidirectional {
			return nil, RegistryError{Opcode: d.Opcode, Reason: "invalid direction"}
		}
		if prev, ok := reg.byOpcode[d.Opcode]; ok {
			return nil, RegistryError{Opcode: d.Opcode, Reason: fmt.Sprintf("duplicate of %s", prev.Name)}
		}
		if d.New != nil {
			probe := d.New()
			if probe == nil {
				return nil, RegistryError{Opcode: d.Opcode, Reason: "factory returned nil"}
			}
			if probe.Opcode() != d.Opcode {
				return nil, RegistryError{Opcode: d.Opcode, Reason: fmt.Sprintf("factory builds opcode %#04x", probe.Opcode())}
			}
		}
		reg.byOpcode[d.Opcode] = d
		reg.ordered = append(reg.ordered, d)
	}
	sort.Slice(reg.ordered, func(i, j int) bool {
		return reg.ordered[i].Opcode < reg.ordered[j].Opcode
	})
	return reg, nil
}

// MustRegistry is NewRegistry for static tables; it panics on an invalid one.
func MustRegistry(descs ...Descriptor) *Registry {
	reg, err := NewRegistry(descs...)
	if err != nil {
		panic(err)
	}
	return reg
}

func (r *Registry) Lookup(opcode uint32) (Descriptor, bool) {
	d, ok := r.byOpcode[opcode]
	return d, ok
}

// Name returns the registered name of opcode, or a hex placeholder.
func (r *Registry) Name(opcode uint32) string {
	if d, ok := r.byOpcode[opcode]; ok {
		return d.Name
	}
	return fmt.Sprintf("UNKNOWN_%#04x", opcode)
}

// Descriptors returns a copy of all entries ordered by opcode.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

func (r *Registry) Len() int {
	return len(r.ordered)
}
