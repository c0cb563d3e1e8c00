// Package device describes the fixed set of USB HID gadget functions the
// relay drives: keyboard, mouse and consumer control. Each subpackage holds
// the input state and report encoder for one function and registers its
// gadget definition here.
package device

import (
	"fmt"
	"sort"
	"sync"
)

// Gadget describes one HID function exposed through the USB gadget.
type Gadget struct {
	// Name is the function label used in configfs and logs.
	Name string
	// Index is the hidg node ordinal; /dev/hidg<Index> by default.
	Index int
	// Protocol and Subclass are the HID interface protocol/subclass bytes.
	Protocol uint8
	Subclass uint8
	// ReportLength is the fixed size of one input report in bytes.
	ReportLength int
	// Descriptor is the HID report descriptor for this function.
	Descriptor []byte
}

// DefaultNode returns the device node the kernel assigns to this function
// when the gadget is the only one bound.
func (g Gadget) DefaultNode() string {
	return fmt.Sprintf("/dev/hidg%d", g.Index)
}

// ReportBuilder is an interface for gadget input states that can build HID reports.
type ReportBuilder interface {
	// BuildReport encodes the input state into a fixed-size report.
	BuildReport() []byte
}

var (
	registryMu sync.RWMutex
	registry   []Gadget
)

// Register adds a gadget function definition. Definitions are kept sorted by
// Index so node assignment stays stable regardless of import order.
func Register(g Gadget) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, g)
	sort.Slice(registry, func(i, j int) bool { return registry[i].Index < registry[j].Index })
}

// Gadgets returns all registered gadget definitions in node order.
func Gadgets() []Gadget {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Gadget, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the gadget definition registered under the given name.
func Lookup(name string) (Gadget, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, g := range registry {
		if g.Name == name {
			return g, true
		}
	}
	return Gadget{}, false
}
