package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/moffa90/go-zjs/protocol"
	"gopkg.in/yaml.v3"
)

//go:embed devices.yaml
var defaultCatalog []byte

// Device is one known WebUSB device.
type Device struct {
	// Key is the catalog entry name
	Key string `yaml:"-"`

	// Name is a human-readable description
	Name string `yaml:"name"`

	// VendorID is the USB vendor ID
	VendorID uint16 `yaml:"vendorID"`

	// ProductID is the USB product ID
	ProductID uint16 `yaml:"productID"`

	// Interface is the WebUSB interface to claim
	Interface int `yaml:"webUSBInterface"`
}

// Catalog maps vendor/product IDs to WebUSB interface numbers.
type Catalog struct {
	devices []Device
}

// Default returns the catalog shipped with the tool.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog document: a mapping of entry names to devices.
// Entries without an interface get protocol.DefaultInterface.
func Parse(data []byte) (*Catalog, error) {
	var entries map[string]Device
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog has no devices")
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	c := &Catalog{devices: make([]Device, 0, len(keys))}
	for _, k := range keys {
		d := entries[k]
		d.Key = k
		if d.VendorID == 0 || d.ProductID == 0 {
			return nil, fmt.Errorf("device %q: vendorID and productID are required", k)
		}
		if d.Interface == 0 {
			d.Interface = protocol.DefaultInterface
		}
		c.devices = append(c.devices, d)
	}
	return c, nil
}

// Devices returns all entries sorted by key.
func (c *Catalog) Devices() []Device {
	out := make([]Device, len(c.devices))
	copy(out, c.devices)
	return out
}

// First returns the first entry by key.
func (c *Catalog) First() Device {
	return c.devices[0]
}

// Lookup returns the entry for the given IDs.
func (c *Catalog) Lookup(vendorID, productID uint16) (Device, bool) {
	for _, d := range c.devices {
		if d.VendorID == vendorID && d.ProductID == productID {
			return d, true
		}
	}
	return Device{}, false
}

// Contains reports whether the IDs belong to a known WebUSB device.
func (c *Catalog) Contains(vendorID, productID uint16) bool {
	_, ok := c.Lookup(vendorID, productID)
	return ok
}
