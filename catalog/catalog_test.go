package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moffa90/go-zjs/protocol"
)

func TestDefault(t *testing.T) {
	c := Default()
	d := c.First()

	if d.VendorID != 0x8086 || d.ProductID != 0xF8A1 {
		t.Errorf("First() = %04x:%04x, want 8086:f8a1", d.VendorID, d.ProductID)
	}
	if d.Interface != 2 {
		t.Errorf("Interface = %d, want 2", d.Interface)
	}
	if !c.Contains(0x8086, 0xF8A1) {
		t.Error("Contains() = false for default device")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
		errMsg  string
	}{
		{
			name: "yaml with hex ids",
			input: "b:\n  vendorID: 0x2FE3\n  productID: 0x0100\n  webUSBInterface: 3\n" +
				"a:\n  vendorID: 0x8086\n  productID: 0xF8A1\n",
			wantLen: 2,
		},
		{
			name:    "json document",
			input:   `{"arduino101": {"vendorID": 32902, "productID": 63649, "webUSBInterface": 2}}`,
			wantLen: 1,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
			errMsg:  "no devices",
		},
		{
			name:    "missing product id",
			input:   "x:\n  vendorID: 0x8086\n",
			wantErr: true,
			errMsg:  "vendorID and productID are required",
		},
		{
			name:    "malformed",
			input:   "x: [",
			wantErr: true,
			errMsg:  "invalid catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.input))

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(c.Devices()); got != tt.wantLen {
				t.Errorf("got %d devices, want %d", got, tt.wantLen)
			}
		})
	}
}

func TestOrderingAndDefaults(t *testing.T) {
	c, err := Parse([]byte("zeta:\n  vendorID: 0x0001\n  productID: 0x0002\n" +
		"alpha:\n  vendorID: 0x2FE3\n  productID: 0x0100\n  webUSBInterface: 3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := c.First()
	if first.Key != "alpha" {
		t.Errorf("First().Key = %q, want alpha", first.Key)
	}
	if first.Interface != 3 {
		t.Errorf("alpha interface = %d, want 3", first.Interface)
	}

	zeta, ok := c.Lookup(0x0001, 0x0002)
	if !ok {
		t.Fatal("Lookup(0001:0002) not found")
	}
	if zeta.Interface != protocol.DefaultInterface {
		t.Errorf("zeta interface = %d, want default %d", zeta.Interface, protocol.DefaultInterface)
	}

	if _, ok := c.Lookup(0x1234, 0x5678); ok {
		t.Error("Lookup() found an unknown device")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.yaml")
	if err := os.WriteFile(path, []byte("dev:\n  vendorID: 0x1915\n  productID: 0x520F\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !c.Contains(0x1915, 0x520F) {
		t.Error("loaded catalog missing device")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
