package transport

import (
	"fmt"
	"strconv"

	"github.com/google/gousb"
	"go.bug.st/serial/enumerator"
)

// DeviceInfo describes an attached USB device.
type DeviceInfo struct {
	Bus       int
	Address   int
	VendorID  uint16
	ProductID uint16
	Class     string
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("Bus %03d Device %03d: ID %04x:%04x %s", d.Bus, d.Address, d.VendorID, d.ProductID, d.Class)
}

// ListUSB enumerates attached USB devices without opening them.
func ListUSB(debug int) ([]DeviceInfo, error) {
	ctx := gousb.NewContext()
	defer func() { _ = ctx.Close() }()

	if debug > 0 {
		ctx.Debug(debug)
	}

	var infos []DeviceInfo
	_, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		infos = append(infos, DeviceInfo{
			Bus:       desc.Bus,
			Address:   desc.Address,
			VendorID:  uint16(desc.Vendor),
			ProductID: uint16(desc.Product),
			Class:     desc.Class.String(),
		})
		return false
	})
	if err != nil {
		return infos, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}
	return infos, nil
}

// PortInfo describes a serial port.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VendorID     uint16
	ProductID    uint16
	SerialNumber string
	Product      string
}

// ListSerial enumerates serial ports, with USB IDs for USB-backed ports.
func ListSerial() ([]PortInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports: %w", err)
	}

	infos := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		info := PortInfo{
			Name:         p.Name,
			IsUSB:        p.IsUSB,
			SerialNumber: p.SerialNumber,
			Product:      p.Product,
		}
		if p.IsUSB {
			info.VendorID = parseHexID(p.VID)
			info.ProductID = parseHexID(p.PID)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// parseHexID parses an enumerator VID/PID string such as "8086".
// Unparseable IDs become 0.
func parseHexID(s string) uint16 {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}
