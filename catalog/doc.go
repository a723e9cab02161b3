// Package catalog holds the list of known WebUSB devices and the interface
// each one exposes its terminal on.
//
// A catalog is a YAML (or JSON) mapping:
//
//	arduino101:
//	  name: Arduino 101 (ZephyrJS)
//	  vendorID: 0x8086
//	  productID: 0xF8A1
//	  webUSBInterface: 2
package catalog
