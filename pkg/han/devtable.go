package han

import (
	"fmt"

	"github.com/dect-ule/ule-go/pkg/proto"
)

// Interface is one service interface offered by a unit.
type Interface struct {
	ID   int
	Type int
}

// Unit is one functional unit of a device.
type Unit struct {
	ID         int
	Type       int
	Interfaces []Interface
}

// Device is one entry of the registered (or blacklisted) device table.
type Device struct {
	ID                 int
	IPUI               string
	EMC                string
	ULECapabilities    int
	ULEProtocolID      int
	ULEProtocolVersion int
	Units              []Unit
}

func (d Device) String() string {
	return fmt.Sprintf("Device(id=%d, ipui=%s)", d.ID, d.IPUI)
}

// DevTable is one page of the device table.
type DevTable struct {
	Index   int
	Devices []Device
}

// DevInfo describes a single device.
type DevInfo struct {
	Device Device
}

// The table parser walks the flat parameter list. Each record type has a
// fixed attribute set; attributes are consumed greedily until an unknown
// key or a repeated key marks the start of the next record. Child counts
// (NO_UNITS, NO_OF_INTRF) are explicit, so exactly that many children are
// parsed, zero included.

type fieldSetter func(v string) error

func intField(dst *int) fieldSetter {
	return func(v string) error {
		n, err := parseInt(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func hexField(dst *string) fieldSetter {
	return func(v string) error {
		s, err := HexString(v)
		if err != nil {
			return err
		}
		*dst = s
		return nil
	}
}

func parseInt(v string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return 0, fmt.Errorf("%w: %q: %v", proto.ErrFieldDecode, v, err)
	}
	return n, nil
}

// parseObject consumes leading params into the object's fields and returns
// the leftover params. Parsing stops at an unknown key or when a key
// repeats; the remainder belongs to sibling or child records.
func parseObject(params []Param, fields map[string]fieldSetter) ([]Param, error) {
	seen := make(map[string]bool, len(fields))
	for len(params) > 0 {
		p := params[0]
		setter, ok := fields[p.Key]
		if !ok || seen[p.Key] {
			break
		}
		if err := setter(p.Value); err != nil {
			return nil, err
		}
		seen[p.Key] = true
		params = params[1:]
	}
	return params, nil
}

func parseInterface(params []Param) (Interface, []Param, error) {
	var intf Interface
	rest, err := parseObject(params, map[string]fieldSetter{
		"INTRF_TYPE": intField(&intf.Type),
		"INTRF_ID":   intField(&intf.ID),
	})
	return intf, rest, err
}

func parseUnit(params []Param) (Unit, []Param, error) {
	var unit Unit
	params, err := parseObject(params, map[string]fieldSetter{
		"UNIT_ID":   intField(&unit.ID),
		"UNIT_TYPE": intField(&unit.Type),
	})
	if err != nil {
		return unit, nil, err
	}

	if len(params) == 0 || params[0].Key != "NO_OF_INTRF" {
		return unit, nil, fmt.Errorf("%w: expected NO_OF_INTRF", proto.ErrFieldDecode)
	}
	count, err := parseInt(params[0].Value)
	if err != nil {
		return unit, nil, err
	}
	params = params[1:]

	for i := 0; i < count; i++ {
		intf, rest, err := parseInterface(params)
		if err != nil {
			return unit, nil, err
		}
		unit.Interfaces = append(unit.Interfaces, intf)
		params = rest
	}
	return unit, params, nil
}

func parseDevice(params []Param) (Device, []Param, error) {
	var dev Device
	params, err := parseObject(params, map[string]fieldSetter{
		"DEV_ID":               intField(&dev.ID),
		"DEV_IPUI":             hexField(&dev.IPUI),
		"DEV_EMC":              hexField(&dev.EMC),
		"ULE_CAPABILITIES":     intField(&dev.ULECapabilities),
		"ULE_PROTOCOL_ID":      intField(&dev.ULEProtocolID),
		"ULE_PROTOCOL_VERSION": intField(&dev.ULEProtocolVersion),
	})
	if err != nil {
		return dev, nil, err
	}

	if len(params) == 0 || params[0].Key != "NO_UNITS" {
		return dev, nil, fmt.Errorf("%w: expected NO_UNITS", proto.ErrFieldDecode)
	}
	count, err := parseInt(params[0].Value)
	if err != nil {
		return dev, nil, err
	}
	params = params[1:]

	for i := 0; i < count; i++ {
		unit, rest, err := parseUnit(params)
		if err != nil {
			return dev, nil, err
		}
		dev.Units = append(dev.Units, unit)
		params = rest
	}
	return dev, params, nil
}

// DecodeDevTable parses a DEV_TABLE, DEV_TABLE_PHASE_2 or
// BLACK_LIST_DEV_TABLE message.
func DecodeDevTable(m *Message) (*DevTable, error) {
	index, err := m.GetInt("DEV_INDEX")
	if err != nil {
		return nil, err
	}

	table := &DevTable{Index: index}

	// Skip DEV_INDEX and NO_OF_DEVICES, the devices follow.
	if len(m.Params) < 2 {
		return table, nil
	}
	params := m.Params[2:]

	for len(params) > 0 {
		dev, rest, err := parseDevice(params)
		if err != nil {
			return nil, err
		}
		table.Devices = append(table.Devices, dev)
		params = rest
	}
	return table, nil
}

// DecodeDevInfo parses a DEV_INFO or DEV_INFO_PHASE_2 message.
func DecodeDevInfo(m *Message) (*DevInfo, error) {
	dev, _, err := parseDevice(m.Params)
	if err != nil {
		return nil, err
	}
	return &DevInfo{Device: dev}, nil
}
