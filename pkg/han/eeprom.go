package han

import "fmt"

// EEPROMParams maps EEPROM parameter names to their writeable length in
// bytes. A length of zero marks a read-only parameter; the server answers
// FAIL when asked to set one.
var EEPROMParams = map[string]int{
	"RFPI":                    5,
	"RXTUN":                   1,
	"RF_FULL_POWER":           1,
	"PREAM_NORM":              1,
	"RF19APU_SUPPORT_FCC":     1,
	"RF19APU_DEVIATION":       1,
	"RF19APU_PA2_COMP":        1,
	"MAX_USABLE_RSSI":         1,
	"LOWER_RSSI_LIMIT":        1,
	"PHS_SCAN_PARAM":          1,
	"JDECT_LEVEL1_M82":        1,
	"JDECT_LEVEL2_M62":        1,
	"SUBS_DATA":               250,
	"RVREF":                   1,
	"GFSK":                    10,
	"HAN_DECT_SUB_DB_START":   0,
	"HAN_DECT_SUB_DB_END":     0,
	"HAN_ULE_SUB_DB_START":    0,
	"HAN_ULE_SUB_DB_END":      0,
	"HAN_FUN_SUB_DB_START":    0,
	"HAN_FUN_SUB_DB_END":      0,
	"HAN_ULE_NEXT_TPUI":       3,
	"MAX_TRANSFER_SIZE":       0,
	"HAN_FUN_GROUP_LIST_START": 0,
	"HAN_FUN_GROUP_LIST_END":   0,
	"HAN_FUN_GROUP_TABLE_START": 0,
	"HAN_FUN_GROUP_TABLE_END":   0,
	"HAN_ULE_BROADCAST_CONVERSION_TABLE_START": 0,
	"HAN_ULE_BROADCAST_CONVERSION_TABLE_END":   0,
	"ULE_MULTICAST_ENC_PARAMS":                 48,
}

// ValidateEEPROMWrite checks that a parameter is known and writeable at the
// given length before the request goes out.
func ValidateEEPROMWrite(name string, length int) error {
	max, ok := EEPROMParams[name]
	if !ok {
		return fmt.Errorf("unknown EEPROM parameter %q", name)
	}
	if max == 0 {
		return fmt.Errorf("EEPROM parameter %q is read-only", name)
	}
	if length > max {
		return fmt.Errorf("EEPROM parameter %q takes at most %d bytes, got %d", name, max, length)
	}
	return nil
}
