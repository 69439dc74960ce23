package cmnd

// Service identifiers.
const (
	ServiceDeviceManagement   = 0x0001
	ServiceIdentify           = 0x0004
	ServiceAttributeReporting = 0x0006

	ServiceGeneral              = 0x0000
	ServiceAlert                = 0x0100
	ServiceTamperAlert          = 0x0101
	ServiceDetectorProblemAlert = 0x0102
	ServiceBattery              = 0x0103
	ServiceKeepAlive            = 0x0104
	ServiceArmDisarm            = 0x0105
	ServiceOnOff                = 0x0106
	ServiceFun                  = 0x0108
	ServiceDebug                = 0x0109
	ServiceKeyPress             = 0x010A

	ServiceSystem                   = 0x0201
	ServiceTechnician               = 0x0202
	ServiceParameters               = 0x0203
	ServiceSleep                    = 0x0204
	ServiceManufactureConfiguration = 0x0206
	ServiceULEVoiceCall             = 0x020A
	ServiceProduction               = 0x020B
	ServiceSUOTA                    = 0x020C
	ServiceCertification            = 0x020D
	ServiceRemoteControl            = 0x020E
	ServiceSUOTAProprietary         = 0x020F
	ServiceBroadcasting             = 0x0210
	ServiceUnknown                  = 0xFFFF
)

// General service messages.
const (
	MsgGeneralHelloInd               = 0x05
	MsgGeneralErrorInd               = 0x06
	MsgGeneralLinkCfm                = 0x07
	MsgGeneralGetStatusReq           = 0x08
	MsgGeneralGetStatusRes           = 0x09
	MsgGeneralHelloReq               = 0x0A
	MsgGeneralGetVersionReq          = 0x0B
	MsgGeneralGetVersionRes          = 0x0C
	MsgGeneralTransactionStartReq    = 0x0D
	MsgGeneralTransactionStartCfm    = 0x0E
	MsgGeneralTransactionEndReq      = 0x0F
	MsgGeneralTransactionEndCfm      = 0x10
	MsgGeneralLinkMaintainStartReq   = 0x11
	MsgGeneralLinkMaintainStartCfm   = 0x12
	MsgGeneralLinkMaintainStopReq    = 0x13
	MsgGeneralLinkMaintainStopCfm    = 0x14
	MsgGeneralLinkMaintainStoppedInd = 0x15
)

// System service messages.
const (
	MsgSysBatteryMeasureGetReq = 0x01
	MsgSysBatteryMeasureGetRes = 0x02
	MsgSysRSSIGetReq           = 0x03
	MsgSysRSSIGetRes           = 0x04
	MsgSysBatteryIndEnableReq  = 0x05
	MsgSysBatteryIndDisableReq = 0x06
	MsgSysBatteryIndLowInd     = 0x07
	MsgSysResetReq             = 0x08
	MsgSysBatteryEndLifeInd    = 0x09
)

// Parameters service messages.
const (
	MsgParamGetReq       = 0x01
	MsgParamGetRes       = 0x02
	MsgParamSetReq       = 0x03
	MsgParamSetRes       = 0x04
	MsgParamGetDirectReq = 0x05
	MsgParamGetDirectRes = 0x06
	MsgParamSetDirectReq = 0x07
	MsgParamSetDirectRes = 0x08
)

// Production service messages.
const (
	MsgProdStartReq            = 0x01
	MsgProdEndReq              = 0x02
	MsgProdCfm                 = 0x03
	MsgProdRefClkTuneStartReq  = 0x04
	MsgProdRefClkTuneEndReq    = 0x05
	MsgProdRefClkTuneEndRes    = 0x06
	MsgProdRefClkTuneAdjReq    = 0x07
	MsgProdBGReq               = 0x08
	MsgProdBGRes               = 0x09
	MsgProdATEInitReq          = 0x0A
	MsgProdATEStopReq          = 0x0B
	MsgProdATEContinuousStart  = 0x0C
	MsgProdATERxStartReq       = 0x0D
	MsgProdATERxStartRes       = 0x0E
	MsgProdATETxStartReq       = 0x0F
	MsgProdATEGetBERFERReq     = 0x10
	MsgProdInitEEPROMDefReq    = 0x11
	MsgProdSpecificPresetReq   = 0x12
	MsgProdSleepReq            = 0x13
	MsgProdSetSimpleGPIOLow    = 0x14
	MsgProdSetSimpleGPIOHigh   = 0x15
	MsgProdGetSimpleGPIOState  = 0x16
	MsgProdGetSimpleGPIORes    = 0x17
	MsgProdSetULEGPIOLow       = 0x18
	MsgProdSetULEGPIOHigh      = 0x19
	MsgProdGetULEGPIOState     = 0x1A
	MsgProdGetULEGPIOStateRes  = 0x1B
	MsgProdSetULEGPIODirInput  = 0x1C
	MsgProdResetEEPROM         = 0x1D
	MsgProdFWUpdateReq         = 0x1E
	MsgProdGPIOLoopbackTestReq = 0x1F
	MsgProdATERxLockingStart   = 0x20
)

// Parameter storage address types.
const (
	ParamAddressTypeHANEEPROM  = 0x00
	ParamAddressTypeRAM        = 0x01
	ParamAddressTypeDECTEEPROM = 0x02
	ParamAddressTypeDAIF       = 0x03
)

// EEPROM parameter identifiers.
const (
	ParamEEPROMRXTUN                = 0x00
	ParamEEPROMIPEI                 = 0x01
	ParamEEPROMTBR6                 = 0x02
	ParamEEPROMDECTCarrier          = 0x03
	ParamEEPROMProdEnable           = 0x04
	ParamEEPROMExtSlotType          = 0x05
	ParamEEPROMFriendlyName         = 0x06
	ParamEEPROMSWVersion            = 0x07
	ParamEEPROMHWVersion            = 0x08
	ParamEEPROMManufactureName      = 0x09
	ParamEEPROMInfoTable            = 0x0A
	ParamEEPROMPluginMap            = 0x0B
	ParamEEPROMAuxBGProg            = 0x0C
	ParamEEPROMPorBGCfg             = 0x0D
	ParamEEPROMDECTFullPower        = 0x0E
	ParamEEPROMDECTPA2Comp          = 0x0F
	ParamEEPROMDECTSupportFCC       = 0x10
	ParamEEPROMDECTDeviation        = 0x11
	ParamEEPROMHANRegRetryTimeout   = 0x12
	ParamEEPROMHANLockMaxRetry      = 0x13
	ParamEEPROMHANRegPinCode        = 0x14
	ParamEEPROMHANEnableAutoReg     = 0x15
	ParamEEPROMHANSysOffUsed        = 0x16
	ParamEEPROMHANInfoLocation      = 0x17
	ParamEEPROMHANHBROsc            = 0x18
	ParamEEPROMHANRetransmitUrgent  = 0x19
	ParamEEPROMHANRetransmitNormal  = 0x1A
	ParamEEPROMHANPagingCaps        = 0x1B
	ParamEEPROMHANMinSleepTime      = 0x1C
	ParamEEPROMHANPluginSupported   = 0x1D
	ParamEEPROMDECTEMC              = 0x1E
	ParamEEPROMRSSISettings         = 0x1F
	ParamEEPROMHANGeneralFlags      = 0x20
	ParamEEPROMHANHandledExternally = 0x21
	ParamEEPROMHANActualRespTime    = 0x22
	ParamEEPROMHANDeviceEnable      = 0x23
	ParamEEPROMHANDeviceUID         = 0x24
	ParamEEPROMHANSerialNum         = 0x25
	ParamHFCoreReleaseVer           = 0x26
	ParamProfileReleaseVer          = 0x27
	ParamInterfaceReleaseVer        = 0x28
	ParamEEPROMHANKeepaliveTimeout  = 0x29
	ParamEEPROMRegistrationStatus   = 0x2A
	ParamEEPROMHANHibernationWD     = 0x2B
	ParamEEPROMULEGPIOMappingEvent  = 0x2C
	ParamEEPROMAttrReportingSupport = 0x2D
	ParamEEPROMHWType               = 0x2E
	ParamEEPROMMulticastType        = 0x2F
)

// MsgKey identifies a message within its service, the unit the correlation
// engine dispatches on.
type MsgKey struct {
	Service uint16
	MsgID   uint8
}

var serviceNames = map[uint16]string{
	ServiceGeneral:              "GENERAL",
	ServiceDeviceManagement:     "DEVICE_MANAGEMENT",
	ServiceIdentify:             "IDENTIFY",
	ServiceAttributeReporting:   "ATTRIBUTE_REPORTING",
	ServiceAlert:                "ALERT",
	ServiceTamperAlert:          "TAMPER_ALERT",
	ServiceDetectorProblemAlert: "DETECTOR_PROBLEM_ALERT",
	ServiceBattery:              "BATTERY",
	ServiceKeepAlive:            "KEEP_ALIVE",
	ServiceArmDisarm:            "ARM_DISARM",
	ServiceOnOff:                "ON_OFF",
	ServiceFun:                  "FUN",
	ServiceDebug:                "DEBUG",
	ServiceKeyPress:             "KEY_PRESS",
	ServiceSystem:               "SYSTEM",
	ServiceTechnician:           "TECHNICIAN",
	ServiceParameters:           "PARAMETERS",
	ServiceSleep:                "SLEEP",
	ServiceManufactureConfiguration: "MANUFACTURE_CONFIGURATION",
	ServiceULEVoiceCall:             "ULE_VOICE_CALL",
	ServiceProduction:               "PRODUCTION",
	ServiceSUOTA:                    "SUOTA",
	ServiceCertification:            "CERTIFICATION",
	ServiceRemoteControl:            "REMOTE_CONTROL",
	ServiceSUOTAProprietary:         "SUOTA_PROPRIETARY",
	ServiceBroadcasting:             "BROADCASTING",
}

var messageNames = map[uint16]map[uint8]string{
	ServiceGeneral: {
		MsgGeneralHelloInd:               "HELLO_IND",
		MsgGeneralErrorInd:               "ERROR_IND",
		MsgGeneralLinkCfm:                "LINK_CFM",
		MsgGeneralGetStatusReq:           "GET_STATUS_REQ",
		MsgGeneralGetStatusRes:           "GET_STATUS_RES",
		MsgGeneralHelloReq:               "HELLO_REQ",
		MsgGeneralGetVersionReq:          "GET_VERSION_REQ",
		MsgGeneralGetVersionRes:          "GET_VERSION_RES",
		MsgGeneralTransactionStartReq:    "TRANSACTION_START_REQ",
		MsgGeneralTransactionStartCfm:    "TRANSACTION_START_CFM",
		MsgGeneralTransactionEndReq:      "TRANSACTION_END_REQ",
		MsgGeneralTransactionEndCfm:      "TRANSACTION_END_CFM",
		MsgGeneralLinkMaintainStartReq:   "LINK_MAINTAIN_START_REQ",
		MsgGeneralLinkMaintainStartCfm:   "LINK_MAINTAIN_START_CFM",
		MsgGeneralLinkMaintainStopReq:    "LINK_MAINTAIN_STOP_REQ",
		MsgGeneralLinkMaintainStopCfm:    "LINK_MAINTAIN_STOP_CFM",
		MsgGeneralLinkMaintainStoppedInd: "LINK_MAINTAIN_STOPPED_IND",
	},
	ServiceSystem: {
		MsgSysBatteryMeasureGetReq: "BATTERY_MEASURE_GET_REQ",
		MsgSysBatteryMeasureGetRes: "BATTERY_MEASURE_GET_RES",
		MsgSysRSSIGetReq:           "RSSI_GET_REQ",
		MsgSysRSSIGetRes:           "RSSI_GET_RES",
		MsgSysBatteryIndEnableReq:  "BATTERY_IND_ENABLE_REQ",
		MsgSysBatteryIndDisableReq: "BATTERY_IND_DISABLE_REQ",
		MsgSysBatteryIndLowInd:     "BATTERY_IND_LOW_IND",
		MsgSysResetReq:             "RESET_REQ",
		MsgSysBatteryEndLifeInd:    "BATTERY_END_LIFE_IND",
	},
	ServiceParameters: {
		MsgParamGetReq:       "GET_REQ",
		MsgParamGetRes:       "GET_RES",
		MsgParamSetReq:       "SET_REQ",
		MsgParamSetRes:       "SET_RES",
		MsgParamGetDirectReq: "GET_DIRECT_REQ",
		MsgParamGetDirectRes: "GET_DIRECT_RES",
		MsgParamSetDirectReq: "SET_DIRECT_REQ",
		MsgParamSetDirectRes: "SET_DIRECT_RES",
	},
	ServiceProduction: {
		MsgProdStartReq:          "START_REQ",
		MsgProdEndReq:            "END_REQ",
		MsgProdCfm:               "CFM",
		MsgProdRefClkTuneStartReq: "REF_CLK_TUNE_START_REQ",
		MsgProdRefClkTuneEndReq:   "REF_CLK_TUNE_END_REQ",
		MsgProdRefClkTuneEndRes:   "REF_CLK_TUNE_END_RES",
		MsgProdRefClkTuneAdjReq:   "REF_CLK_TUNE_ADJ_REQ",
		MsgProdBGReq:              "BG_REQ",
		MsgProdBGRes:              "BG_RES",
		MsgProdATEInitReq:         "ATE_INIT_REQ",
		MsgProdATEStopReq:         "ATE_STOP_REQ",
		MsgProdSpecificPresetReq:  "SPECIFIC_PRESET_REQ",
		MsgProdSleepReq:           "SLEEP_REQ",
		MsgProdResetEEPROM:        "RESET_EEPROM",
		MsgProdFWUpdateReq:        "FW_UPDATE_REQ",
	},
}

// ServiceName returns the service name, "UNKNOWN" if unmapped. Lookup
// failures are diagnostic only, never fatal.
func ServiceName(id uint16) string {
	if name, ok := serviceNames[id]; ok {
		return name
	}
	return "UNKNOWN"
}

// MessageName returns the message name within a service, "UNKNOWN" if
// unmapped.
func MessageName(service uint16, msgID uint8) string {
	if name, ok := messageNames[service][msgID]; ok {
		return name
	}
	return "UNKNOWN"
}
