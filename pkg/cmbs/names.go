package cmbs

// Transport-control commands, sent and received offset by CommandBase.
const (
	CmdHello           = 1
	CmdHelloReply      = 2
	CmdFlowNOK         = 3
	CmdFlowRestart     = 4
	CmdReset           = 5
	CmdFlashStartReq   = 6
	CmdFlashStartRes   = 7
	CmdFlashStopReq    = 8
	CmdFlashStopRes    = 9
	CmdCapabilities    = 10
	CmdCapabilitiesRpl = 11
	CmdStoreRAMDump    = 12
)

// Events.
const (
	EvUndef              = 0
	EvDSRHSPageStart     = 1
	EvDSRHSPageStartRes  = 2
	EvDSRHSPageStop      = 3
	EvDSRHSPageStopRes   = 4
	EvDSRHSDelete        = 5
	EvDSRHSDeleteRes     = 6
	EvDSRHSRegistered    = 7
	EvDSRHSSubscribe     = 8
	EvDSRHSSubscribeRes  = 9
	EvDSRParamGet        = 13
	EvDSRParamGetRes     = 14
	EvDSRParamSet        = 15
	EvDSRParamSetRes     = 16
	EvDSRFWUpdStart      = 17
	EvDSRSysStart        = 25
	EvDSRSysStartRes     = 26
	EvDSRSysSendRawMsg   = 27
	EvDSRSysStatus       = 29
	EvDSRSysLog          = 30
	EvDSRSysReset        = 31
	EvDSRSysPowerOff     = 32
	EvDSRSysLogStart     = 71
	EvDSRSysLogStop      = 72
	EvDSRParamUpdated    = 74
	EvDSRParamAreaGet    = 76
	EvDSRParamAreaGetRes = 77
	EvDSRParamAreaSet    = 78
	EvDSRParamAreaSetRes = 79
	EvChecksumFailure    = 275
)

// Parameter identifiers.
const (
	ParamRFPI              = 1
	ParamRXTUN             = 4
	ParamMasterPIN         = 5
	ParamAuthPIN           = 6
	ParamCountry           = 7
	ParamTestMode          = 9
	ParamAutoRegister      = 11
	ParamResetAll          = 14
	ParamSubsData          = 16
	ParamDECTType          = 21
	ParamRF19APUSupportFCC = 44
	ParamRF19APUDeviation  = 45
	ParamRF19APUPA2Comp    = 46
	ParamRFFullPower       = 38
	ParamRFLowPower        = 39
	ParamTestFlags         = 90
)

// Parameter area types.
const (
	ParamAreaTypeEEPROM = 0
	ParamAreaTypeRAM    = 1
)

var commandNames = map[uint16]string{
	CmdHello:           "CMD_HELLO",
	CmdHelloReply:      "CMD_HELLO_RPLY",
	CmdFlowNOK:         "CMD_FLOW_NOK",
	CmdFlowRestart:     "CMD_FLOW_RESTART",
	CmdReset:           "CMD_RESET",
	CmdFlashStartReq:   "CMD_FLASH_START_REQ",
	CmdFlashStartRes:   "CMD_FLASH_START_RES",
	CmdFlashStopReq:    "CMD_FLASH_STOP_REQ",
	CmdFlashStopRes:    "CMD_FLASH_STOP_RES",
	CmdCapabilities:    "CMD_CAPABILITIES",
	CmdCapabilitiesRpl: "CMD_CAPABILITIES_RPLY",
	CmdStoreRAMDump:    "CMD_STORE_RAM_DUMP",
}

var eventNames = map[uint16]string{
	EvUndef:              "EV_UNDEF",
	EvDSRHSPageStart:     "EV_DSR_HS_PAGE_START",
	EvDSRHSPageStartRes:  "EV_DSR_HS_PAGE_START_RES",
	EvDSRHSPageStop:      "EV_DSR_HS_PAGE_STOP",
	EvDSRHSPageStopRes:   "EV_DSR_HS_PAGE_STOP_RES",
	EvDSRHSDelete:        "EV_DSR_HS_DELETE",
	EvDSRHSDeleteRes:     "EV_DSR_HS_DELETE_RES",
	EvDSRHSRegistered:    "EV_DSR_HS_REGISTERED",
	EvDSRHSSubscribe:     "EV_DSR_HS_SUBSCRIBE",
	EvDSRHSSubscribeRes:  "EV_DSR_HS_SUBSCRIBE_RES",
	EvDSRParamGet:        "EV_DSR_PARAM_GET",
	EvDSRParamGetRes:     "EV_DSR_PARAM_GET_RES",
	EvDSRParamSet:        "EV_DSR_PARAM_SET",
	EvDSRParamSetRes:     "EV_DSR_PARAM_SET_RES",
	EvDSRSysStart:        "EV_DSR_SYS_START",
	EvDSRSysStartRes:     "EV_DSR_SYS_START_RES",
	EvDSRSysSendRawMsg:   "EV_DSR_SYS_SEND_RAWMSG",
	EvDSRSysStatus:       "EV_DSR_SYS_STATUS",
	EvDSRSysLog:          "EV_DSR_SYS_LOG",
	EvDSRSysReset:        "EV_DSR_SYS_RESET",
	EvDSRSysPowerOff:     "EV_DSR_SYS_POWER_OFF",
	EvDSRSysLogStart:     "EV_DSR_SYS_LOG_START",
	EvDSRSysLogStop:      "EV_DSR_SYS_LOG_STOP",
	EvDSRParamUpdated:    "EV_DSR_PARAM_UPDATED",
	EvDSRParamAreaGet:    "EV_DSR_PARAM_AREA_GET",
	EvDSRParamAreaGetRes: "EV_DSR_PARAM_AREA_GET_RES",
	EvDSRParamAreaSet:    "EV_DSR_PARAM_AREA_SET",
	EvDSRParamAreaSetRes: "EV_DSR_PARAM_AREA_SET_RES",
	EvChecksumFailure:    "EV_CHECKSUM_FAILURE",
}

// MessageName returns the event or command name for a message id, "UNKNOWN"
// if unmapped. Ids above CommandBase resolve in the command table.
func MessageName(id uint16) string {
	if id > CommandBase {
		if name, ok := commandNames[id-CommandBase]; ok {
			return name
		}
		return "UNKNOWN"
	}
	if name, ok := eventNames[id]; ok {
		return name
	}
	return "UNKNOWN"
}
