package odrive

// Axis state machine states as reported and requested over CAN
type AxisState uint8

const (
	AxisStateUndefined                      AxisState = 0
	AxisStateIdle                           AxisState = 1
	AxisStateStartupSequence                AxisState = 2
	AxisStateFullCalibrationSequence        AxisState = 3
	AxisStateMotorCalibration               AxisState = 4
	AxisStateEncoderIndexSearch             AxisState = 6
	AxisStateEncoderOffsetCalibration       AxisState = 7
	AxisStateClosedLoopControl              AxisState = 8
	AxisStateLockinSpin                     AxisState = 9
	AxisStateEncoderDirFind                 AxisState = 10
	AxisStateHoming                         AxisState = 11
	AxisStateEncoderHallPolarityCalibration AxisState = 12
	AxisStateEncoderHallPhaseCalibration    AxisState = 13
	AxisStateAnticoggingCalibration         AxisState = 14
)

var axisStateDescription = map[AxisState]string{
	AxisStateUndefined:                      "UNDEFINED",
	AxisStateIdle:                           "IDLE",
	AxisStateStartupSequence:                "STARTUP SEQUENCE",
	AxisStateFullCalibrationSequence:        "FULL CALIBRATION SEQUENCE",
	AxisStateMotorCalibration:               "MOTOR CALIBRATION",
	AxisStateEncoderIndexSearch:             "ENCODER INDEX SEARCH",
	AxisStateEncoderOffsetCalibration:       "ENCODER OFFSET CALIBRATION",
	AxisStateClosedLoopControl:              "CLOSED LOOP CONTROL",
	AxisStateLockinSpin:                     "LOCKIN SPIN",
	AxisStateEncoderDirFind:                 "ENCODER DIR FIND",
	AxisStateHoming:                         "HOMING",
	AxisStateEncoderHallPolarityCalibration: "ENCODER HALL POLARITY CALIBRATION",
	AxisStateEncoderHallPhaseCalibration:    "ENCODER HALL PHASE CALIBRATION",
	AxisStateAnticoggingCalibration:         "ANTICOGGING CALIBRATION",
}

func (s AxisState) String() string {
	if desc, ok := axisStateDescription[s]; ok {
		return desc
	}
	return "UNDEFINED"
}

// Closed loop controller mode
type ControlMode uint32

const (
	ControlModeVoltage  ControlMode = 0
	ControlModeTorque   ControlMode = 1
	ControlModeVelocity ControlMode = 2
	ControlModePosition ControlMode = 3
)

// Input filtering applied ahead of the controller
type InputMode uint32

const (
	InputModeInactive    InputMode = 0
	InputModePassthrough InputMode = 1
	InputModeVelRamp     InputMode = 2
	InputModePosFilter   InputMode = 3
	InputModeTrapTraj    InputMode = 5
	InputModeTorqueRamp  InputMode = 6
	InputModeMirror      InputMode = 7
	InputModeTuning      InputMode = 8
)

// Outcome of the last requested procedure
type ProcedureResult uint8

const (
	ProcedureResultSuccess                   ProcedureResult = 0
	ProcedureResultBusy                      ProcedureResult = 1
	ProcedureResultCancelled                 ProcedureResult = 2
	ProcedureResultDisarmed                  ProcedureResult = 3
	ProcedureResultNoResponse                ProcedureResult = 4
	ProcedureResultPolePairCprMismatch       ProcedureResult = 5
	ProcedureResultPhaseResistanceOutOfRange ProcedureResult = 6
	ProcedureResultPhaseInductanceOutOfRange ProcedureResult = 7
	ProcedureResultUnbalancedPhases          ProcedureResult = 8
	ProcedureResultInvalidMotorType          ProcedureResult = 9
	ProcedureResultIllegalHallState          ProcedureResult = 10
	ProcedureResultTimeout                   ProcedureResult = 11
	ProcedureResultHomingWithoutEndstop      ProcedureResult = 12
	ProcedureResultInvalidState              ProcedureResult = 13
	ProcedureResultNotCalibrated             ProcedureResult = 14
	ProcedureResultNotConverging             ProcedureResult = 15
)

// DriveError is the bitmask reported in heartbeat and error frames
type DriveError uint32

const (
	ErrorInitializing           DriveError = 0x1
	ErrorSystemLevel            DriveError = 0x2
	ErrorTimingError            DriveError = 0x4
	ErrorMissingEstimate        DriveError = 0x8
	ErrorBadConfig              DriveError = 0x10
	ErrorDrvFault               DriveError = 0x20
	ErrorMissingInput           DriveError = 0x40
	ErrorDcBusOverVoltage       DriveError = 0x100
	ErrorDcBusUnderVoltage      DriveError = 0x200
	ErrorDcBusOverCurrent       DriveError = 0x400
	ErrorDcBusOverRegenCurrent  DriveError = 0x800
	ErrorCurrentLimitViolation  DriveError = 0x1000
	ErrorMotorOverTemp          DriveError = 0x2000
	ErrorInverterOverTemp       DriveError = 0x4000
	ErrorVelocityLimitViolation DriveError = 0x8000
	ErrorPositionLimitViolation DriveError = 0x10000
	ErrorWatchdogTimerExpired   DriveError = 0x100000
	ErrorEstopRequested         DriveError = 0x200000
	ErrorSpinoutDetected        DriveError = 0x400000
	ErrorBrakeResistorDisarmed  DriveError = 0x800000
	ErrorThermistorDisconnected DriveError = 0x1000000
	ErrorCalibrationError       DriveError = 0x10000000
)

var allDriveErrors = []DriveError{
	ErrorInitializing,
	ErrorSystemLevel,
	ErrorTimingError,
	ErrorMissingEstimate,
	ErrorBadConfig,
	ErrorDrvFault,
	ErrorMissingInput,
	ErrorDcBusOverVoltage,
	ErrorDcBusUnderVoltage,
	ErrorDcBusOverCurrent,
	ErrorDcBusOverRegenCurrent,
	ErrorCurrentLimitViolation,
	ErrorMotorOverTemp,
	ErrorInverterOverTemp,
	ErrorVelocityLimitViolation,
	ErrorPositionLimitViolation,
	ErrorWatchdogTimerExpired,
	ErrorEstopRequested,
	ErrorSpinoutDetected,
	ErrorBrakeResistorDisarmed,
	ErrorThermistorDisconnected,
	ErrorCalibrationError,
}

// List decomposes the bitmask into its individual error flags
func (e DriveError) List() []DriveError {
	errors := []DriveError{}
	for _, flag := range allDriveErrors {
		if e&flag != 0 {
			errors = append(errors, flag)
		}
	}
	return errors
}
