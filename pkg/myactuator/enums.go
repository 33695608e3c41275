package myactuator

// Operating mode reported by the V3 controller
type OperatingMode uint8

const (
	OperatingModeCurrentLoop  OperatingMode = 0x01
	OperatingModeSpeedLoop    OperatingMode = 0x02
	OperatingModePositionLoop OperatingMode = 0x03
)

func (m OperatingMode) String() string {
	switch m {
	case OperatingModeCurrentLoop:
		return "CURRENT LOOP"
	case OperatingModeSpeedLoop:
		return "SPEED LOOP"
	case OperatingModePositionLoop:
		return "POSITION LOOP"
	}
	return "UNKNOWN"
}

// Function index of the function control command (x20), section 2.34.4
// of the V4.2 protocol description
type FunctionIndex uint8

const (
	// Clear the multi turn value, update the zero point and save.
	// Takes effect after a restart.
	FunctionClearMultiTurnValue FunctionIndex = 0x01
	// Enable or disable the CANID filter. Must be disabled when the
	// multi motor commands x280 and x300 are used.
	FunctionCanIdFilterEnable FunctionIndex = 0x02
	// When enabled the motor actively sends status command x9A every
	// 100ms while in an error state
	FunctionErrorStatusTransmission FunctionIndex = 0x03
	// Save the current multi turn value before powering off.
	// Takes effect after a restart.
	FunctionMultiTurnSaveOnPowerOff FunctionIndex = 0x04
	// Set the CANID, saved to ROM, takes effect after a reboot
	FunctionSetCanId FunctionIndex = 0x05
	// Maximum positive angle for position mode, effective immediately
	FunctionSetMaxPositiveAngle FunctionIndex = 0x06
	// Maximum negative angle for position mode, effective immediately
	FunctionSetMaxNegativeAngle FunctionIndex = 0x07
)
