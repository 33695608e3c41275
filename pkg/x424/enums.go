package x424

// CommunicationMode selects how the motor reports its state, either by
// sending status frames on its own or by answering queries
type CommunicationMode uint8

const (
	CommunicationModeAutoReport     CommunicationMode = 0x01
	CommunicationModeQuestionAnswer CommunicationMode = 0x02
)

func (m CommunicationMode) String() string {
	switch m {
	case CommunicationModeAutoReport:
		return "AUTO REPORT"
	case CommunicationModeQuestionAnswer:
		return "QUESTION ANSWER"
	}
	return "UNKNOWN"
}

// MotorError is the error code carried in the low bits of the first
// byte of every reply frame
type MotorError uint8

const (
	ErrorNone                MotorError = 0
	ErrorMotorOverheating    MotorError = 1
	ErrorMotorOvercurrent    MotorError = 2
	ErrorVoltageTooLow       MotorError = 3
	ErrorEncoderError        MotorError = 4
	ErrorBrakeVoltageTooHigh MotorError = 6
	ErrorDrvDriveError       MotorError = 7
)

var motorErrorDescription = map[MotorError]string{
	ErrorNone:                "NO ERROR",
	ErrorMotorOverheating:    "MOTOR OVERHEATING",
	ErrorMotorOvercurrent:    "MOTOR OVERCURRENT",
	ErrorVoltageTooLow:       "MOTOR VOLTAGE TOO LOW",
	ErrorEncoderError:        "MOTOR ENCODER ERROR",
	ErrorBrakeVoltageTooHigh: "MOTOR BRAKE VOLTAGE TOO HIGH",
	ErrorDrvDriveError:       "DRV DRIVE ERROR",
}

func (e MotorError) String() string {
	if desc, ok := motorErrorDescription[e]; ok {
		return desc
	}
	return "UNKNOWN"
}
