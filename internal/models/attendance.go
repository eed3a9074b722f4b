package models

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent   AttendanceStatus = "H"
	AttendanceStatusPermitted AttendanceStatus = "I"
	AttendanceStatusSick      AttendanceStatus = "S"
	AttendanceStatusUnexcused AttendanceStatus = "A"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusPermitted, AttendanceStatusSick, AttendanceStatusUnexcused:
		return true
	default:
		return false
	}
}
