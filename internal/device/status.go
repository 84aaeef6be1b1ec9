package device

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AppStatus is the lifecycle state of an application
type AppStatus int

const (
	AppActive   AppStatus = 1
	AppLocked   AppStatus = 2
	AppArchived AppStatus = 3
)

var appStatusNames = map[AppStatus]string{
	AppActive:   "ACTIVE",
	AppLocked:   "LOCKED",
	AppArchived: "ARCHIVED",
}

func (s AppStatus) String() string {
	if name, ok := appStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("AppStatus(%d)", int(s))
}

// Valid reports whether s is a known status
func (s AppStatus) Valid() bool {
	_, ok := appStatusNames[s]
	return ok
}

// MarshalJSON renders the status by name
func (s AppStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseAppStatus converts a case-insensitive name to an AppStatus
func ParseAppStatus(name string) (AppStatus, error) {
	for status, n := range appStatusNames {
		if strings.EqualFold(n, name) {
			return status, nil
		}
	}
	return 0, &ValidationError{Field: "status", Reason: fmt.Sprintf("invalid appstatus: %s", name)}
}

// AppStatusNames lists valid names in numeric order
func AppStatusNames() []string {
	return []string{AppActive.String(), AppLocked.String(), AppArchived.String()}
}

// HardwareStatus is the switch state of a piece of hardware
type HardwareStatus int

const (
	HardwareOpen     HardwareStatus = 1
	HardwareClosed   HardwareStatus = 2
	HardwareDisabled HardwareStatus = 3
)

var hardwareStatusNames = map[HardwareStatus]string{
	HardwareOpen:     "OPEN",
	HardwareClosed:   "CLOSED",
	HardwareDisabled: "DISABLED",
}

func (s HardwareStatus) String() string {
	if name, ok := hardwareStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("HardwareStatus(%d)", int(s))
}

// Valid reports whether s is a known status
func (s HardwareStatus) Valid() bool {
	_, ok := hardwareStatusNames[s]
	return ok
}

// MarshalJSON renders the status by name
func (s HardwareStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseHardwareStatus converts a case-insensitive name to a HardwareStatus
func ParseHardwareStatus(name string) (HardwareStatus, error) {
	for status, n := range hardwareStatusNames {
		if strings.EqualFold(n, name) {
			return status, nil
		}
	}
	return 0, &ValidationError{Field: "status", Reason: fmt.Sprintf("invalid hardwarestatus: %s", name)}
}

// HardwareStatusNames lists valid names in numeric order
func HardwareStatusNames() []string {
	return []string{HardwareOpen.String(), HardwareClosed.String(), HardwareDisabled.String()}
}
