package systemd

import (
	"fmt"
	"time"
)

// UnitStatus describes the state of a unit as reported by systemd.
type UnitStatus struct {
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	LoadState    string `json:"loadState" yaml:"loadState"`
	ActiveState  string `json:"activeState" yaml:"activeState"`
	SubState     string `json:"subState" yaml:"subState"`
	FragmentPath string `json:"fragmentPath,omitempty" yaml:"fragmentPath,omitempty"`
	PID          int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Since        string `json:"since,omitempty" yaml:"since,omitempty"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Active reports whether the unit is fully started.
func (s *UnitStatus) Active() bool {
	return s.ActiveState == "active"
}

// Found reports whether systemd has a definition for the unit.
func (s *UnitStatus) Found() bool {
	return s.LoadState != "not-found"
}

// applyDetailProperties fills the detail fields of a UnitStatus from a D-Bus
// unit property set. The load/active/sub triple is not touched here.
func applyDetailProperties(status *UnitStatus, props map[string]interface{}) {
	if fragmentPath, ok := props["FragmentPath"].(string); ok {
		status.FragmentPath = fragmentPath
	}

	if mainPID, ok := props["MainPID"].(uint32); ok && mainPID > 0 {
		status.PID = int(mainPID)
	}

	if activeEnterTimestamp, ok := props["ActiveEnterTimestamp"].(uint64); ok && activeEnterTimestamp > 0 {
		// Convert microseconds since epoch to time.
		// #nosec G115 - timestamp is from systemd dbus, value is controlled.
		t := time.Unix(0, int64(activeEnterTimestamp)*1000)
		status.Since = t.Format(time.RFC3339)
	}

	if result, ok := props["Result"].(string); ok && result != "success" {
		status.Error = fmt.Sprintf("Result: %s", result)

		if execMainStatus, ok := props["ExecMainStatus"].(int32); ok && execMainStatus != 0 {
			status.Error += fmt.Sprintf(", Exit Code: %d", execMainStatus)
		}
	}
}
