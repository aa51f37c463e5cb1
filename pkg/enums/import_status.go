package enums

import "fmt"

// ImportStatus tracks a product import job.
type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusSucceeded ImportStatus = "succeeded"
	ImportStatusFailed    ImportStatus = "failed"
)

var validImportStatuses = []ImportStatus{
	ImportStatusPending,
	ImportStatusRunning,
	ImportStatusSucceeded,
	ImportStatusFailed,
}

// String implements fmt.Stringer.
func (i ImportStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ImportStatus.
func (i ImportStatus) IsValid() bool {
	for _, candidate := range validImportStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseImportStatus converts the raw string to ImportStatus.
func ParseImportStatus(value string) (ImportStatus, error) {
	for _, candidate := range validImportStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid import status %q", value)
}
