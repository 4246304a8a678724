package domain

import "strings"

// Status is the final outcome of one source file in a run.
type Status string

const (
	StatusSuccessful Status = "Successful"
	StatusSkipped    Status = "Skipped"
	StatusFailed     Status = "Failed"
	StatusNotStarted Status = "Not started"
)

var Statuses = []Status{StatusSuccessful, StatusSkipped, StatusFailed, StatusNotStarted}

func ParseStatus(value string) (Status, bool) {
	for _, s := range Statuses {
		if strings.EqualFold(string(s), strings.TrimSpace(value)) {
			return s, true
		}
	}
	return "", false
}

type TransferMode string

const (
	ModeCopy TransferMode = "copy"
	ModeMove TransferMode = "move"
)
