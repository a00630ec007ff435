package orders

import "github.com/google/uuid"

// nextStatus is the allowed-transition table: one forward edge per state,
// no skipping. States absent from the map accept no transition.
var nextStatus = map[Status]Status{
	StatusPending:         StatusSampleCollected,
	StatusSampleCollected: StatusSampleReceived,
	StatusSampleReceived:  StatusProcessing,
	StatusProcessing:      StatusCompleted,
	StatusCompleted:       StatusVerified,
	StatusVerified:        StatusReleased,
	StatusReleased:        StatusPrinted,
}

// ValidateTransition checks one requested header transition against the
// edge table. Released to Printed additionally requires the caller to
// have confirmed the print preview.
func ValidateTransition(requestID uuid.UUID, from, to Status, previewConfirmed bool) error {
	next, ok := nextStatus[from]
	if !ok || next != to {
		return &IllegalTransitionError{RequestID: requestID, From: from, To: to}
	}
	if to == StatusPrinted && !previewConfirmed {
		return &IllegalTransitionError{
			RequestID: requestID, From: from, To: to,
			Reason: "print requires preview confirmation",
		}
	}
	return nil
}

// editableStates are the only header states in which line-items may be
// edited or the request deleted.
var editableStates = map[Status]struct{}{
	StatusPending:        {},
	StatusSampleReceived: {},
}

func Editable(s Status) bool {
	_, ok := editableStates[s]
	return ok
}

// settledItemStatuses are the sub-states that no longer block header
// auto-completion.
var settledItemStatuses = map[ItemStatus]struct{}{
	ItemCompleted: {},
	ItemVerified:  {},
	ItemCancelled: {},
}

// AllItemsSettled is the auto-completion post-condition: the header
// becomes Completed exactly when this holds. Pure over item statuses so
// it can be checked after any item mutation.
func AllItemsSettled(statuses []ItemStatus) bool {
	for _, s := range statuses {
		if _, ok := settledItemStatuses[s]; !ok {
			return false
		}
	}
	return true
}

// statusRank orders the main chain for the auto-completion guard: a
// header already at or past Completed is never moved back.
var statusRank = map[Status]int{
	StatusPending:         0,
	StatusSampleCollected: 1,
	StatusSampleReceived:  2,
	StatusProcessing:      3,
	StatusCompleted:       4,
	StatusVerified:        5,
	StatusReleased:        6,
	StatusPrinted:         7,
}

// BeforeCompletion reports whether a header status precedes Completed on
// the main chain. Statuses off the chain report false.
func BeforeCompletion(s Status) bool {
	rank, ok := statusRank[s]
	return ok && rank < statusRank[StatusCompleted]
}
