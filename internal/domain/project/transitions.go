package project

// transitions is the explicit status graph enforced by UpdateStatus.
// Pending Assignment leaves only through Assign (or a hold); Completed is
// terminal. On Hold re-enters any non-terminal state, covering manual
// admin overrides.
var transitions = map[Status][]Status{
	StatusPendingAssignment: {StatusOnHold},
	StatusInProgress:        {StatusReadyForReview, StatusOnHold},
	StatusReadyForReview:    {StatusCompleted, StatusInProgress, StatusOnHold},
	StatusOnHold:            {StatusPendingAssignment, StatusInProgress, StatusReadyForReview},
	StatusCompleted:         {},
}

// ValidateTransition reports whether from -> to is an allowed status
// change for the generic update operation.
func ValidateTransition(from, to Status) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return ErrInvalidTransition
}
