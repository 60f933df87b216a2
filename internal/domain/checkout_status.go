package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle        CheckoutStatus = "IDLE"
	CheckoutStatusValidating  CheckoutStatus = "VALIDATING"
	CheckoutStatusBuilding    CheckoutStatus = "BUILDING"
	CheckoutStatusDispatching CheckoutStatus = "DISPATCHING"
	CheckoutStatusCommitted   CheckoutStatus = "COMMITTED"
	CheckoutStatusFailed      CheckoutStatus = "FAILED"
)

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:        {CheckoutStatusValidating},
	CheckoutStatusValidating:  {CheckoutStatusBuilding, CheckoutStatusIdle},
	CheckoutStatusBuilding:    {CheckoutStatusDispatching},
	CheckoutStatusDispatching: {CheckoutStatusCommitted, CheckoutStatusFailed},
	CheckoutStatusCommitted:   {CheckoutStatusValidating},
	CheckoutStatusFailed:      {CheckoutStatusValidating},
}

// IsTerminal reports whether the attempt has finished.
func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCommitted || s == CheckoutStatusFailed
}

func (s CheckoutStatus) CanTransitionTo(next CheckoutStatus) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
