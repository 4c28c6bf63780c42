package checkout

import (
	"fmt"

	"github.com/tikko-events/checkout-go/internal/domain"
)

// Event is a state-machine input. Transitions are resolved by Next so the
// step ordering lives in exactly one place.
type Event int

const (
	// EventContinue moves forward from any pre-confirmation step. Guards
	// (terms accepted, valid user info, method selected) are checked by the
	// service before the event is dispatched.
	EventContinue Event = iota
	// EventBack moves one step backwards, with the free-ticket override:
	// backing out of Confirmation on a free session lands on Coupon because
	// the payment steps were never shown.
	EventBack
	// EventRegistered fires when registration completed synchronously.
	EventRegistered
	// EventPixIssued fires when registration returned a pending PIX charge.
	EventPixIssued
	// EventPixConfirmed fires when a pending PIX charge was paid.
	EventPixConfirmed
)

func (e Event) String() string {
	switch e {
	case EventContinue:
		return "continue"
	case EventBack:
		return "back"
	case EventRegistered:
		return "registered"
	case EventPixIssued:
		return "pix_issued"
	case EventPixConfirmed:
		return "pix_confirmed"
	default:
		return "unknown"
	}
}

// TransitionError reports an event that is not legal in the current step.
type TransitionError struct {
	Step  domain.Step
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q not allowed in step %q", e.Event, e.Step)
}

// Next resolves the step that follows ev from step. The free flag must be the
// session's IsFree value at dispatch time: it decides whether the payment
// steps exist at all.
func Next(step domain.Step, ev Event, free bool) (domain.Step, error) {
	switch ev {
	case EventContinue:
		switch step {
		case domain.StepTerms:
			return domain.StepUserInfo, nil
		case domain.StepUserInfo:
			return domain.StepCoupon, nil
		case domain.StepCoupon:
			if free {
				return domain.StepConfirmation, nil
			}
			return domain.StepPaymentMethod, nil
		case domain.StepPaymentMethod:
			if free {
				return domain.StepConfirmation, nil
			}
			return domain.StepPaymentInfo, nil
		case domain.StepPaymentInfo:
			return domain.StepConfirmation, nil
		}
	case EventBack:
		switch step {
		case domain.StepTerms:
			// Bounded below: backing out of the first step is a no-op.
			return domain.StepTerms, nil
		case domain.StepUserInfo:
			return domain.StepTerms, nil
		case domain.StepCoupon:
			return domain.StepUserInfo, nil
		case domain.StepPaymentMethod:
			return domain.StepCoupon, nil
		case domain.StepPaymentInfo:
			return domain.StepPaymentMethod, nil
		case domain.StepConfirmation:
			if free {
				return domain.StepCoupon, nil
			}
			return domain.StepPaymentInfo, nil
		}
	case EventRegistered:
		if step == domain.StepConfirmation {
			return domain.StepSuccess, nil
		}
	case EventPixIssued:
		if step == domain.StepConfirmation {
			return domain.StepPixPending, nil
		}
	case EventPixConfirmed:
		if step == domain.StepPixPending {
			return domain.StepSuccess, nil
		}
	}

	return 0, &TransitionError{Step: step, Event: ev}
}
