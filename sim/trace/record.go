// Package trace provides customer event-trace recording for the drive-thru simulator.
// This package has no dependencies on sim/ or sim/restaurant/; it stores pure data types.
package trace

import "fmt"

// Kind identifies what happened to a customer.
type Kind string

const (
	KindBalk          Kind = "balk"           // line too long at arrival; QueueLen = order wait line
	KindEnter         Kind = "enter"          // joined the line; QueueLen = order wait line
	KindOrder         Kind = "order"          // admitted to an order station; Duration = order time
	KindPrep          Kind = "prep"           // food prep started; Duration = prep time
	KindPayBlocked    Kind = "pay_blocked"    // holding the order station until the pay line shrinks
	KindOrderRelease  Kind = "order_release"  // left the order station; QueueLen = pay wait line
	KindPay           Kind = "pay"            // admitted to a pay station; Duration = pay time
	KindPickupBlocked Kind = "pickup_blocked" // holding the pay station until the pickup line shrinks
	KindPayRelease    Kind = "pay_release"    // left the pay station; QueueLen = pickup wait line
	KindPickup        Kind = "pickup"         // admitted to a pickup station; Duration = pickup time
	KindExit          Kind = "exit"           // left the drive-thru; Duration = time in system
)

// Station names used in records.
const (
	StationOrder  = "order"
	StationPay    = "pay"
	StationPickup = "pickup"
)

// Record captures a single customer event.
type Record struct {
	RunID    string
	Time     float64
	Customer uint64
	Kind     Kind
	Station  string  // station whose wait line QueueLen describes
	QueueLen int     // wait-line length observed when the event happened
	Duration float64 // sampled stage duration, or time in system for KindExit
}

// Message renders the record as a human-readable event stamp.
func (r Record) Message() string {
	switch r.Kind {
	case KindBalk:
		return fmt.Sprintf("Line too long. Customer %d left.", r.Customer)
	case KindEnter:
		return fmt.Sprintf("Customer %d enters the line. %d customers in order line.", r.Customer, r.QueueLen)
	case KindOrder:
		return fmt.Sprintf("Customer %d is ordering.", r.Customer)
	case KindPrep:
		return fmt.Sprintf("Customer %d food prep started (%.4f).", r.Customer, r.Duration)
	case KindPayBlocked:
		return "pay station full... waiting..."
	case KindOrderRelease:
		return fmt.Sprintf("Customer %d leaves the order station. %d customers in pay line.", r.Customer, r.QueueLen)
	case KindPay:
		return fmt.Sprintf("Customer %d is paying. %d customers in pay line.", r.Customer, r.QueueLen)
	case KindPickupBlocked:
		return "pickup station full... waiting..."
	case KindPayRelease:
		return fmt.Sprintf("Customer %d leaves the pay station. %d customers in pickup line.", r.Customer, r.QueueLen)
	case KindPickup:
		return fmt.Sprintf("Customer %d is picking up. %d customers in pickup line.", r.Customer, r.QueueLen)
	case KindExit:
		return fmt.Sprintf("Customer %d exits the line.", r.Customer)
	default:
		return fmt.Sprintf("Customer %d: %s", r.Customer, r.Kind)
	}
}

// String formats the record as "<time> : <message>".
func (r Record) String() string {
	return fmt.Sprintf("%v : %s", r.Time, r.Message())
}
