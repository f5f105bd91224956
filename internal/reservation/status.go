package reservation

type Status string

const (
	StatusPending        Status = "pending"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
	StatusPaymentPending Status = "payment_pending"
	StatusPaid           Status = "paid"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:        {StatusApproved: true, StatusRejected: true, StatusCancelled: true},
	StatusApproved:       {StatusPaymentPending: true, StatusReadyForPickup: true, StatusCompleted: true, StatusCancelled: true},
	StatusPaymentPending: {StatusPaid: true, StatusCancelled: true},
	StatusPaid:           {StatusReadyForPickup: true, StatusCompleted: true, StatusCancelled: true},
	StatusReadyForPickup: {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted:      {},
	StatusRejected:       {},
	StatusCancelled:      {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func IsTerminal(s Status) bool {
	return len(validNext[s]) == 0
}
