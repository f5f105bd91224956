package transaction

type Status string

const (
	StatusPendingPayment  Status = "pending_payment"
	StatusReceiptUploaded Status = "receipt_uploaded"
	StatusReceiptVerified Status = "receipt_verified"
	StatusReceiptRejected Status = "receipt_rejected"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPendingPayment:  {StatusReceiptUploaded: true, StatusCancelled: true},
	StatusReceiptUploaded: {StatusReceiptVerified: true, StatusReceiptRejected: true, StatusCancelled: true},
	StatusReceiptVerified: {StatusCompleted: true, StatusCancelled: true},
	StatusReceiptRejected: {StatusReceiptUploaded: true, StatusCancelled: true},
	StatusCompleted:       {},
	StatusCancelled:       {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func IsTerminal(s Status) bool {
	return len(validNext[s]) == 0
}
