package fees

// Status is the display state of a student's ledger. It is recomputed from
// the sums on every read; nothing persists it.
type Status string

const (
	StatusNoFeesDue     Status = "no_fees_due"
	StatusPaid          Status = "paid"
	StatusPartiallyPaid Status = "partially_paid"
	StatusUnpaid        Status = "unpaid"
)

// Epsilon is the threshold under which a fee total counts as "nothing owed".
const Epsilon = 0.01

// Classify derives the ledger status from the chosen fee total (assigned or
// due, per the caller's view mode) and the amount paid so far.
func Classify(total, paid float64) Status {
	if total <= Epsilon {
		if paid > 0 {
			return StatusPaid
		}
		return StatusNoFeesDue
	}
	if paid >= total {
		return StatusPaid
	}
	if paid > 0 {
		return StatusPartiallyPaid
	}
	return StatusUnpaid
}
