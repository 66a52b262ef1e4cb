package valueobjects

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusSuccess, PaymentStatusFailed:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) IsPending() bool {
	return s == PaymentStatusPending
}

// IsTerminal reports whether the payment has left PENDING. A payment
// transitions out of PENDING at most once.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

func (s PaymentStatus) String() string {
	return string(s)
}
