package domain

type CheckoutStatus string

const (
	CheckoutStatusReview    CheckoutStatus = "REVIEW"
	CheckoutStatusConfirmed CheckoutStatus = "CONFIRMED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusConfirmed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
