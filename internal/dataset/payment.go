package dataset

// Payment type codes as recorded by the TLC trip data.
const (
	PaymentCredit   int64 = 1
	PaymentCash     int64 = 2
	PaymentNoCharge int64 = 3
	PaymentDispute  int64 = 4
)

// PaymentLabel returns the human-readable name for a payment type code.
// Unknown codes map to "Unknown", matching how the workbook's CASE
// exercises treat them.
func PaymentLabel(code int64) string {
	switch code {
	case PaymentCredit:
		return "Credit Card"
	case PaymentCash:
		return "Cash"
	case PaymentNoCharge:
		return "No Charge"
	case PaymentDispute:
		return "Dispute"
	default:
		return "Unknown"
	}
}
