package valueobjects

import "fmt"

type PaymentMethod string

const (
	PaymentMethodVNPay   PaymentMethod = "VNPAY"
	PaymentMethodZaloPay PaymentMethod = "ZALOPAY"
)

func NewPaymentMethod(method string) (PaymentMethod, error) {
	pm := PaymentMethod(method)
	if !pm.IsValid() {
		return "", fmt.Errorf("invalid payment method: %s", method)
	}
	return pm, nil
}

func (pm PaymentMethod) IsValid() bool {
	switch pm {
	case PaymentMethodVNPay, PaymentMethodZaloPay:
		return true
	default:
		return false
	}
}

func (pm PaymentMethod) String() string {
	return string(pm)
}
