// Package order interprets server-reported order status and tracks fetched orders.
// Status is never advanced locally.
package order

import "storefront/internal/domain"

// Step is one stage of the fulfilment timeline
type Step struct {
	Status    domain.OrderStatus `json:"status"`
	Label     string             `json:"label"`
	Completed bool               `json:"completed"`
	Current   bool               `json:"current"`
}

var progression = []struct {
	status domain.OrderStatus
	label  string
}{
	{domain.OrderStatusPending, "Order Placed"},
	{domain.OrderStatusProcessing, "Processing"},
	{domain.OrderStatusShipped, "Shipped"},
	{domain.OrderStatusDelivered, "Delivered"},
}

// Timeline renders the four fulfilment steps for status. Steps up to and including the
// current one are completed. Cancelled and unknown statuses are off the progression:
// nothing is completed and nothing is current.
func Timeline(status domain.OrderStatus) []Step {
	current := -1
	for i, p := range progression {
		if p.status == status {
			current = i
		}
	}
	steps := make([]Step, len(progression))
	for i, p := range progression {
		steps[i] = Step{
			Status:    p.status,
			Label:     p.label,
			Completed: i <= current,
			Current:   i == current,
		}
	}
	return steps
}

// StatusInfo is the display form of a status
type StatusInfo struct {
	Status domain.OrderStatus `json:"status"`
	Label  string             `json:"label"`
	Color  string             `json:"color"`
}

var statusInfo = map[domain.OrderStatus]StatusInfo{
	domain.OrderStatusPending:    {domain.OrderStatusPending, "Pending", "yellow"},
	domain.OrderStatusProcessing: {domain.OrderStatusProcessing, "Processing", "blue"},
	domain.OrderStatusShipped:    {domain.OrderStatusShipped, "Shipped", "purple"},
	domain.OrderStatusDelivered:  {domain.OrderStatusDelivered, "Delivered", "green"},
	domain.OrderStatusCancelled:  {domain.OrderStatusCancelled, "Cancelled", "red"},
}

// Describe maps a status to its label and color; unknown values echo back in gray
func Describe(status domain.OrderStatus) StatusInfo {
	if info, ok := statusInfo[status]; ok {
		return info
	}
	return StatusInfo{Status: status, Label: string(status), Color: "gray"}
}

var paymentLabels = map[domain.PaymentMethod]string{
	domain.PaymentCashOnDelivery: "Cash on Delivery",
	domain.PaymentOnline:         "Online Payment",
	domain.PaymentCard:           "Card Payment",
}

// PaymentMethodLabel returns the display name, or the raw value when unknown
func PaymentMethodLabel(m domain.PaymentMethod) string {
	if l, ok := paymentLabels[m]; ok {
		return l
	}
	return string(m)
}

// IsTerminal reports whether no further status change is expected
func IsTerminal(status domain.OrderStatus) bool {
	return status == domain.OrderStatusDelivered || status == domain.OrderStatusCancelled
}
