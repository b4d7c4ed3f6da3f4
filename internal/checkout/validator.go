// Package checkout validates a cart and delivery details and turns them into an order.
package checkout

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

// Form holds the delivery details entered at checkout
type Form struct {
	DeliveryAddress string `json:"deliveryAddress" validate:"required,min=10,max=500"`
	ContactNumber   string `json:"contactNumber" validate:"required,phone"`
	OrderNotes      string `json:"orderNotes" validate:"max=500"`
}

// FieldErrors maps a form field (by its JSON name) to a readable message
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

var messages = map[string]map[string]string{
	"deliveryAddress": {
		"required": "Delivery address is required",
		"min":      "Delivery address must be at least 10 characters long",
		"max":      "Delivery address cannot exceed 500 characters",
	},
	"contactNumber": {
		"required": "Contact number is required",
		"phone":    "Please provide a valid contact number",
	},
	"orderNotes": {
		"max": "Order notes cannot exceed 500 characters",
	},
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return domain.IsContactNumber(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Normalize trims the free-text fields the way they are submitted
func (f Form) Normalize() Form {
	f.DeliveryAddress = strings.TrimSpace(f.DeliveryAddress)
	f.ContactNumber = strings.TrimSpace(f.ContactNumber)
	f.OrderNotes = strings.TrimSpace(f.OrderNotes)
	return f
}

// ValidateForm checks the delivery details. Lengths are counted in characters, not bytes.
func ValidateForm(f Form) error {
	err := validate.Struct(f.Normalize())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out[fe.Field()] = msg
	}
	return out
}

// Validate runs the cart rules and then the form rules; the first failing group is
// returned. On success it builds the order-creation payload.
func Validate(items []domain.CartItem, f Form) (domain.CreateOrderRequest, error) {
	if err := cart.ValidateItems(items); err != nil {
		return domain.CreateOrderRequest{}, err
	}
	if err := ValidateForm(f); err != nil {
		return domain.CreateOrderRequest{}, err
	}

	f = f.Normalize()
	req := domain.CreateOrderRequest{
		OrderItems:      make([]domain.OrderItemRequest, 0, len(items)),
		DeliveryAddress: f.DeliveryAddress,
		ContactNumber:   f.ContactNumber,
		OrderNotes:      f.OrderNotes,
	}
	for _, it := range items {
		req.OrderItems = append(req.OrderItems, domain.OrderItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return req, nil
}
