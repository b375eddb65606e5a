package models

// Customer is the contact information collected on the checkout form.
type Customer struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,min=10"`
}

// CheckoutItem is one line as sent to the order service.
type CheckoutItem struct {
	ID       ProductID `json:"id"`
	Name     string    `json:"name"`
	Price    int64     `json:"price"`
	Quantity int       `json:"quantity"`
	Variant  string    `json:"variant,omitempty"`
}

// CheckoutRequest is built fresh for every checkout attempt.
type CheckoutRequest struct {
	CustomerName   string         `json:"customerName"`
	CustomerEmail  string         `json:"customerEmail"`
	CustomerPhone  string         `json:"customerPhone"`
	Items          []CheckoutItem `json:"items"`
	TotalAmount    int64          `json:"totalAmount"`
	DiscountCode   string         `json:"discountCode,omitempty"`
	DiscountAmount int64          `json:"discountAmount,omitempty"`
}

// NewCheckoutRequest builds a request from cart lines. The discount, when
// present, is subtracted from the subtotal and the total never goes below 0.
func NewCheckoutRequest(lines []CartLine, customer Customer, discount *AppliedDiscount) *CheckoutRequest {
	req := &CheckoutRequest{
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		Items:         make([]CheckoutItem, 0, len(lines)),
	}

	var subtotal int64
	for _, line := range lines {
		req.Items = append(req.Items, CheckoutItem{
			ID:       line.ID,
			Name:     line.Name,
			Price:    line.UnitPrice,
			Quantity: line.Quantity,
			Variant:  line.Variant,
		})
		subtotal += line.LineTotal()
	}

	req.TotalAmount = subtotal
	if discount != nil {
		req.DiscountCode = discount.Code
		req.DiscountAmount = discount.Amount
		req.TotalAmount -= discount.Amount
		if req.TotalAmount < 0 {
			req.TotalAmount = 0
		}
	}
	return req
}

// PaymentSessionRequest asks a payment provider for a hosted checkout page.
type PaymentSessionRequest struct {
	OrderNumber   string
	SuccessURL    string
	CancelURL     string
	Amount        int64
	Currency      string
	CustomerEmail string
	CustomerPhone string
	Items         []CheckoutItem
}

// CheckoutResult is returned once the shopper can be sent to the payment page.
type CheckoutResult struct {
	OrderNumber string `json:"order_number"`
	RedirectURL string `json:"redirect_url"`
}
