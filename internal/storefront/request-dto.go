package storefront

type OpenEventRequest struct {
	EventID string `json:"event_id" binding:"required,uuid"`
}

type ConfirmCheckoutRequest struct {
	PaymentMethod  string `json:"payment_method" binding:"omitempty,max=32"`
	CardholderName string `json:"cardholder_name" binding:"omitempty,max=120"`
	Email          string `json:"email" binding:"omitempty,email"`
	Name           string `json:"name" binding:"omitempty,max=120"`
}
