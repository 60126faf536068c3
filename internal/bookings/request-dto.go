package bookings

type BookingListQuery struct {
	Status string `form:"status" binding:"omitempty,booking_status"`
	Search string `form:"search"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,booking_status"`
}
