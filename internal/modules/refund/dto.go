package refund

type ApproveRequest struct {
	// Amount overrides the suggested refund, typically after manual review.
	Amount *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Note   string   `json:"note" validate:"max=1000"`
}

type RejectRequest struct {
	Note string `json:"note" validate:"max=1000"`
}

type ListQuery struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
