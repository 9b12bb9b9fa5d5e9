package domain

// CheckoutMetrics is the aggregated snapshot returned by
// GET /v1/metrics/checkout.
type CheckoutMetrics struct {
	PaymentsCreated int64   `json:"payments_created"`
	PixCreated      int64   `json:"pix_created"`
	CardCreated     int64   `json:"card_created"`
	BoletoCreated   int64   `json:"boleto_created"`
	Approved        int64   `json:"approved"`
	Rejected        int64   `json:"rejected"`
	Cancelled       int64   `json:"cancelled"`
	TimedOut        int64   `json:"timed_out"`
	ApprovalRate    float64 `json:"approval_rate"`
	PollTicks       int64   `json:"poll_ticks"`
	PollErrors      int64   `json:"poll_errors"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	Period          string  `json:"period"`
}
