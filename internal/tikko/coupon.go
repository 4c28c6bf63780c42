package tikko

import "context"

type CouponPriceRequest struct {
	EventID         int64  `json:"event_id"`
	TicketPricingID int64  `json:"ticket_pricing_id"`
	Coupon          string `json:"coupon"`
}

// CouponPriceResponse carries prices in cents as returned by the upstream.
type CouponPriceResponse struct {
	OriginalPrice   int `json:"original_price"`
	FinalPrice      int `json:"final_price"`
	DiscountApplied int `json:"discount_applied"`
}

// CouponPrice validates a coupon against an event pricing and returns the
// priced result. Invalid codes come back as an *APIError with the upstream's
// domain code.
func (c *Client) CouponPrice(ctx context.Context, req CouponPriceRequest) (*CouponPriceResponse, error) {
	var out CouponPriceResponse
	if err := c.post(ctx, "/public/coupon/price", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
