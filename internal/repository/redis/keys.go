package redis

import "fmt"

const ns = "tikko:checkout:v1"

func KeySession(id string) string {
	return fmt.Sprintf("%s:session:%s", ns, id)
}

func KeyCouponQuote(eventID, pricingID int64, code string) string {
	return fmt.Sprintf("%s:quote:%d:%d:%s", ns, eventID, pricingID, code)
}

func ChannelCheckoutCompleted() string {
	return ns + ":checkouts:completed"
}
