// Package errcode maps upstream error codes to user-facing messages.
//
// Lookup order: exact code match, then a generic message keyed by HTTP status,
// then a catch-all. Unmapped codes therefore never leak raw identifiers to
// clients.
package errcode

var byCode = map[string]string{
	"INVALID_COUPON":        "This coupon code is not valid.",
	"COUPON_EXPIRED":        "This coupon has expired.",
	"COUPON_LIMIT_REACHED":  "This coupon has reached its usage limit.",
	"EVENT_SOLD_OUT":        "This event is sold out.",
	"EVENT_NOT_FOUND":       "Event not found.",
	"TICKET_PRICING_CLOSED": "Sales for this ticket type are closed.",
	"USER_ALREADY_JOINED":   "You already have a ticket for this event.",
	"PAYMENT_REJECTED":      "The payment was declined. Check your card details and try again.",
	"INVALID_CARD_TOKEN":    "The card details could not be verified. Please re-enter them.",
	"INVALID_CPF":           "The CPF number provided is not valid.",
	"UNAUTHORIZED":          "Your session has expired. Please sign in again.",
	"NETWORK_ERROR":         "Could not reach the ticketing service. Check your connection and try again.",
}

var byStatus = map[int]string{
	0:   "Could not reach the ticketing service. Check your connection and try again.",
	400: "The request could not be processed. Please review your information.",
	401: "Your session has expired. Please sign in again.",
	403: "You do not have permission to perform this action.",
	404: "The requested resource was not found.",
	409: "This request conflicts with an existing order.",
	422: "Some of the provided information is invalid.",
	429: "Too many attempts. Please wait a moment and try again.",
}

const fallback = "Something went wrong. Please try again."

// Message resolves the user-facing text for an upstream error.
func Message(code string, status int) string {
	if msg, ok := byCode[code]; ok {
		return msg
	}
	if status >= 500 {
		return "The ticketing service is temporarily unavailable. Please try again shortly."
	}
	if msg, ok := byStatus[status]; ok {
		return msg
	}
	return fallback
}
