package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tikko-events/checkout-go/internal/checkout"
	"github.com/tikko-events/checkout-go/internal/domain"
	"github.com/tikko-events/checkout-go/internal/errcode"
	redisrepo "github.com/tikko-events/checkout-go/internal/repository/redis"
	"github.com/tikko-events/checkout-go/internal/tikko"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svc *checkout.Service,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	sessions := r.Group("/checkout/sessions")
	{
		sessions.POST("", handleCreateSession(svc))
		sessions.GET("/:id", handleGetSession(svc))
		sessions.DELETE("/:id", handleCloseSession(svc))

		sessions.POST("/:id/terms", handleAcceptTerms(svc))
		sessions.POST("/:id/user-info", handleSubmitUserInfo(svc))
		sessions.POST("/:id/coupon", handleApplyCoupon(svc))
		sessions.DELETE("/:id/coupon", handleRemoveCoupon(svc))
		sessions.POST("/:id/payment-method", handleSelectPaymentMethod(svc))
		sessions.POST("/:id/payment-info", handleSubmitPaymentInfo(svc))
		sessions.POST("/:id/continue", handleContinue(svc))
		sessions.POST("/:id/back", handleBack(svc))

		sessions.POST("/:id/submit", handleSubmit(svc, idem))
		sessions.GET("/:id/payment", handlePaymentStatus(svc))
	}

	r.GET("/orders/:id", handleGetReceipt(svc))

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Open a checkout session
// @Param    req body  CreateSessionRequest true "payload"
// @Success  201 {object} SessionResponse
// @Failure  400 {object} ErrorResponse
// @Router   /checkout/sessions [post]
func handleCreateSession(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sess, err := svc.Create(c.Request.Context(), checkout.CreateParams{
			EventID:         req.EventID,
			TicketPricingID: req.TicketPricingID,
			PriceCents:      req.PriceCents,
			CouponCode:      req.Coupon,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, toSessionResponse(sess))
	}
}

// @Summary  Get session state
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200 {object} SessionResponse
// @Failure  404 {object} ErrorResponse
// @Router   /checkout/sessions/{id} [get]
func handleGetSession(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		sess, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toSessionResponse(sess))
	}
}

// @Summary  Close session
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  204
// @Router   /checkout/sessions/{id} [delete]
func handleCloseSession(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		if err := svc.Close(c.Request.Context(), id); err != nil {
			respondErr(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// @Summary  Accept terms
// @Param    id  path  string  true  "Session ID (uuid)"
// @Param    req body  AcceptTermsRequest true "payload"
// @Success  200 {object} SessionResponse
// @Failure  400 {object} ErrorResponse
// @Router   /checkout/sessions/{id}/terms [post]
func handleAcceptTerms(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req AcceptTermsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sess, err := svc.AcceptTerms(c.Request.Context(), id, req.Accepted)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toSessionResponse(sess))
	}
}

// @Summary  Submit buyer info
// @Param    id  path  string  true  "Session ID (uuid)"
// @Param    req body  UserInfoRequest true "payload"
// @Success  200 {object} SessionResponse
// @Failure  422 {object} ErrorResponse "field validation errors"
// @Router   /checkout/sessions/{id}/user-info [post]
func handleSubmitUserInfo(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req UserInfoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sess, err := svc.SubmitUserInfo(
			c.Request.Context(),
			id,
			req.toDomain(),
			domain.IdentificationType(strings.ToLower(req.IdentificationType)),
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toSessionResponse(sess))
	}
}

// @Summary  Apply coupon
// @Param    id  path  string  true  "Session ID (uuid)"
// @Param    req body  ApplyCouponRequest true "payload"
// @Success  200 {object} SessionResponse
// @Failure  400 {object} ErrorResponse "invalid code"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /checkout/sessions/{id}/coupon [post]
func handleApplyCoupon(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req ApplyCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		rlKey := "ip:" + c.ClientIP()

		sess, err := svc.ApplyCoupon(c.Request.Context(), id, req.Code, rlKey)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toSessionResponse(sess))
	}
}

// @Summary  Remove coupon
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200 {object} SessionResponse
// @Router   /checkout/sessions/{id}/coupon [delete]
func handleRemoveCoupon(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		sess, err := svc.RemoveCoupon(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toSessionResponse(sess))
	}
}

// @Summary  Select payment method
// @Param    id  path  string  true  "Session ID (uuid)"
// @Param    req body  SelectPaymentMethodRequest true "payload"
// @Success  200 {object} SessionResponse
// @Router   /checkout/sessions/{id}/payment-method [post]
func handleSelectPaymentMethod(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req SelectPaymentMethodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sess, err := svc.SelectPaymentMethod(
			c.Request.Context(),
			id,
			domain.PaymentMethod(req.Method),
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toSessionResponse(sess))
	}
}

// @Summary  Submit tokenized payment data
// @Param    id  path  string  true  "Session ID (uuid)"
// @Param    req body  PaymentInfoRequest true "payload"
// @Success  200 {object} SessionResponse
// @Router   /checkout/sessions/{id}/payment-info [post]
func handleSubmitPaymentInfo(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req PaymentInfoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sess, err := svc.SubmitPaymentInfo(c.Request.Context(), id, req.toDomain())
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toSessionResponse(sess))
	}
}

// @Summary  Advance to the next step
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200 {object} SessionResponse
// @Failure  409 {object} ErrorResponse "step guard failed"
// @Router   /checkout/sessions/{id}/continue [post]
func handleContinue(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		sess, err := svc.Continue(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toSessionResponse(sess))
	}
}

// @Summary  Go back one step
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200 {object} SessionResponse
// @Router   /checkout/sessions/{id}/back [post]
func handleBack(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		sess, err := svc.Back(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toSessionResponse(sess))
	}
}

// @Summary  Submit registration (idempotent)
// @Param    id  path  string  true  "Session ID (uuid)"
// @Header   200 {string} Idempotency-Key "echo"
// @Success  200 {object} SubmitResponse
// @Failure  409 {object} ErrorResponse "submit in progress / idem in progress"
// @Failure  502 {object} ErrorResponse "upstream unavailable"
// @Router   /checkout/sessions/{id}/submit [post]
func handleSubmit(
	svc *checkout.Service,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemSubmit(id.String(), idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusOK,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusOK,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		res, err := svc.Submit(c.Request.Context(), id)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := SubmitResponse{
			Session:    toSessionResponse(res.Session),
			PixPending: res.PixPending,
			OrderID:    res.OrderID,
			QRCode:     res.QRCode,
			PaymentID:  res.PaymentID,
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Poll PIX payment status
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200 {object} PaymentStatusResponse
// @Router   /checkout/sessions/{id}/payment [get]
func handlePaymentStatus(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		st, err := svc.PaymentStatus(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		resp := PaymentStatusResponse{
			Step:      int(st.Step),
			StepName:  st.Step.String(),
			Status:    st.Status,
			QRCode:    st.QRCode,
			PaymentID: st.PaymentID,
		}
		// ETag + Cache-Control 3s, polling endpoint
		writeJSONWithCache(c, http.StatusOK, resp, "private, max-age=3")
	}
}

// @Summary  Get recorded checkout with tickets
// @Param    id  path  string  true  "Receipt ID (uuid)"
// @Success  200 {object} domain.ReceiptWithTickets
// @Failure  404 {object} ErrorResponse
// @Router   /orders/{id} [get]
func handleGetReceipt(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		r, err := svc.Receipt(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, r, "private, max-age=60")
	}
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var vErr *checkout.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "invalid user info",
			Fields: vErr.Fields,
		})
		return
	}

	var rlErr *checkout.RateLimitedError
	if errors.As(err, &rlErr) {
		retry := int(rlErr.RetryAfter.Seconds())
		if retry < 1 {
			retry = 1
		}
		c.Header("Retry-After", strconv.Itoa(retry))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
		return
	}

	var trErr *checkout.TransitionError
	if errors.As(err, &trErr) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: trErr.Error()})
		return
	}

	var apiErr *tikko.APIError
	if errors.As(err, &apiErr) {
		respondUpstreamErr(c, apiErr)
		return
	}

	switch {
	case errors.Is(err, checkout.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
	case errors.Is(err, checkout.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "order not found"})
	case errors.Is(err, checkout.ErrSessionClosed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "session closed"})
	case errors.Is(err, checkout.ErrSubmitInProgress):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "registration already in progress"})
	case errors.Is(err, checkout.ErrTermsNotAccepted):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "terms must be accepted"})
	case errors.Is(err, checkout.ErrUserInfoRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user info must be submitted first"})
	case errors.Is(err, checkout.ErrPaymentMethodRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "payment method must be selected"})
	case errors.Is(err, checkout.ErrPaymentDataRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "payment data must be submitted"})
	case errors.Is(err, checkout.ErrCouponRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "coupon code is empty"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// respondUpstreamErr translates a ticketing-API failure into a response the
// client can show. Network failures and upstream 5xx surface as 502 since the
// service itself is healthy.
func respondUpstreamErr(c *gin.Context, apiErr *tikko.APIError) {
	msg := errcode.Message(apiErr.Code, apiErr.Status)

	status := http.StatusBadRequest
	switch {
	case apiErr.Status == 0 || apiErr.Status >= 500:
		status = http.StatusBadGateway
	case apiErr.Status == http.StatusUnauthorized:
		status = http.StatusUnauthorized
	case apiErr.Status == http.StatusTooManyRequests:
		status = http.StatusTooManyRequests
	}

	c.JSON(status, ErrorResponse{Error: msg, Code: apiErr.Code})
}
