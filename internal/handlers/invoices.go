package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"propdesk/internal/apperr"
	"propdesk/internal/middleware"
	"propdesk/internal/payments"
	"propdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type InvoicesHandler struct {
	Invoices *services.InvoiceService
	Payments *payments.Client
}

func NewInvoicesHandler(invoices *services.InvoiceService, pay *payments.Client) *InvoicesHandler {
	return &InvoicesHandler{Invoices: invoices, Payments: pay}
}

type createInvoiceRequest struct {
	ClientID    uint   `json:"client_id" binding:"required"`
	JobID       uint   `json:"job_id"`
	AmountCents int64  `json:"amount_cents" binding:"required"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

func (h *InvoicesHandler) Create(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p := middleware.CurrentProfile(c)
	inv, err := h.Invoices.Create(p, services.InvoiceInput{
		ClientID:    req.ClientID,
		JobID:       req.JobID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *InvoicesHandler) List(c *gin.Context) {
	p := middleware.CurrentProfile(c)
	invoices, err := h.Invoices.List(p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

// Pay opens a payment-provider checkout session and returns its hosted URL.
func (h *InvoicesHandler) Pay(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.NotFound("Invoice not found"))
		return
	}

	p := middleware.CurrentProfile(c)
	url, err := h.Invoices.CreateCheckout(p, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "checkout_url": url})
}

// PaymentWebhook verifies the provider signature and settles the invoice the
// session refers to. Unhandled event types are acknowledged and dropped.
func (h *InvoicesHandler) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	event, err := h.Payments.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if event.Type == "checkout.session.completed" {
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Data.Raw, &obj); err != nil || obj.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
			return
		}
		if err := h.Invoices.MarkPaidBySession(obj.ID); err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
