package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmaaza/surgical-mart-sub001/checkout"
	"github.com/mmaaza/surgical-mart-sub001/models"
)

// CheckoutController exposes the checkout step orchestrator.
type CheckoutController struct {
	flow   *checkout.Orchestrator
	logger *zap.Logger
}

// NewCheckoutController creates a checkout controller.
func NewCheckoutController(flow *checkout.Orchestrator, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{flow: flow, logger: logger}
}

// Begin enters checkout. An empty cart is rejected and the UI is told to
// leave the checkout flow.
func (cc *CheckoutController) Begin(c *gin.Context) {
	if err := cc.flow.Begin(); err != nil {
		respondError(c, err)
		return
	}
	cc.state(c)
}

// State reports the current step, snapshot, and totals.
func (cc *CheckoutController) State(c *gin.Context) {
	cc.state(c)
}

func (cc *CheckoutController) state(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"step":     cc.flow.Step(),
		"items":    cc.flow.Items(),
		"shipping": cc.flow.Shipping(),
		"summary":  cc.flow.Summary(),
	})
}

// ProceedToShipping advances Review → Shipping.
func (cc *CheckoutController) ProceedToShipping(c *gin.Context) {
	if err := cc.flow.ProceedToShipping(); err != nil {
		respondError(c, err)
		return
	}
	cc.state(c)
}

// SubmitShipping validates the shipping record and advances to Payment.
func (cc *CheckoutController) SubmitShipping(c *gin.Context) {
	var details models.ShippingDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := cc.flow.SubmitShipping(details); err != nil {
		respondError(c, err)
		return
	}
	cc.state(c)
}

// Back moves one step backwards without losing entered data.
func (cc *CheckoutController) Back(c *gin.Context) {
	if err := cc.flow.Back(); err != nil {
		respondError(c, err)
		return
	}
	cc.state(c)
}

// Complete places the order. Multipart form: payment_method plus the
// payment_screenshot file when paying now.
func (cc *CheckoutController) Complete(c *gin.Context) {
	method := models.PaymentMethod(c.PostForm("payment_method"))
	payment := models.PaymentDetails{Method: method}

	if fileHeader, err := c.FormFile("payment_screenshot"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable receipt file"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable receipt file"})
			return
		}
		payment.Receipt = &models.ReceiptFile{
			Filename: fileHeader.Filename,
			MIMEType: fileHeader.Header.Get("Content-Type"),
			Size:     fileHeader.Size,
			Data:     data,
		}
	}

	confirmation, err := cc.flow.Complete(c.Request.Context(), payment, func(percent int, status string) {
		cc.logger.Debug("order submission progress",
			zap.Int("percent", percent),
			zap.String("status", status),
		)
	})
	if err != nil {
		cc.logger.Warn("order placement failed", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id":     confirmation.OrderID,
		"order_number": confirmation.OrderNumber,
		"placed_at":    confirmation.PlacedAt,
	})
}
