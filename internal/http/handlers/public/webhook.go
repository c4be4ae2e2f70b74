package public

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/telelink-next/internal/http/response"
	"github.com/telelink-next/internal/logger"
	"github.com/telelink-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const webhookSignatureHeader = "X-Webhook-Signature"

// PaymentWebhookRequest settled payment notification
type PaymentWebhookRequest struct {
	EventID  string `json:"event_id"`
	BuyerID  uint64 `json:"buyer_id"`
	LinkCode string `json:"link_code"`
	Amount   string `json:"amount"`
}

// PaymentWebhook ingests a settled payment event from the payment
// gateway. The signature is HMAC-SHA256 over the raw body; replayed
// events return the original settlement marked duplicate.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	secret := ""
	if h.Config != nil {
		secret = strings.TrimSpace(h.Config.Security.WebhookSecret)
	}
	if secret == "" {
		respondError(c, response.CodeInternal, "webhook secret not configured", nil)
		return
	}
	if !verifyWebhookSignature(secret, body, c.GetHeader(webhookSignatureHeader)) {
		logger.Warnw("webhook_signature_rejected", "ip", c.ClientIP())
		respondError(c, response.CodeUnauthorized, "invalid signature", nil)
		return
	}

	var req PaymentWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid amount", nil)
		return
	}

	result, err := h.LedgerService.SettlePayment(service.SettlementInput{
		EventID:  req.EventID,
		BuyerID:  req.BuyerID,
		LinkCode: req.LinkCode,
		Gross:    amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEvent):
			respondError(c, response.CodeBadRequest, "event id must not be empty", nil)
		case errors.Is(err, service.ErrInvalidAmount):
			respondError(c, response.CodeBadRequest, "amount must be positive", nil)
		case errors.Is(err, service.ErrUnknownLink):
			respondError(c, response.CodeNotFound, "unknown link code", nil)
		case errors.Is(err, service.ErrOrphanedLink):
			respondError(c, response.CodeConflict, "link owner no longer exists", nil)
		default:
			respondError(c, response.CodeInternal, "settlement failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"settlement": result.Transaction,
		"duplicate":  result.Duplicate,
	})
}

func verifyWebhookSignature(secret string, body []byte, signature string) bool {
	signature = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
