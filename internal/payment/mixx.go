package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/safarika/busbook/config"
	kafka "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/pkg/logger"
)

const mixxPushPath = "/v1/payments/push"

type mixxGateway struct {
	baseURL     string
	apiKey      string
	apiSecret   string
	payeeMSISDN string
	client      *http.Client
	l           logger.Logger
}

func NewMixxGateway(cfg config.PaymentConfig, l logger.Logger) Gateway {
	return &mixxGateway{
		baseURL:     cfg.MixxBaseURL,
		apiKey:      cfg.MixxAPIKey,
		apiSecret:   cfg.MixxAPISecret,
		payeeMSISDN: cfg.MixxPayeeMSISDN,
		client:      &http.Client{Timeout: cfg.MixxTimeout},
		l:           l,
	}
}

type mixxPushRequest struct {
	PayerMSISDN string `json:"payer_msisdn"`
	PayeeMSISDN string `json:"payee_msisdn"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url"`
	Narration   string `json:"narration"`
}

type mixxPushResponse struct {
	TransactionRef string `json:"transaction_ref"`
	Message        string `json:"message"`
}

// Initiate pushes a payment request to the MIXX wallet API. Transport failures
// are absorbed into Unavailable: the booking stays pending and the
// reconciliation sweeper may re-emit the payment request later.
func (g *mixxGateway) Initiate(ctx context.Context, event kafka.BookingPaymentEvent) Attempt {
	body, err := json.Marshal(mixxPushRequest{
		PayerMSISDN: event.CustomerPhone,
		PayeeMSISDN: g.payeeMSISDN,
		Amount:      ToMinorUnits(event.Amount, event.Currency),
		Currency:    event.Currency,
		Reference:   event.BookingUID,
		CallbackURL: event.CallbackURL,
		Narration:   "Bus booking " + event.BookingUID,
	})
	if err != nil {
		g.l.Errorf(ctx, "payment.mixxGateway.Initiate: %v", err)
		return Attempt{Outcome: OutcomeRejected, Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+mixxPushPath, bytes.NewReader(body))
	if err != nil {
		g.l.Errorf(ctx, "payment.mixxGateway.Initiate: %v", err)
		return Attempt{Outcome: OutcomeRejected, Reason: err.Error()}
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", g.apiKey)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", g.sign(body, ts))

	resp, err := g.client.Do(req)
	if err != nil {
		g.l.Errorf(ctx, "payment.mixxGateway.Initiate: %v", err)
		return Attempt{Outcome: OutcomeUnavailable, Reason: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var out mixxPushResponse
		if err := json.Unmarshal(respBody, &out); err != nil {
			g.l.Warnf(ctx, "payment.mixxGateway.Initiate: unparseable accept body: %v", err)
		}
		g.l.Info(ctx, "MIXX payment initiated",
			"booking_uid", event.BookingUID,
			"transaction_ref", out.TransactionRef,
		)
		return Attempt{Outcome: OutcomeAccepted, Reference: out.TransactionRef}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		g.l.Warn(ctx, "MIXX rejected payment request",
			"booking_uid", event.BookingUID,
			"status", resp.StatusCode,
		)
		return Attempt{
			Outcome: OutcomeRejected,
			Reason:  fmt.Sprintf("provider rejected request: %d", resp.StatusCode),
		}

	default:
		g.l.Error(ctx, "MIXX unavailable",
			"booking_uid", event.BookingUID,
			"status", resp.StatusCode,
		)
		return Attempt{
			Outcome: OutcomeUnavailable,
			Reason:  fmt.Sprintf("provider error: %d", resp.StatusCode),
		}
	}
}

func (g *mixxGateway) sign(body []byte, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(g.apiSecret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
