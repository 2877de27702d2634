package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

type httpClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewClient builds a gateway client using the secret-key basic-auth
// scheme of the payment gateway's JSON API.
func NewClient(baseURL, secretKey string) Client {
	return &httpClient{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		secretKey: strings.TrimSpace(secretKey),
		client:    &http.Client{Timeout: 12 * time.Second},
	}
}

type apiEnvelope struct {
	Data apiResource `json:"data"`
}

type apiResource struct {
	ID         string          `json:"id"`
	Attributes json.RawMessage `json:"attributes"`
}

type apiErrorResponse struct {
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

type sourceAttributes struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Type     string `json:"type"`
	Redirect struct {
		CheckoutURL string `json:"checkout_url"`
		Success     string `json:"success"`
		Failed      string `json:"failed"`
	} `json:"redirect"`
}

type paymentAttributes struct {
	Amount int64  `json:"amount"`
	Status string `json:"status"`
	Source struct {
		ID string `json:"id"`
	} `json:"source"`
}

type refundAttributes struct {
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
	PaymentID string `json:"payment_id"`
}

func (c *httpClient) CreateSource(ctx context.Context, req CreateSourceRequest) (Source, error) {
	currency := req.Currency
	if currency == "" {
		currency = "PHP"
	}
	body := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"amount":   req.Amount,
				"currency": currency,
				"type":     req.Type,
				"redirect": map[string]any{
					"success": req.SuccessURL,
					"failed":  req.FailedURL,
				},
				"description": req.Description,
				"metadata": map[string]any{
					"booking_id": req.BookingID,
					"user_id":    req.UserID,
				},
			},
		},
	}

	resource, err := c.doRequest(ctx, http.MethodPost, "/v1/sources", body)
	if err != nil {
		return Source{}, err
	}

	var attrs sourceAttributes
	if err := json.Unmarshal(resource.Attributes, &attrs); err != nil {
		return Source{}, &Error{StatusCode: http.StatusBadGateway, Detail: "malformed source response"}
	}
	return Source{
		ID:          resource.ID,
		Status:      attrs.Status,
		Amount:      attrs.Amount,
		Type:        attrs.Type,
		CheckoutURL: attrs.Redirect.CheckoutURL,
	}, nil
}

func (c *httpClient) CreateCharge(ctx context.Context, sourceID string, amount int64) (Payment, error) {
	body := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"amount":   amount,
				"currency": "PHP",
				"source": map[string]any{
					"id":   sourceID,
					"type": "source",
				},
			},
		},
	}

	resource, err := c.doRequest(ctx, http.MethodPost, "/v1/payments", body)
	if err != nil {
		return Payment{}, err
	}

	var attrs paymentAttributes
	if err := json.Unmarshal(resource.Attributes, &attrs); err != nil {
		return Payment{}, &Error{StatusCode: http.StatusBadGateway, Detail: "malformed payment response"}
	}
	source := attrs.Source.ID
	if source == "" {
		source = sourceID
	}
	return Payment{
		ID:       resource.ID,
		SourceID: source,
		Status:   attrs.Status,
		Amount:   attrs.Amount,
	}, nil
}

func (c *httpClient) CreateRefund(ctx context.Context, req CreateRefundRequest) (Refund, error) {
	body := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"amount":     req.Amount,
				"payment_id": req.PaymentID,
				"reason":     req.Reason,
				"notes":      req.Notes,
			},
		},
	}

	resource, err := c.doRequest(ctx, http.MethodPost, "/v1/refunds", body)
	if err != nil {
		return Refund{}, err
	}

	var attrs refundAttributes
	if err := json.Unmarshal(resource.Attributes, &attrs); err != nil {
		return Refund{}, &Error{StatusCode: http.StatusBadGateway, Detail: "malformed refund response"}
	}
	payment := attrs.PaymentID
	if payment == "" {
		payment = req.PaymentID
	}
	return Refund{
		ID:        resource.ID,
		PaymentID: payment,
		Status:    attrs.Status,
		Amount:    attrs.Amount,
		Reason:    attrs.Reason,
	}, nil
}

func (c *httpClient) doRequest(ctx context.Context, method, path string, body map[string]any) (apiResource, error) {
	if c.secretKey == "" {
		return apiResource{}, &Error{StatusCode: http.StatusInternalServerError, Detail: "gateway secret key not configured"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return apiResource{}, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apiResource{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.secretKey+":")))

	resp, err := c.client.Do(req)
	if err != nil {
		return apiResource{}, &Error{StatusCode: http.StatusBadGateway, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiErrorResponse
		detail := "gateway request failed"
		code := ""
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && len(apiErr.Errors) > 0 {
			if msg := strings.TrimSpace(apiErr.Errors[0].Detail); msg != "" {
				detail = msg
			}
			code = strings.TrimSpace(apiErr.Errors[0].Code)
		}
		return apiResource{}, &Error{StatusCode: resp.StatusCode, Code: code, Detail: detail}
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return apiResource{}, &Error{StatusCode: http.StatusBadGateway, Detail: "malformed gateway response"}
	}
	if envelope.Data.ID == "" {
		return apiResource{}, &Error{StatusCode: http.StatusBadGateway, Detail: "gateway response missing resource id"}
	}
	return envelope.Data, nil
}

// MapRefundReason maps a free-text cancellation reason onto the
// gateway's enumerated reason set.
func MapRefundReason(reason string) string {
	lowered := strings.ToLower(reason)
	switch {
	case strings.Contains(lowered, "duplicate"):
		return RefundReasonDuplicate
	case strings.Contains(lowered, "fraud"):
		return RefundReasonFraudulent
	case strings.Contains(lowered, "cancel"), strings.Contains(lowered, "request"):
		return RefundReasonRequestedByCustomer
	default:
		return RefundReasonOthers
	}
}
