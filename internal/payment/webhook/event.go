package webhook

import (
	"encoding/json"
	"strings"

	"github.com/smallbiznis/serbiz/internal/payment/domain"
)

// Event is the decoded gateway delivery envelope:
// {"data": {"id": ..., "attributes": {"type": ..., "data": <resource>}}}.
type Event struct {
	EventID    string
	Type       string
	ResourceID string
	Amount     int64
	Status     string
}

type envelope struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Type string   `json:"type"`
			Data resource `json:"data"`
		} `json:"attributes"`
	} `json:"data"`
}

type resource struct {
	ID         string `json:"id"`
	Attributes struct {
		Amount int64  `json:"amount"`
		Status string `json:"status"`
	} `json:"attributes"`
}

func ParseEvent(body []byte) (*Event, error) {
	if !json.Valid(body) {
		return nil, domain.ErrInvalidPayload
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	eventID := strings.TrimSpace(env.Data.ID)
	eventType := strings.TrimSpace(env.Data.Attributes.Type)
	if eventID == "" || eventType == "" {
		return nil, domain.ErrInvalidPayload
	}

	return &Event{
		EventID:    eventID,
		Type:       eventType,
		ResourceID: env.Data.Attributes.Data.ID,
		Amount:     env.Data.Attributes.Data.Attributes.Amount,
		Status:     env.Data.Attributes.Data.Attributes.Status,
	}, nil
}
