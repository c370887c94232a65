package bookingmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

const maxPushBodyBytes = 1 << 20

// DeliveryProcessor is what the transports hand deliveries to.
type DeliveryProcessor interface {
	Kind() Kind
	Process(ctx context.Context, d Delivery) (Result, error)
}

// pushEnvelope is the Pub/Sub push request body.
type pushEnvelope struct {
	Message struct {
		Data       string            `json:"data"`
		MessageID  string            `json:"messageId"`
		LegacyID   string            `json:"message_id"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// PushHandler receives Pub/Sub push deliveries. It answers 2xx for anything
// that can never succeed so the subscription stops redelivering it, and 5xx
// for backend failures so it retries.
type PushHandler struct {
	processor DeliveryProcessor
	logger    *logging.Logger
}

func NewPushHandler(processor DeliveryProcessor, logger *logging.Logger) *PushHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PushHandler{processor: processor, logger: logger}
}

func (h *PushHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var env pushEnvelope
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPushBodyBytes))
	if err == nil && len(body) > 0 {
		err = json.Unmarshal(body, &env)
	}
	if err != nil || env.Message.Data == "" {
		h.logger.Info("push without message data acknowledged", "error", err)
		writeText(w, http.StatusNoContent, "")
		return
	}

	data, err := decodeBase64(env.Message.Data)
	if err != nil {
		h.logger.Warn("push data is not base64", "error", err)
		writeText(w, http.StatusOK, "Bad message data, message acknowledged.")
		return
	}

	id := env.Message.MessageID
	if id == "" {
		id = env.Message.LegacyID
	}

	res, err := h.processor.Process(r.Context(), Delivery{ID: id, Data: data})
	switch {
	case errors.Is(err, ErrBadJSON):
		writeText(w, http.StatusOK, "Bad JSON, message acknowledged.")
	case errors.Is(err, ErrMissingEmail):
		writeText(w, http.StatusOK, "Missing user email, message acknowledged.")
	case errors.Is(err, ErrUnprocessable):
		writeText(w, http.StatusOK, "Unprocessable booking, message acknowledged.")
	case errors.Is(err, ErrCredentialUnavailable):
		writeText(w, http.StatusInternalServerError, "Secret store error")
	case err != nil:
		writeText(w, http.StatusInternalServerError, fmt.Sprintf("Failed to send %s", describeKind(h.processor.Kind())))
	case res.Outcome == OutcomeDuplicate:
		writeText(w, http.StatusOK, "Duplicate message acknowledged.")
	default:
		writeText(w, http.StatusOK, fmt.Sprintf("%s sent to: %s", capitalize(describeKind(res.Kind)), res.To))
	}
}

func describeKind(k Kind) string {
	if k == KindAdmin {
		return "admin notification email"
	}
	return "user confirmation email"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func decodeBase64(s string) ([]byte, error) {
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

func writeText(w http.ResponseWriter, status int, body string) {
	if body != "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(status)
	if body != "" {
		_, _ = io.WriteString(w, body)
	}
}
