package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendGridPayload struct {
	From struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"from"`
	ReplyTo *struct {
		Email string `json:"email"`
	} `json:"reply_to"`
	Subject          string `json:"subject"`
	Personalizations []struct {
		To []struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func sendGridServer(t *testing.T, status int, got *sendGridPayload) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, sendGridEndpoint, r.URL.Path)
		assert.Equal(t, "Bearer SG.key", r.Header.Get("Authorization"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewSendGridSender_RequiresKey(t *testing.T) {
	_, err := NewSendGridSender(" \n", Identity{Email: "info@spacesquare.dev"}, nil)
	assert.ErrorIs(t, err, ErrMissingCredential)

	sender, err := NewSendGridSender("SG.key\n", Identity{Email: "info@spacesquare.dev"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSenderName, sender.from.Name)
}

func TestSendGridSender_Send(t *testing.T) {
	var got sendGridPayload
	srv := sendGridServer(t, http.StatusAccepted, &got)

	sender, err := newSendGridSender("SG.key", srv.URL, Identity{
		Email:   "info@spacesquare.dev",
		Name:    "Dispatch Desk",
		ReplyTo: "desk@spacesquare.dev",
	}, nil)
	require.NoError(t, err)

	err = sender.Send(context.Background(), EmailMessage{
		To:      "ada@example.com",
		ToName:  "Ada",
		Subject: "Booking received",
		Text:    "plain",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "Dispatch Desk", got.From.Name)
	assert.Equal(t, "info@spacesquare.dev", got.From.Email)
	require.NotNil(t, got.ReplyTo)
	assert.Equal(t, "desk@spacesquare.dev", got.ReplyTo.Email)
	assert.Equal(t, "Booking received", got.Subject)
	require.Len(t, got.Personalizations, 1)
	require.Len(t, got.Personalizations[0].To, 1)
	assert.Equal(t, "ada@example.com", got.Personalizations[0].To[0].Email)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "plain", got.Content[0].Value)
	assert.Equal(t, "<p>html</p>", got.Content[1].Value)
}

func TestSendGridSender_RejectedStatus(t *testing.T) {
	srv := sendGridServer(t, http.StatusBadRequest, nil)

	sender, err := newSendGridSender("SG.key", srv.URL, Identity{Email: "info@spacesquare.dev"}, nil)
	require.NoError(t, err)

	err = sender.Send(context.Background(), EmailMessage{To: "ada@example.com", Subject: "x", Text: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestLogSender_Send(t *testing.T) {
	assert.NoError(t, NewLogSender(nil).Send(context.Background(), EmailMessage{To: "ada@example.com", Subject: "x"}))
}

func TestIdentity_ReplyTo(t *testing.T) {
	id := Identity{Email: "info@spacesquare.dev", ReplyTo: "desk@spacesquare.dev"}
	assert.Equal(t, "desk@spacesquare.dev", id.replyTo(EmailMessage{}))
	assert.Equal(t, "ana@example.com", id.replyTo(EmailMessage{ReplyTo: "ana@example.com"}))
	assert.Empty(t, Identity{}.replyTo(EmailMessage{}))
}
