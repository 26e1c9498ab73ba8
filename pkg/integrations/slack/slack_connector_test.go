package slack

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnector_SendMessage(t *testing.T) {
	var form map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		require.NoError(t, r.ParseForm())

		form = map[string]string{
			"channel":   r.PostForm.Get("channel"),
			"text":      r.PostForm.Get("text"),
			"thread_ts": r.PostForm.Get("thread_ts"),
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	defer server.Close()

	connector := NewConnector(Config{Token: "xoxb-test", APIURL: server.URL + "/"})

	result, err := connector.Invoke(context.Background(), ActionSendMessage, map[string]any{
		"channel":  "C123",
		"text":     "New lead Ada",
		"threadTs": "1699999999.000200",
	})
	require.NoError(t, err)

	assert.Equal(t, "C123", form["channel"])
	assert.Equal(t, "New lead Ada", form["text"])
	assert.Equal(t, "1699999999.000200", form["thread_ts"])
	assert.Equal(t, domain.Payload{"channel": "C123", "timestamp": "1700000000.000100"}, result)
}

func TestConnector_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer server.Close()

	connector := NewConnector(Config{Token: "xoxb-test", APIURL: server.URL + "/"})

	_, err := connector.Invoke(context.Background(), ActionSendMessage, map[string]any{"channel": "C404", "text": "hi"})
	assert.ErrorContains(t, err, "channel_not_found")

	_, err = connector.Invoke(context.Background(), ActionSendMessage, map[string]any{"channel": "C404"})
	assert.Error(t, err)

	_, err = connector.Invoke(context.Background(), "archive", nil)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedAction))
}
