package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendBookingConfirmed(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var sent struct {
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
		Subject string `json:"subject"`
		HTML    string `json:"html"`
	}
	httpmock.RegisterResponder(http.MethodPost, "https://api.mailersend.com/v1/email",
		func(req *http.Request) (*http.Response, error) {
			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &sent))
			resp := httpmock.NewStringResponse(http.StatusAccepted, "")
			resp.Header.Set("X-Message-Id", "msg-1")
			return resp, nil
		})

	m := NewMailer("test-key", "Bookings", "bookings@example.com")
	date := time.Date(2031, time.June, 2, 0, 0, 0, 0, time.UTC)
	err := m.SendBookingConfirmed(context.Background(), "ayesha@example.com", "Jazz Night", date, "19:30")
	require.NoError(t, err)

	require.Len(t, sent.To, 1)
	assert.Equal(t, "ayesha@example.com", sent.To[0].Email)
	assert.Equal(t, "Booking Confirmed - Jazz Night", sent.Subject)
	assert.Contains(t, sent.HTML, "Jazz Night")
	assert.Contains(t, sent.HTML, "Monday, June 2, 2031")
	assert.Contains(t, sent.HTML, "7:30 PM")
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSendBookingConfirmedServerError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, "https://api.mailersend.com/v1/email",
		httpmock.NewStringResponder(http.StatusUnprocessableEntity, `{"message":"invalid recipient"}`))

	m := NewMailer("test-key", "Bookings", "bookings@example.com")
	err := m.SendBookingConfirmed(context.Background(), "", "Jazz Night", time.Now(), "19:30")
	assert.Error(t, err)
}

func TestFormatClock(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"00:30", "12:30 AM"},
		{"09:05", "9:05 AM"},
		{"12:00", "12:00 PM"},
		{"13:05", "1:05 PM"},
		{"23:59", "11:59 PM"},
		{"half past nine", "half past nine"},
		{"25:00", "25:00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatClock(tc.in), tc.in)
	}
}
