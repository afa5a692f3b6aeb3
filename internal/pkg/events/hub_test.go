package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eticaret/storefront/internal/domain/order"
	"github.com/eticaret/storefront/internal/pkg/testutil"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return websocket.DefaultDialer.Dial(url, header)
}

func TestHubBroadcastsEvents(t *testing.T) {
	hub := NewHub(nil, testutil.NewLogger())
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()
	defer hub.Close()

	conn, _, err := dial(t, srv, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(order.Event{
		Type:        order.EventOrderCreated,
		OrderID:     9,
		OrderNumber: "ORD202403150009",
		Status:      order.OrderStatusPending,
		GrandTotal:  22500,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got order.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, order.EventOrderCreated, got.Type)
	assert.Equal(t, "ORD202403150009", got.OrderNumber)
	assert.Equal(t, int64(22500), got.GrandTotal)
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub := NewHub(nil, testutil.NewLogger())
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn, _, err := dial(t, srv, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	hub := NewHub([]string{"https://admin.eticaret.local"}, testutil.NewLogger())
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	_, resp, err := dial(t, srv, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, srv, http.Header{"Origin": {"https://admin.eticaret.local"}})
	require.NoError(t, err)
	conn.Close()
}

func TestPublishWithoutClients(t *testing.T) {
	hub := NewHub(nil, testutil.NewLogger())
	hub.Publish(order.Event{Type: order.EventOrderCancelled})
	assert.Zero(t, hub.ClientCount())
}
