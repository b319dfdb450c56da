package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryServerInterceptor_CountsByCode(t *testing.T) {
	m := New()
	icpt := m.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/clientbook.v1.Ledger/InsertClient"}

	_, err := icpt(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)

	_, err = icpt(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "nope")
	})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCs.WithLabelValues(info.FullMethod, "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCs.WithLabelValues(info.FullMethod, "NotFound")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RPCDuration))
}

func TestStreamServerInterceptor_Counts(t *testing.T) {
	m := New()
	icpt := m.StreamServerInterceptor()
	info := &grpc.StreamServerInfo{FullMethod: "/clientbook.v1.Ledger/Subscribe", IsServerStream: true}

	err := icpt(nil, nil, info, func(srv any, ss grpc.ServerStream) error {
		return errors.New("plain")
	})
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCs.WithLabelValues(info.FullMethod, "Unknown")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.FeedSubscribers.Set(3)
	m.FeedPublished.WithLabelValues("clients").Add(2)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, "clientbook_feed_subscribers 3"))
	assert.True(t, strings.Contains(text, `clientbook_feed_events_published_total{table="clients"} 2`))
	assert.True(t, strings.Contains(text, "go_goroutines"))
}
