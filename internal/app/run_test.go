package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghcn-dashboard/internal/config"
	"ghcn-dashboard/internal/ghcn"
)

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NotFoundHandler()}
	err = serve(context.Background(), srv)

	require.Error(t, err)
	assert.False(t, errors.Is(err, http.ErrServerClosed))
}

func TestFeedRetryPolicy(t *testing.T) {
	def := ghcn.DefaultRetryPolicy()

	tests := []struct {
		name string
		cfg  config.Config
		want ghcn.RetryPolicy
	}{
		{
			name: "overrides retries and first wait",
			cfg:  config.Config{FeedMaxRetries: 0, FeedRetryWait: 250 * time.Millisecond},
			want: ghcn.RetryPolicy{MaxRetries: 0, MinWait: 250 * time.Millisecond, MaxWait: def.MaxWait},
		},
		{
			name: "zero wait keeps the default",
			cfg:  config.Config{FeedMaxRetries: 4},
			want: ghcn.RetryPolicy{MaxRetries: 4, MinWait: def.MinWait, MaxWait: def.MaxWait},
		},
		{
			name: "long first wait raises the cap",
			cfg:  config.Config{FeedMaxRetries: 1, FeedRetryWait: time.Minute},
			want: ghcn.RetryPolicy{MaxRetries: 1, MinWait: time.Minute, MaxWait: time.Minute},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, feedRetryPolicy(tc.cfg))
		})
	}
}
