package restyutil

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestThrottleEnforcesDelay(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	delay := 100 * time.Millisecond
	client, err := NewClient(Options{BaseUrl: server.URL, Delay: delay})
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.R().Get("/")
		require.NoError(t, err)
	}
	elapsed := time.Since(start)

	require.EqualValues(t, 3, hits.Load())
	// 3 requests with a 100ms floor between each means at least 200ms
	require.GreaterOrEqual(t, elapsed, 2*delay)
}

func TestRetriesTransientThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client, err := NewClient(Options{BaseUrl: server.URL, Delay: time.Millisecond, Retries: 3})
	require.NoError(t, err)

	res, err := client.R().Get("/")
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode())
	require.EqualValues(t, 3, hits.Load())
}

func TestFatalNotRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient(Options{BaseUrl: server.URL, Delay: time.Millisecond, Retries: 3})
	require.NoError(t, err)

	res, err := client.R().Get("/")
	require.NoError(t, err)
	require.EqualValues(t, 1, hits.Load())

	cerr := Classify(res, nil)
	require.True(t, IsFatal(cerr))
}

func TestClassify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("ok"))
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/limited":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()

	client, err := NewClient(Options{BaseUrl: server.URL})
	require.NoError(t, err)

	res, _ := client.R().Get("/ok")
	require.NoError(t, Classify(res, nil))

	res, _ = client.R().Get("/missing")
	require.ErrorIs(t, Classify(res, nil), ErrNotFound)

	res, _ = client.R().Get("/limited")
	require.True(t, IsTransient(Classify(res, nil)))

	res, _ = client.R().Get("/forbidden")
	require.True(t, IsFatal(Classify(res, nil)))
}
