// Package restyutil builds the throttled resty clients every crawler
// in this repo goes through. A client enforces a fixed minimum delay
// between outbound requests and retries transient failures a bounded
// number of times with no backoff growth.
package restyutil

import (
	"net/http/cookiejar"
	"sync"
	"time"

	"seaceintel-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Options struct {
	BaseUrl string
	// minimum delay between any two requests made by this client
	Delay   time.Duration
	Timeout time.Duration
	// how many times a transient failure is retried; fatal responses
	// are never retried
	Retries    int
	UserAgent  string
	TracerName string
	// the legacy portal fronts its static assets with an anti-bot
	// layer that rejects default go clients
	AntiBotBypass bool
}

type throttle struct {
	mu   sync.Mutex
	last time.Time
	wait time.Duration
}

func (t *throttle) block() {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.last)
	if elapsed < t.wait {
		time.Sleep(t.wait - elapsed)
	}
	t.last = time.Now()
}

func NewClient(opts Options) (*resty.Client, error) {
	client := resty.New()
	if opts.BaseUrl != "" {
		client.SetBaseURL(opts.BaseUrl)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)

	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	client.SetHeader("user-agent", ua)

	if opts.Timeout != 0 {
		client.SetTimeout(opts.Timeout)
	}

	if opts.Delay > 0 {
		th := &throttle{wait: opts.Delay}
		client.OnBeforeRequest(func(_ *resty.Client, _ *resty.Request) error {
			th.block()
			return nil
		})
	}

	if opts.Retries > 0 {
		client.SetRetryCount(opts.Retries)
		// the inter-request delay is already conservative, so retry
		// waits stay fixed instead of growing
		client.SetRetryWaitTime(opts.Delay)
		client.SetRetryMaxWaitTime(opts.Delay)
		client.AddRetryCondition(func(res *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return res.StatusCode() >= 500 || res.StatusCode() == 429
		})
	}

	if opts.AntiBotBypass {
		httpClient := client.GetClient()
		httpClient.Transport = cloudflarebp.AddCloudFlareByPass(httpClient.Transport)
	}

	if opts.TracerName != "" {
		telemetry.InstrumentResty(client, opts.TracerName)
	}

	return client, nil
}
