package seace

import (
	"context"
	"strings"
	"time"

	"seaceintel-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
)

// DocumentClient downloads ficha attachments (bases, contracts,
// award minutes) over plain HTTP. Attachment URLs come out of the
// documents panel and can be relative to the portal.
type DocumentClient struct {
	http *resty.Client
}

type DocumentClientOptions struct {
	Delay   time.Duration
	Timeout time.Duration
}

func NewDocumentClient(opts DocumentClientOptions) (*DocumentClient, error) {
	if opts.Delay == 0 {
		opts.Delay = 2 * time.Second
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	http, err := restyutil.NewClient(restyutil.Options{
		BaseUrl:       "https://prod2.seace.gob.pe",
		Delay:         opts.Delay,
		Timeout:       opts.Timeout,
		Retries:       3,
		TracerName:    "scrapers/seace/documents",
		AntiBotBypass: true,
	})
	if err != nil {
		return nil, err
	}
	return &DocumentClient{http: http}, nil
}

// Fetch downloads one attachment and returns its bytes.
func (c *DocumentClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http") {
		url = "/" + strings.TrimPrefix(url, "/")
	}
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if cerr := restyutil.Classify(res, err); cerr != nil {
		return nil, cerr
	}
	return res.Body(), nil
}
