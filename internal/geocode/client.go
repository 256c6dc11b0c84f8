// Package geocode talks to the external reverse-geocoding collaborator
// behind the checkout map picker.
//
// The collaborator is optional and flaky by nature (third-party, network,
// credential). Every failure mode collapses into ErrUnavailable so the
// checkout form degrades to manual address entry; geocoding must never
// block an order.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/jcmexdev/lahma-store/internal/pkg/metrics"
)

// ErrUnavailable signals that the collaborator cannot resolve an address
// right now (not configured, circuit open, request failed).
var ErrUnavailable = errors.New("geocode: unavailable")

// Location is the resolved point delivered back to the form.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// Client resolves coordinates against a Nominatim-style endpoint.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	baseURL string
}

// New builds a Client for the endpoint at baseURL. An empty baseURL yields
// a client whose every call degrades immediately; the feature is simply
// off.
func New(baseURL string) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "geocode",
		Interval: 15 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})

	return &Client{
		http: resty.New().
			SetTimeout(5 * time.Second).
			SetRetryCount(0), // the breaker decides, not the transport
		breaker: breaker,
		baseURL: baseURL,
	}
}

// nominatimResponse is the subset of the reverse endpoint's reply we use.
type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// ReverseGeocode resolves a coordinate pair to a human-readable address and
// a confirmed coordinate. Failures return ErrUnavailable.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (Location, error) {
	if c.baseURL == "" {
		return Location{}, ErrUnavailable
	}

	result, err := c.breaker.Execute(func() (any, error) {
		var body nominatimResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"format": "jsonv2",
				"lat":    fmt.Sprintf("%f", lat),
				"lon":    fmt.Sprintf("%f", lng),
			}).
			SetResult(&body).
			Get(c.baseURL + "/reverse")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("geocode: status %d", resp.StatusCode())
		}
		if body.DisplayName == "" {
			return nil, errors.New("geocode: empty address in response")
		}
		return Location{Lat: lat, Lng: lng, Address: body.DisplayName}, nil
	})
	if err != nil {
		metrics.GeocodeFailures.Inc()
		return Location{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result.(Location), nil
}
