// Copyright (c) 2024 Telisik Project and contributors, All rights reserved.
//
// This file is part of Telisik.
//
// Telisik is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation version 3 of the License.
//
// Telisik is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Telisik. If not, see <https://www.gnu.org/licenses/>.

// Package fetch is the outbound HTTP utility used by recon modules.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultUserAgent = "telisik"

// Options configures a Client. Interval, when non-zero, enforces a
// fixed delay between requests (rate-limited API keys).
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Interval  time.Duration
}

// Client performs rate-limited GET requests against external APIs
type Client struct {
	hc  *http.Client
	ua  string
	lmt *rate.Limiter
}

// New returns an initialized Client
func New(o Options) *Client {
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	c := &Client{
		hc: &http.Client{Timeout: o.Timeout},
		ua: o.UserAgent,
	}
	if o.Interval > 0 {
		c.lmt = rate.NewLimiter(rate.Every(o.Interval), 1)
	}
	return c
}

// Get fetches url and returns the response body and status code.
// When a rate interval is configured the call blocks until a slot is
// available or ctx is done.
func (c *Client) Get(ctx context.Context, url string) (body []byte, status int, err error) {
	if c.lmt != nil {
		if err = c.lmt.Wait(ctx); err != nil {
			return
		}
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return
	}
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", c.ua)

	res, err := c.hc.Do(req)
	if err != nil {
		return
	}
	defer res.Body.Close()

	body, err = io.ReadAll(res.Body)
	if err != nil {
		return
	}
	status = res.StatusCode
	return
}
