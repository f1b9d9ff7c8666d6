// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package revalidate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// SecretHeader carries the shared secret on webhook calls.
const SecretHeader = "X-Revalidate-Secret"

const defaultTimeout = 2 * time.Second

// Revalidator tells the frontend which cached pages are stale.
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string)
}

// DashboardPath is the creator dashboard.
func DashboardPath() string { return "/dashboard" }

// PollPath is the creator's page for one poll.
func PollPath(pollID string) string { return "/polls/" + pollID }

// SharePath is the public page reached through a share token.
func SharePath(token string) string { return "/p/" + token }

// New returns a Webhook for url, or Noop when url is empty.
func New(url, secret string) Revalidator {
	if url == "" {
		return Noop{}
	}
	return NewWebhook(url, secret, defaultTimeout)
}

// Noop discards revalidation requests.
type Noop struct{}

func (Noop) Revalidate(context.Context, ...string) {}

// Webhook posts stale paths to a frontend endpoint.
type Webhook struct {
	client  *resty.Client
	url     string
	timeout time.Duration
	pending sync.WaitGroup
}

type payload struct {
	Paths []string `json:"paths"`
}

func NewWebhook(url, secret string, timeout time.Duration) *Webhook {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if secret != "" {
		client.SetHeader(SecretHeader, secret)
	}
	return &Webhook{client: client, url: url, timeout: timeout}
}

// Revalidate posts paths in the background and returns at once. The call
// outlives ctx's cancellation but is bounded by the webhook timeout.
// Failures are logged and otherwise ignored.
func (w *Webhook) Revalidate(ctx context.Context, paths ...string) {
	if len(paths) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	w.pending.Add(1)
	go func() {
		defer w.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, w.timeout)
		defer cancel()
		if err := w.post(ctx, paths); err != nil {
			logrus.WithError(err).WithField("paths", paths).Warn("failed to revalidate paths")
		}
	}()
}

// wait blocks until every background post has finished.
func (w *Webhook) wait() {
	w.pending.Wait()
}

func (w *Webhook) post(ctx context.Context, paths []string) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(payload{Paths: paths}).
		Post(w.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("revalidate webhook returned %s", resp.Status())
	}
	return nil
}
