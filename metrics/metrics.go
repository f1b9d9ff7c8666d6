// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/pollboard/apperr"
)

// Metrics holds the service's collectors.
type Metrics struct {
	PollsCreated    prometheus.Counter
	Votes           *prometheus.CounterVec
	ThreadsPosted   prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PollsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pollboard_polls_created_total",
			Help: "Polls created.",
		}),
		Votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pollboard_votes_total",
			Help: "Vote submissions by outcome.",
		}, []string{"outcome"}),
		ThreadsPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pollboard_threads_posted_total",
			Help: "Discussion threads and replies posted.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pollboard_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(m.PollsCreated, m.Votes, m.ThreadsPosted, m.RequestDuration)
	return m
}

// VoteOutcome labels a vote submission result: "accepted", or the
// error kind that rejected it.
func VoteOutcome(err error) string {
	if err == nil {
		return "accepted"
	}
	return apperr.KindOf(err).String()
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
