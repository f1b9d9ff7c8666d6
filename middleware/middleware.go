// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/pollboard/apperr"
	"github.com/danielhkuo/pollboard/auth"
	"github.com/danielhkuo/pollboard/metrics"
	"github.com/danielhkuo/pollboard/models"
)

// WithLogging logs one record per request and, when m is not nil,
// observes its latency.
func WithLogging(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			duration := time.Since(start)

			logrus.WithFields(logrus.Fields{
				"method":      r.Method,
				"route":       route,
				"path":        r.URL.Path,
				"status":      status,
				"duration_ms": duration.Milliseconds(),
				"request_id":  chimw.GetReqID(r.Context()),
			}).Info("request completed")

			if m != nil {
				m.ObserveRequest(r.Method, route, status, duration)
			}
		})
	}
}

// routePattern is the matched chi pattern, so metrics are not labelled
// with raw IDs.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// JSONResponse writes data in a success envelope.
func JSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	render.Status(r, statusCode)
	render.JSON(w, r, models.Envelope{Success: true, Data: data})
}

// ErrorResponse writes err in an error envelope with the status of its
// kind. Internal errors are logged with their cause; their text is
// never sent.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	body := &models.ErrorBody{
		Type:    apperr.KindOf(err).String(),
		Message: apperr.PublicMessage(err),
	}
	if e, ok := apperr.As(err); ok {
		body.Field = e.Field
		body.Resource = e.Resource
	}

	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"type":       body.Type,
		"status":     status,
		"message":    body.Message,
		"path":       r.URL.Path,
		"request_id": chimw.GetReqID(r.Context()),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	render.Status(r, status)
	render.JSON(w, r, models.Envelope{Success: false, Error: body})
}

// CORS allows cross-origin requests from origins. An empty list allows
// any origin without credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}
	if len(origins) > 0 {
		opts.AllowCredentials = true
	}
	return cors.New(opts).Handler
}

// GetClientIP extracts the client IP address. Forwarding headers are
// read only when the connection comes from one of trusted; otherwise the
// peer address is the client.
func GetClientIP(r *http.Request, trusted []*net.IPNet) string {
	peer := remoteIP(r.RemoteAddr)
	if !isTrusted(peer, trusted) {
		return peer
	}

	// Walk the chain from the nearest hop; the first hop that is not one
	// of our proxies is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if i == 0 || !isTrusted(hop, trusted) {
				return hop
			}
		}
	}

	// nginx
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return peer
}

// remoteIP strips the port from a RemoteAddr value.
func remoteIP(addr string) string {
	if strings.HasPrefix(addr, "[") {
		if end := strings.Index(addr, "]"); end > 0 {
			return addr[1:end]
		}
	}
	if i := strings.LastIndexByte(addr, ':'); i >= 0 && strings.Count(addr, ":") == 1 {
		return addr[:i]
	}
	return addr
}

func isTrusted(addr string, trusted []*net.IPNet) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// VoterFromRequest identifies the caller for voting: the signed-in user
// if any, always with the salted hash of the client address.
func VoterFromRequest(r *http.Request, ipSalt string, trusted []*net.IPNet) models.Voter {
	voter := models.Voter{IPHash: auth.HashIP(GetClientIP(r, trusted), ipSalt)}
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		voter.UserID = userID
	}
	return voter
}
