// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/form/v4"

	"github.com/danielhkuo/pollboard/apperr"
)

const maxBodyBytes = 1 << 20

var formDecoder = form.NewDecoder()

// DecodeBody fills v from a JSON, urlencoded or multipart request body.
// Repeated form keys decode into slices.
func DecodeBody(r *http.Request, v interface{}) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return invalidBody(err)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return invalidBody(err)
		}
	default:
		err := render.DecodeJSON(io.LimitReader(r.Body, maxBodyBytes), v)
		if errors.Is(err, io.EOF) {
			return apperr.ValidationFailed("body", "request body is required")
		}
		if err != nil {
			return invalidBody(err)
		}
		return nil
	}

	if err := formDecoder.Decode(v, r.PostForm); err != nil {
		return invalidBody(err)
	}
	return nil
}

func invalidBody(err error) error {
	return &apperr.Error{
		Kind:    apperr.KindValidationFailed,
		Field:   "body",
		Message: "malformed request body",
		Err:     err,
	}
}
