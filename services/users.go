// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/pollboard/apperr"
	"github.com/danielhkuo/pollboard/auth"
	"github.com/danielhkuo/pollboard/db"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/schema"
)

var errInvalidLogin = &apperr.Error{
	Kind:    apperr.KindAuthenticationRequired,
	Message: "invalid email or password",
}

type UserService struct {
	store *db.DB
	now   func() time.Time
}

// Register creates an account. Emails are compared case-insensitively.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validateStruct(req); err != nil {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return models.User{}, apperr.ValidationFailed("password", "password must be at most 72 bytes")
	}
	if err != nil {
		return models.User{}, apperr.Internal("failed to create account", err)
	}

	row := schema.UserRow{
		ID:           uuid.NewString(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	_, err = s.store.Insert(schema.UserTable).Rows(goqu.Record{
		schema.UserTableIDColName:           row.ID,
		schema.UserTableEmailColName:        row.Email,
		schema.UserTableDisplayNameColName:  row.DisplayName,
		schema.UserTablePasswordHashColName: row.PasswordHash,
		schema.UserTableCreatedAtColName:    row.CreatedAt,
	}).Executor().ExecContext(ctx)
	if err != nil {
		err = db.TranslateError(err, "failed to create account")
		if apperr.Is(err, apperr.KindConflict) {
			return models.User{}, apperr.Conflict("email already registered")
		}
		logrus.WithError(err).Error("failed to insert user")
		return models.User{}, err
	}

	return userFromRow(row), nil
}

// Authenticate checks an email and password pair. Unknown emails and
// wrong passwords fail the same way.
func (s *UserService) Authenticate(ctx context.Context, req models.LoginRequest) (models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return models.User{}, err
	}

	var row schema.UserRow
	found, err := s.store.From(schema.UserTable).
		Where(schema.UserTableEmailCol.Eq(req.Email)).
		ScanStructContext(ctx, &row)
	if err != nil {
		return models.User{}, db.TranslateError(err, "failed to look up account")
	}
	if !found {
		return models.User{}, errInvalidLogin
	}

	if err := auth.CheckPassword(row.PasswordHash, req.Password); err != nil {
		return models.User{}, errInvalidLogin
	}

	return userFromRow(row), nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (models.User, error) {
	var row schema.UserRow
	found, err := s.store.From(schema.UserTable).
		Where(schema.UserTableIDCol.Eq(id)).
		ScanStructContext(ctx, &row)
	if err != nil {
		return models.User{}, db.TranslateError(err, "failed to look up account")
	}
	if !found {
		return models.User{}, apperr.NotFound("user")
	}
	return userFromRow(row), nil
}

func userFromRow(row schema.UserRow) models.User {
	return models.User{
		ID:          row.ID,
		Email:       row.Email,
		DisplayName: row.DisplayName,
		CreatedAt:   row.CreatedAt.UTC(),
	}
}
