package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/hackfesthq/hackfest-backend/internal/registrations"
	pkgerrors "github.com/hackfesthq/hackfest-backend/pkg/errors"
)

type stubRegisterService struct {
	resp *registrations.RegisterResponse
	err  error
	got  *registrations.RegisterRequest
}

func (s *stubRegisterService) Register(ctx context.Context, req registrations.RegisterRequest) (*registrations.RegisterResponse, error) {
	s.got = &req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func TestRegisterSuccess(t *testing.T) {
	svc := &stubRegisterService{resp: &registrations.RegisterResponse{
		Registration:     &registrations.RegistrationDTO{ID: uuid.New(), Email: "alice@example.com"},
		NotificationSent: true,
	}}
	handler := Register(svc, nil)

	body := []byte(`{
		"full_name": "Alice Tran",
		"email": "alice@example.com",
		"password": "Secret123!",
		"confirm_password": "Secret123!",
		"role": "participant"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if svc.got == nil || svc.got.Email != "alice@example.com" {
		t.Fatalf("unexpected request %+v", svc.got)
	}

	var envelope struct {
		Data struct {
			NotificationSent bool `json:"notification_sent"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.NotificationSent {
		t.Fatal("expected notification_sent in payload")
	}
}

func TestRegisterRejectsMalformedBody(t *testing.T) {
	handler := Register(&stubRegisterService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(`{"email":`)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestRegisterPropagatesConflict(t *testing.T) {
	svc := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	handler := Register(svc, nil)

	body := []byte(`{
		"full_name": "Alice Tran",
		"email": "alice@example.com",
		"password": "Secret123!",
		"confirm_password": "Secret123!",
		"role": "participant"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}
