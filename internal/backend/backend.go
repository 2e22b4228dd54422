// Package backend exposes one typed API per backend resource. Every method goes through
// apiclient and returns a domain.Result.
package backend

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/baechuer/careportal/internal/apiclient"
	"github.com/baechuer/careportal/internal/domain"
)

// Requester is the slice of apiclient.Client the resource APIs need.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values) domain.Result[json.RawMessage]
	Post(ctx context.Context, path string, body any) domain.Result[json.RawMessage]
	Put(ctx context.Context, path string, body any) domain.Result[json.RawMessage]
	Patch(ctx context.Context, path string, body any) domain.Result[json.RawMessage]
	Delete(ctx context.Context, path string) domain.Result[json.RawMessage]
}

// APIs bundles every resource API over one client.
type APIs struct {
	Auth      *AuthAPI
	Patient   *PatientAPI
	Doctor    *DoctorAPI
	Assistant *AssistantAPI
	Admin     *AdminAPI
	Clinics   *ClinicAPI
	Messages  *MessageAPI
	Uploads   *UploadAPI
}

func NewAPIs(c *apiclient.Client, uploadURL string) *APIs {
	return &APIs{
		Auth:      NewAuthAPI(c),
		Patient:   NewPatientAPI(c),
		Doctor:    NewDoctorAPI(c),
		Assistant: NewAssistantAPI(c),
		Admin:     NewAdminAPI(c),
		Clinics:   NewClinicAPI(c),
		Messages:  NewMessageAPI(c),
		Uploads:   NewUploadAPI(c, uploadURL),
	}
}

// get is Get followed by Decode.
func get[T any](ctx context.Context, r Requester, path string, query url.Values) domain.Result[T] {
	return apiclient.Decode[T](r.Get(ctx, path, query))
}

func post[T any](ctx context.Context, r Requester, path string, body any) domain.Result[T] {
	return apiclient.Decode[T](r.Post(ctx, path, body))
}

func put[T any](ctx context.Context, r Requester, path string, body any) domain.Result[T] {
	return apiclient.Decode[T](r.Put(ctx, path, body))
}

func patch[T any](ctx context.Context, r Requester, path string, body any) domain.Result[T] {
	return apiclient.Decode[T](r.Patch(ctx, path, body))
}

func del(ctx context.Context, r Requester, path string) domain.Result[struct{}] {
	return apiclient.Decode[struct{}](r.Delete(ctx, path))
}

func seg(id string) string { return url.PathEscape(id) }
