package backend

import (
	"context"
	"io"

	"github.com/baechuer/careportal/internal/apiclient"
	"github.com/baechuer/careportal/internal/domain"
)

// UploadAPI forwards already validated files to the backend upload endpoint.
type UploadAPI struct {
	c      *apiclient.Client
	target string
}

func NewUploadAPI(c *apiclient.Client, target string) *UploadAPI {
	if target == "" {
		target = c.BaseURL() + "/upload"
	}
	return &UploadAPI{c: c, target: target}
}

func (u *UploadAPI) Upload(ctx context.Context, filename, contentType string, content io.Reader) domain.Result[domain.UploadResult] {
	return apiclient.Decode[domain.UploadResult](u.c.Upload(ctx, u.target, filename, contentType, content))
}
