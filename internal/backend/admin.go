package backend

import (
	"context"
	"net/url"

	"github.com/baechuer/careportal/internal/domain"
)

type AdminAPI struct {
	r Requester
}

func NewAdminAPI(r Requester) *AdminAPI { return &AdminAPI{r: r} }

func (a *AdminAPI) Stats(ctx context.Context) domain.Result[domain.DashboardStats] {
	return get[domain.DashboardStats](ctx, a.r, "/admin/stats", nil)
}

func (a *AdminAPI) Users(ctx context.Context, query url.Values) domain.Result[domain.PaginatedResponse[domain.User]] {
	return get[domain.PaginatedResponse[domain.User]](ctx, a.r, "/admin/users", query)
}

func (a *AdminAPI) CreateUser(ctx context.Context, in domain.UserInput) domain.Result[domain.User] {
	return post[domain.User](ctx, a.r, "/admin/users", in)
}

func (a *AdminAPI) UpdateUser(ctx context.Context, id string, in domain.UserInput) domain.Result[domain.User] {
	return put[domain.User](ctx, a.r, "/admin/users/"+seg(id), in)
}

func (a *AdminAPI) DeleteUser(ctx context.Context, id string) domain.Result[struct{}] {
	return del(ctx, a.r, "/admin/users/"+seg(id))
}

type ClinicAPI struct {
	r Requester
}

func NewClinicAPI(r Requester) *ClinicAPI { return &ClinicAPI{r: r} }

func (c *ClinicAPI) List(ctx context.Context, query url.Values) domain.Result[[]domain.Clinic] {
	return get[[]domain.Clinic](ctx, c.r, "/clinics", query)
}

func (c *ClinicAPI) Get(ctx context.Context, id string) domain.Result[domain.Clinic] {
	return get[domain.Clinic](ctx, c.r, "/clinics/"+seg(id), nil)
}

func (c *ClinicAPI) Create(ctx context.Context, in domain.ClinicInput) domain.Result[domain.Clinic] {
	return post[domain.Clinic](ctx, c.r, "/clinics", in)
}

func (c *ClinicAPI) Update(ctx context.Context, id string, in domain.ClinicInput) domain.Result[domain.Clinic] {
	return put[domain.Clinic](ctx, c.r, "/clinics/"+seg(id), in)
}

func (c *ClinicAPI) Delete(ctx context.Context, id string) domain.Result[struct{}] {
	return del(ctx, c.r, "/clinics/"+seg(id))
}
