package backend

import (
	"context"
	"net/url"

	"github.com/baechuer/careportal/internal/domain"
)

type AssistantAPI struct {
	r Requester
}

func NewAssistantAPI(r Requester) *AssistantAPI { return &AssistantAPI{r: r} }

func (a *AssistantAPI) Dashboard(ctx context.Context) domain.Result[domain.DashboardStats] {
	return get[domain.DashboardStats](ctx, a.r, "/assistant/dashboard", nil)
}

func (a *AssistantAPI) Appointments(ctx context.Context, query url.Values) domain.Result[[]domain.Appointment] {
	return get[[]domain.Appointment](ctx, a.r, "/assistant/appointments", query)
}

func (a *AssistantAPI) CheckIn(ctx context.Context, id string) domain.Result[domain.Appointment] {
	return post[domain.Appointment](ctx, a.r, "/assistant/appointments/"+seg(id)+"/check-in", nil)
}
