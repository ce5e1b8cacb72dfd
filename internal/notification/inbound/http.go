package inbound

import (
	"context"

	"github.com/shandysiswandi/isaback/internal/notification/usecase"
	"github.com/shandysiswandi/isaback/internal/pkg/router"
	"github.com/shandysiswandi/isaback/internal/shared/job"
)

type uc interface {
	SendMailError(ctx context.Context, n job.Notification[job.ErrorData]) error
	SendMailJobError(ctx context.Context, n job.Notification[job.ErrorData]) error
	SendMailForgotPassword(ctx context.Context, n job.Notification[job.ForgotPasswordData]) error
	SendSmsForgotPassword(ctx context.Context, n job.Notification[job.ForgotPasswordData]) error

	DeliveryList(ctx context.Context, in usecase.DeliveryListInput) (*usecase.DeliveryListOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/v1/notifications/deliveries", end.DeliveryList)
}

type HTTPEndpoint struct {
	uc uc
}

// @Summary List notification deliveries
// @Description Returns the latest mail and SMS delivery attempts.
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page, starting at 1"
// @Param size query int false "Page size, up to 100"
// @Success 200 {object} router.successResponse{data=DeliveriesResponse}
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Router /api/v1/notifications/deliveries [get]
func (h *HTTPEndpoint) DeliveryList(r *router.Request) (any, error) {
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.DeliveryList(r.Context(), usecase.DeliveryListInput{Page: page, Size: size})
	if err != nil {
		return nil, err
	}

	items := make([]DeliveryResponse, 0, len(resp.Deliveries))
	for _, d := range resp.Deliveries {
		items = append(items, DeliveryResponse{
			ID:        d.ID,
			Job:       d.JobName,
			Channel:   d.Channel.String(),
			Recipient: d.Recipient,
			Status:    d.Status.String(),
			Error:     d.Error,
			Meta:      d.Meta,
			CreatedAt: d.CreatedAt,
		})
	}

	return DeliveriesResponse{Deliveries: items, total: resp.Total, page: resp.Page, size: resp.Size}, nil
}
