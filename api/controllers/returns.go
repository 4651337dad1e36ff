package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/api/responses"
	"github.com/tillworks/tillpoint-backend/api/validators"
	"github.com/tillworks/tillpoint-backend/internal/returns"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
	"github.com/tillworks/tillpoint-backend/pkg/logger"
	"github.com/tillworks/tillpoint-backend/pkg/metrics"
)

type returnItemRequest struct {
	OriginalLineID uuid.UUID `json:"original_line_id" validate:"required"`
	Quantity       string    `json:"quantity" validate:"required"`
}

type createReturnRequest struct {
	OriginalCheckID uuid.UUID           `json:"original_check_id" validate:"required"`
	Items           []returnItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReturnCreate resolves a return against an original sale: scaled discounts,
// refund channels derived from the original payment, and restocked items.
func ReturnCreate(svc returns.Service, shifts currentShiftSource, m *metrics.RegisterMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || shifts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns unavailable"))
			return
		}

		cashierID, err := cashierFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createReturnRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]returns.ReturnItem, 0, len(body.Items))
		for _, item := range body.Items {
			quantity, err := decimal.NewFromString(strings.TrimSpace(item.Quantity))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quantity"))
				return
			}
			items = append(items, returns.ReturnItem{
				OriginalLineID: item.OriginalLineID,
				Quantity:       quantity,
			})
		}

		shift, err := shifts.Current(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		check, err := svc.Resolve(r.Context(), returns.ReturnInput{
			OriginalCheckID: body.OriginalCheckID,
			ShiftID:         shift.ID,
			CashierID:       cashierID,
			Items:           items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncReturnResolved(check.PaymentType.String())
		responses.WriteSuccessStatus(w, http.StatusCreated, check)
	}
}
