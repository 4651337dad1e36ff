package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/api/middleware"
	"github.com/tillworks/tillpoint-backend/api/responses"
	"github.com/tillworks/tillpoint-backend/api/validators"
	"github.com/tillworks/tillpoint-backend/internal/payment"
	"github.com/tillworks/tillpoint-backend/internal/sale"
	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	"github.com/tillworks/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
	"github.com/tillworks/tillpoint-backend/pkg/logger"
	"github.com/tillworks/tillpoint-backend/pkg/metrics"
)

type currentShiftSource interface {
	Current(ctx context.Context) (*models.Shift, error)
}

type checkFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Check, error)
}

type commitCheckItem struct {
	Identifier string `json:"identifier" validate:"required"`
	Quantity   string `json:"quantity" validate:"required"`
}

type commitManualDiscount struct {
	Value        string `json:"value" validate:"required"`
	IsPercentage bool   `json:"is_percentage"`
}

type commitTender struct {
	Type        string `json:"type" validate:"required"`
	Cash        string `json:"cash,omitempty"`
	ConfirmFree bool   `json:"confirm_free,omitempty"`
}

type commitCheckRequest struct {
	Items          []commitCheckItem     `json:"items" validate:"required,min=1,dive"`
	ManualDiscount *commitManualDiscount `json:"manual_discount,omitempty"`
	Tender         commitTender          `json:"tender" validate:"required"`
}

type commitCheckResponse struct {
	Check    *models.Check `json:"check"`
	Warnings []string      `json:"warnings,omitempty"`
}

// CheckCommit rings up a full check: builds lines from the submitted items,
// applies discounts, settles the tender, and persists the result against the
// open shift.
func CheckCommit(checkout sale.CheckoutService, shifts currentShiftSource, m *metrics.RegisterMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checkout == nil || shifts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		cashierID, err := cashierFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body commitCheckRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toCheckoutInput(cashierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shift, err := shifts.Current(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ShiftID = shift.ID

		check, warnings, err := checkout.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncCheckCommitted(check.PaymentType.String())
		responses.WriteSuccessStatus(w, http.StatusCreated, commitCheckResponse{
			Check:    check,
			Warnings: warnings,
		})
	}
}

// CheckFetch returns one persisted check with its lines.
func CheckFetch(checks checkFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checks == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checks unavailable"))
			return
		}

		checkID, err := parseIDParam(r, "checkID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		check, err := checks.FindByID(r.Context(), checkID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, check)
	}
}

func (req commitCheckRequest) toCheckoutInput(cashierID uuid.UUID) (sale.CheckoutInput, error) {
	items := make([]sale.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		quantity, err := decimal.NewFromString(strings.TrimSpace(item.Quantity))
		if err != nil {
			return sale.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quantity")
		}
		items = append(items, sale.CheckoutItem{
			Identifier: strings.TrimSpace(item.Identifier),
			Quantity:   quantity,
		})
	}

	paymentType, err := enums.ParsePaymentType(strings.TrimSpace(req.Tender.Type))
	if err != nil {
		return sale.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tender type")
	}

	tender := payment.Tender{Type: paymentType, ConfirmFree: req.Tender.ConfirmFree}
	if raw := strings.TrimSpace(req.Tender.Cash); raw != "" {
		cash, err := decimal.NewFromString(raw)
		if err != nil {
			return sale.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cash amount")
		}
		tender.Cash = cash
	}

	input := sale.CheckoutInput{
		CashierID: cashierID,
		Items:     items,
		Tender:    tender,
	}

	if req.ManualDiscount != nil {
		value, err := decimal.NewFromString(strings.TrimSpace(req.ManualDiscount.Value))
		if err != nil {
			return sale.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid manual discount")
		}
		input.ManualDiscount = &sale.ManualDiscount{
			Value:        value,
			IsPercentage: req.ManualDiscount.IsPercentage,
		}
	}

	return input, nil
}

func cashierFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	cashierID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return cashierID, nil
}
