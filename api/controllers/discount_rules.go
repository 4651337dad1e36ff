package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/tillpoint-backend/api/responses"
	"github.com/tillworks/tillpoint-backend/api/validators"
	"github.com/tillworks/tillpoint-backend/pkg/db/models"
	"github.com/tillworks/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillpoint-backend/pkg/errors"
	"github.com/tillworks/tillpoint-backend/pkg/logger"
)

type ruleStore interface {
	List(ctx context.Context) ([]models.DiscountRule, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error)
	Create(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error)
	Update(ctx context.Context, rule *models.DiscountRule) (*models.DiscountRule, error)
}

type createDiscountRuleRequest struct {
	Name              string     `json:"name" validate:"required"`
	Kind              string     `json:"kind" validate:"required"`
	Value             string     `json:"value,omitempty"`
	RequiredProductID *uuid.UUID `json:"required_product_id,omitempty"`
	GiftProductID     *uuid.UUID `json:"gift_product_id,omitempty"`
	GiftQty           *string    `json:"gift_qty,omitempty"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
	EndsAt            *time.Time `json:"ends_at,omitempty"`
	IsActive          *bool      `json:"is_active,omitempty"`
}

type updateDiscountRuleRequest struct {
	Name     *string    `json:"name,omitempty"`
	Value    *string    `json:"value,omitempty"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}

// DiscountRuleList returns every configured rule, newest first.
func DiscountRuleList(rules ruleStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rules == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount rules unavailable"))
			return
		}

		list, err := rules.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// DiscountRuleCreate adds a new automatic discount rule.
func DiscountRuleCreate(rules ruleStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rules == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount rules unavailable"))
			return
		}

		var body createDiscountRuleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := body.toModel()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := rules.Create(r.Context(), rule)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// DiscountRuleUpdate edits an existing rule. The kind and product bindings
// are fixed at creation; only value, window, name, and the active flag move.
func DiscountRuleUpdate(rules ruleStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rules == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount rules unavailable"))
			return
		}

		ruleID, err := parseIDParam(r, "ruleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateDiscountRuleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := rules.FindByID(r.Context(), ruleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty"))
				return
			}
			rule.Name = name
		}
		if body.Value != nil {
			value, err := parseRuleValue(rule.Kind, *body.Value)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			rule.Value = value
		}
		if body.StartsAt != nil {
			rule.StartsAt = body.StartsAt
		}
		if body.EndsAt != nil {
			rule.EndsAt = body.EndsAt
		}
		if body.IsActive != nil {
			rule.IsActive = *body.IsActive
		}

		updated, err := rules.Update(r.Context(), rule)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

func (req createDiscountRuleRequest) toModel() (*models.DiscountRule, error) {
	kind, err := enums.ParseDiscountKind(strings.TrimSpace(req.Kind))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind")
	}

	rule := &models.DiscountRule{
		Name:              validators.SanitizeString(req.Name, 200),
		Kind:              kind,
		RequiredProductID: req.RequiredProductID,
		GiftProductID:     req.GiftProductID,
		GiftQty:           decimal.NewFromInt(1),
		StartsAt:          req.StartsAt,
		EndsAt:            req.EndsAt,
		IsActive:          true,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	switch kind {
	case enums.DiscountKindGift:
		if rule.GiftProductID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift rules require gift_product_id")
		}
		if req.GiftQty != nil {
			qty, err := decimal.NewFromString(strings.TrimSpace(*req.GiftQty))
			if err != nil || !qty.IsPositive() {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift_qty must be a positive number")
			}
			rule.GiftQty = qty
		}
	default:
		value, err := parseRuleValue(kind, req.Value)
		if err != nil {
			return nil, err
		}
		rule.Value = value
	}

	return rule, nil
}

func parseRuleValue(kind enums.DiscountKind, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid value")
	}
	if value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "value must not be negative")
	}
	if kind == enums.DiscountKindPercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "percentage must not exceed 100")
	}
	return value, nil
}
