// internal/catalog/catalog.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/common/metrics"
	"lead-qualifier/internal/models"

	"github.com/go-playground/validator/v10"
)

var fundIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,30}$`)

const fundNamePunctuation = "-_.,()&"

const (
	msgInvalidID   = "ID do fundo contém caracteres inválidos"
	msgInvalidName = "Nome do fundo contém caracteres inválidos"
	msgInvalidTipo = "Tipo de fundo inválido. Deve ser um dos seguintes: constitucional, privado, desenvolvimento, pf"
)

// Catalog is the admin-facing fund registry. Reads go straight to the store;
// writes are validated, stamped and serialized.
type Catalog struct {
	store    Store
	validate *validator.Validate
	logger   logger.Logger
	now      func() time.Time

	mu sync.Mutex
}

func New(store Store, log logger.Logger) *Catalog {
	return &Catalog{
		store:    store,
		validate: NewValidator(),
		logger:   logger.ForComponent(log, "fund-catalog"),
		now:      time.Now,
	}
}

// NewValidator returns a validator with the fund id and name rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("fundid", func(fl validator.FieldLevel) bool {
		return fundIDPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("fundname", func(fl validator.FieldLevel) bool {
		return validFundName(fl.Field().String())
	})
	return v
}

func validFundName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		if !strings.ContainsRune(fundNamePunctuation, r) {
			return false
		}
	}
	return true
}

// Validate checks a fund record and returns INVALID_FUND_SPEC with the first
// caller-facing reason.
func (c *Catalog) Validate(fund models.Fund) error {
	return validateFund(c.validate, fund)
}

func validateFund(v *validator.Validate, fund models.Fund) error {
	err := v.Struct(fund)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewInvalidFundSpecError("Fundo inválido", err.Error())
	}

	fe := verrs[0]
	switch fe.Field() {
	case "ID":
		return apperrors.NewInvalidFundSpecError(msgInvalidID, fe.Error())
	case "Nome":
		return apperrors.NewInvalidFundSpecError(msgInvalidName, fe.Error())
	case "Tipo":
		return apperrors.NewInvalidFundSpecError(msgInvalidTipo, fe.Error())
	default:
		return apperrors.NewInvalidFundSpecError(
			fmt.Sprintf("Critérios do fundo inválidos: %s", fe.Namespace()), fe.Error())
	}
}

func (c *Catalog) List(ctx context.Context) ([]models.Fund, error) {
	return c.store.List(ctx)
}

// ListActive is the evaluation snapshot: every fund with ativo=true.
func (c *Catalog) ListActive(ctx context.Context) ([]models.Fund, error) {
	all, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Fund, 0, len(all))
	for _, f := range all {
		if f.Ativo {
			active = append(active, f)
		}
	}
	return active, nil
}

// Get returns the fund whether or not it is active.
func (c *Catalog) Get(ctx context.Context, id string) (models.Fund, error) {
	return c.store.Get(ctx, id)
}

func (c *Catalog) Create(ctx context.Context, id string, spec models.FundSpec) (models.Fund, error) {
	fund := models.Fund{ID: id, FundSpec: spec}
	if err := c.Validate(fund); err != nil {
		return models.Fund{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fund.AtualizadoEm = c.now().UTC()
	if err := c.store.Insert(ctx, fund); err != nil {
		return models.Fund{}, err
	}
	c.written("create", fund)
	return fund, nil
}

// Update replaces the whole record of an existing fund.
func (c *Catalog) Update(ctx context.Context, id string, spec models.FundSpec) (models.Fund, error) {
	fund := models.Fund{ID: id, FundSpec: spec}
	if err := c.Validate(fund); err != nil {
		return models.Fund{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Funds are never removed, so the record still exists at Put time.
	if _, err := c.store.Get(ctx, id); err != nil {
		return models.Fund{}, err
	}
	fund.AtualizadoEm = c.now().UTC()
	if err := c.store.Put(ctx, fund); err != nil {
		return models.Fund{}, err
	}
	c.written("update", fund)
	return fund, nil
}

// Upsert creates the fund or replaces it when it already exists. The bool
// reports whether a new record was created.
func (c *Catalog) Upsert(ctx context.Context, id string, spec models.FundSpec) (models.Fund, bool, error) {
	fund, err := c.Update(ctx, id, spec)
	if err == nil {
		return fund, false, nil
	}
	if !errors.Is(err, apperrors.ErrFundNotFound) {
		return models.Fund{}, false, err
	}

	fund, err = c.Create(ctx, id, spec)
	if err != nil {
		return models.Fund{}, false, err
	}
	return fund, true, nil
}

// Deactivate marks the fund inactive. The record is kept.
func (c *Catalog) Deactivate(ctx context.Context, id string) (models.Fund, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fund, err := c.store.Get(ctx, id)
	if err != nil {
		return models.Fund{}, err
	}
	fund.Ativo = false
	fund.AtualizadoEm = c.now().UTC()
	if err := c.store.Put(ctx, fund); err != nil {
		return models.Fund{}, err
	}
	c.written("deactivate", fund)
	return fund, nil
}

func (c *Catalog) written(op string, fund models.Fund) {
	metrics.CatalogWrites.WithLabelValues(op).Inc()
	c.logger.Info("fund catalog updated", map[string]interface{}{
		"op":     op,
		"fundId": fund.ID,
		"tipo":   string(fund.Tipo),
		"ativo":  fund.Ativo,
	})
}
