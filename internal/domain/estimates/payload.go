package estimates

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ImportPayload is the importer's normalized output for one estimate file.
// The same shape carries baselines (mode=project) and offers (mode=offer).
type ImportPayload struct {
	Groups   []GroupPayload   `json:"groups" yaml:"groups" validate:"dive"`
	Catalog  []CatalogPayload `json:"catalog" yaml:"catalog" validate:"dive"`
	Estimate EstimatePayload  `json:"estimate" yaml:"estimate" validate:"required"`
}

type GroupPayload struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	ParentID    string `json:"parent_id,omitempty" yaml:"parent_id"`
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
	Level       int    `json:"level" yaml:"level" validate:"gte=0"`
}

type CatalogPayload struct {
	ID              string   `json:"id" yaml:"id" validate:"required"`
	Code            string   `json:"code" yaml:"code"`
	Description     string   `json:"description" yaml:"description"`
	LongDescription string   `json:"long_description,omitempty" yaml:"long_description"`
	Unit            string   `json:"unit" yaml:"unit"`
	Price           float64  `json:"price" yaml:"price" validate:"finite"`
	GroupIDs        []string `json:"group_ids,omitempty" yaml:"group_ids"`
}

type EstimatePayload struct {
	Name        string        `json:"name" yaml:"name" validate:"required"`
	Mode        EstimateKind  `json:"mode" yaml:"mode" validate:"required,oneof=project offer"`
	Company     string        `json:"company,omitempty" yaml:"company"`
	RoundNumber int           `json:"round_number,omitempty" yaml:"round_number" validate:"gte=0"`
	Items       []ItemPayload `json:"items" yaml:"items" validate:"dive"`
}

// ItemPayload is a line item. Detailed rows key on Progressive; aggregated
// rows key on Code/Description/LongDescription. Absent prices stay nil.
type ItemPayload struct {
	ID              string   `json:"id,omitempty" yaml:"id"`
	CatalogID       string   `json:"catalog_id,omitempty" yaml:"catalog_id"`
	Progressive     *int     `json:"progressive,omitempty" yaml:"progressive"`
	Code            string   `json:"code,omitempty" yaml:"code"`
	Description     string   `json:"description,omitempty" yaml:"description"`
	LongDescription string   `json:"long_description,omitempty" yaml:"long_description"`
	Unit            string   `json:"unit,omitempty" yaml:"unit"`
	UnitPrice       *float64 `json:"unit_price,omitempty" yaml:"unit_price" validate:"omitnil,finite"`
	Quantity        float64  `json:"quantity" yaml:"quantity" validate:"finite"`
	Amount          *float64 `json:"amount,omitempty" yaml:"amount" validate:"omitnil,finite"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func payloadValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("finite", finiteNumber)
	})
	return validate
}

// finiteNumber rejects NaN and ±Inf, which YAML can express as .nan/.inf.
func finiteNumber(fl validator.FieldLevel) bool {
	switch f := fl.Field(); f.Kind() {
	case reflect.Float32, reflect.Float64:
		v := f.Float()
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	return true
}

// Validate checks structural constraints only. Data quality problems in the
// rows themselves are reported by reconciliation, not rejected here.
func (p *ImportPayload) Validate() error {
	if p == nil {
		return errors.New("payload is required")
	}
	if err := payloadValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New("invalid payload: " + strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
