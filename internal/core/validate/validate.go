// Package validate turns raw source launches into canonical records
// Each record is judged alone; a rejection never aborts the batch
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"launchpipe/internal/core/launch"
	"launchpipe/internal/core/normalize"
	ptime "launchpipe/internal/platform/time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// candidate is the tagged shape validator/v10 checks
// the field order sets which reason wins when a record breaks several rules
type candidate struct {
	ID         string           `json:"id" validate:"required"`
	DateUTC    string           `json:"date_utc" validate:"required,utc_timestamp"`
	StaticFire *string          `json:"static_fire_date_utc" validate:"omitempty,utc_timestamp"`
	MassKg     *decimal.Decimal `json:"payload_mass_kg" validate:"omitempty,gte=0"`
}

var (
	vOnce sync.Once
	vInst *validator.Validate
)

func engine() *validator.Validate {
	vOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			return name
		})
		// decimals compare as floats so gte works on them
		v.RegisterCustomTypeFunc(func(f reflect.Value) any {
			d, ok := f.Interface().(decimal.Decimal)
			if !ok {
				return nil
			}
			return d.InexactFloat64()
		}, decimal.Decimal{})
		_ = v.RegisterValidation("utc_timestamp", func(fl validator.FieldLevel) bool {
			_, err := ptime.ParseUTC(fl.Field().String())
			return err == nil
		})
		vInst = v
	})
	return vInst
}

// Validate splits raw into records and rejections, preserving input order in both
func Validate(raw []launch.RawRecord) (valid []launch.Record, rejected []launch.Rejection) {
	valid = make([]launch.Record, 0, len(raw))
	for _, r := range raw {
		rec, rej := One(r)
		if rej != nil {
			rejected = append(rejected, *rej)
			continue
		}
		valid = append(valid, rec)
	}
	return valid, rejected
}

// One validates a single raw record
func One(r launch.RawRecord) (launch.Record, *launch.Rejection) {
	c := candidate{
		ID:         strings.TrimSpace(r.ID),
		DateUTC:    strings.TrimSpace(r.DateUTC),
		StaticFire: r.StaticFireDateUTC,
		MassKg:     r.PayloadMassKg,
	}
	if err := engine().Struct(c); err != nil {
		return launch.Record{}, rejection(c.ID, err)
	}

	// the tags above already proved these parse
	date, _ := ptime.ParseUTC(c.DateUTC)
	rec := launch.Record{
		ID:          c.ID,
		Name:        normalize.Name(r.Name),
		DateUTC:     date,
		Success:     r.Success,
		PayloadIDs:  normalize.IDs(r.Payloads),
		LaunchpadID: trimmedPtr(r.LaunchpadID),
	}
	if c.StaticFire != nil && strings.TrimSpace(*c.StaticFire) != "" {
		sf, _ := ptime.ParseUTC(*c.StaticFire)
		rec.StaticFireUTC = &sf
	}
	if c.MassKg != nil {
		rec.PayloadMassKg = decimal.NullDecimal{Decimal: *c.MassKg, Valid: true}
	}
	return rec, nil
}

func rejection(id string, err error) *launch.Rejection {
	out := &launch.Rejection{ID: id, Reason: launch.ReasonMissingField, Detail: err.Error()}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return out
	}
	fe := verrs[0]
	out.Field = fe.Field()
	out.Detail = fe.Error()
	switch {
	case fe.Tag() == "required":
		out.Reason = launch.ReasonMissingField
	case fe.Tag() == "utc_timestamp":
		out.Reason = launch.ReasonBadTimestamp
	case fe.Field() == "payload_mass_kg":
		out.Reason = launch.ReasonNegativeMass
	}
	return out
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// CountByReason tallies rejections for the run report
func CountByReason(rejected []launch.Rejection) map[launch.RejectReason]int {
	out := make(map[launch.RejectReason]int, 3)
	for _, r := range rejected {
		out[r.Reason]++
	}
	return out
}
