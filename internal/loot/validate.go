package loot

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func validateLuck(p float64) error {
	if math.IsNaN(p) {
		return ErrInvalidLuck
	}
	return nil
}

func validateDrop(d Drop) error {
	if err := validateLuck(d.Luck); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDrop, err)
	}
	if err := structValidator().Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalidDrop, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s%s", strings.ToLower(e.Namespace()), e.Tag(), paramSuffix(e.Param())))
		}
		return fmt.Errorf("%w: %s", ErrInvalidDrop, strings.Join(msgs, "; "))
	}
	return nil
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

// ValidateDrops checks every drop, naming the first offending index.
func ValidateDrops(drops []Drop) error {
	for i, d := range drops {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("drops[%d]: %w", i, err)
		}
	}
	return nil
}

func mustValidateDrops(drops []Drop) {
	if err := ValidateDrops(drops); err != nil {
		panic(err)
	}
}
