package core

import (
	"errors"
	"fmt"
	"strings"
)

// Meal names one of the two daily slots.
type Meal string

const (
	Morning Meal = "morning"
	Evening Meal = "evening"
)

var ErrInvalidMeal = errors.New("invalid meal")

// ParseMeal accepts "morning"/"evening" in any case.
func ParseMeal(s string) (Meal, error) {
	switch Meal(strings.ToLower(strings.TrimSpace(s))) {
	case Morning:
		return Morning, nil
	case Evening:
		return Evening, nil
	default:
		return "", fmt.Errorf("%w %q: must be morning or evening", ErrInvalidMeal, s)
	}
}
