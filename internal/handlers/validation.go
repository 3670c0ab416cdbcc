package handlers

import (
	"regexp"

	"github.com/google/uuid"
)

// Brazilian mobile format, e.g. "(11) 91234-5678".
var phonePattern = regexp.MustCompile(`^\(\d{2}\) 9\d{4}-\d{4}$`)

func validPhone(s string) bool {
	return phonePattern.MatchString(s)
}

func validID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
