package handlers

import (
	"errors"
	"reflect"
	"time"

	"triptally/pkg/utils"
)

// CheckBlankFields rejects a payload with any empty string field.
func CheckBlankFields(value interface{}) error {
	val := reflect.ValueOf(value)
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if field.Kind() == reflect.String && field.String() == "" {
			return utils.ErrorHandler(errors.New("all fields are required"), "all fields are required")
		}
	}
	return nil
}

// ParseDate accepts the two datetime shapes clients send.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
