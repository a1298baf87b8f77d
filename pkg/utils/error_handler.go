package utils

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrorHandler logs err with context and wraps it; a nil err passes through.
func ErrorHandler(err error, message string) error {
	if err != nil {
		Logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error(message)
		return fmt.Errorf("%s: %w", message, err)
	}
	return nil
}
