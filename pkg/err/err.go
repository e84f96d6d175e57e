package errprocess

import (
	"errors"
	"fmt"

	"trading_hub/pkg/logger"

	"go.uber.org/zap"
)

// Set log errMsg and return it as an error
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// Wrap log err under op and return it wrapped, nil stays nil
func Wrap(op string, err error, fields ...zap.Field) error {
	if err == nil {
		return nil
	}
	logger.Log.Error(op, append(fields, zap.Error(err))...)
	return fmt.Errorf("%s: %w", op, err)
}
