package telemetry

import "codeberg.org/mutker/producflow/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig   = errors.ErrorCode("telemetry_invalid_config")
	ErrInvalidInterval = errors.ErrInvalidInterval

	// Collection Errors
	ErrInvalidTopic   = errors.ErrorCode("telemetry_invalid_topic")
	ErrInvalidPayload = errors.ErrorCode("telemetry_invalid_payload")

	// Broker Errors
	ErrBrokerConnect   = errors.ErrorCode("telemetry_broker_connect_failed")
	ErrBrokerSubscribe = errors.ErrorCode("telemetry_broker_subscribe_failed")

	// Operation Errors
	ErrOperationTimeout = errors.ErrTimeout
)
