package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldStrategy is the structured log field key for the scoring strategy.
	FieldStrategy = "strategy"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
	// FieldJob identifies the job a résumé is scored against.
	FieldJob = "job_id"
	// FieldApplication identifies the scored application.
	FieldApplication = "application_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the provided fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// StrategyFields describes the scoring strategy and, for remote scoring, the model.
func StrategyFields(strategy, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldStrategy, Value: strategy},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithStrategy attaches the strategy fields to the provided logger.
func WithStrategy(logger *zap.Logger, strategy, model string) *zap.Logger {
	return WithFields(logger, StrategyFields(strategy, model)...)
}

// TargetFields identifies the job and application of a scoring call.
func TargetFields(jobID, applicationID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldJob, Value: jobID},
		StringField{Key: FieldApplication, Value: applicationID},
	)
}
