package utils

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var ErrEmptyPayload = errors.New("empty payload")

// DecodePayload converts a loosely typed message payload (usually a map
// produced by a JSON decoder) into T.
func DecodePayload[T any](v any) (T, error) {
	if v == nil {
		return *new(T), ErrEmptyPayload
	}
	if result, ok := v.(T); ok {
		return result, nil
	}
	data, err := jsoniter.Marshal(v)
	if err != nil {
		return *new(T), errors.WithMessage(err, "marshal json")
	}
	var result T
	if err := jsoniter.Unmarshal(data, &result); err != nil {
		return *new(T), errors.WithMessage(err, "unmarshal json")
	}
	return result, nil
}
