package cloudapi

import (
	"fmt"
	"reflect"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mitchellh/mapstructure"
)

// decodeRecord maps a loosely typed API record onto a typed struct.
// Timestamps arrive in several formats across CloudAPI versions (with and
// without fractional seconds, with and without zone offsets), so string
// fields targeting time.Time go through dateparse.
func decodeRecord(record map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       timestampHook,
	})
	if err != nil {
		return fmt.Errorf("cloudapi: building record decoder: %w", err)
	}
	if err := decoder.Decode(record); err != nil {
		return fmt.Errorf("cloudapi: decoding record: %w", err)
	}
	return nil
}

func timestampHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := data.(string)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// decodeRecords maps a slice of API records onto a slice of typed structs.
func decodeRecords[T any](records []map[string]interface{}) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, record := range records {
		var item T
		if err := decodeRecord(record, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
