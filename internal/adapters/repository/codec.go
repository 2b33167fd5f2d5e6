package repository

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-json"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
)

// encode flattens a record into document fields through its json tags.
func encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return fields, nil
}

// decode is the deserialization boundary for stored documents. Unknown
// fields are rejected, absent fields stay zero and the result must pass
// the record's validate tags.
func decode[T any](fields map[string]any) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		DecodeHook:  mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		Result:      &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(fields); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	// Stored data is not user input: the violation is reported as text so
	// callers never see it as a validation failure.
	if err := model.Validate(out); err != nil {
		return out, fmt.Errorf("decode %T: %v", out, err)
	}
	return out, nil
}
