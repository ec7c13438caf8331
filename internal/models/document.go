package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// DecodeFields copies stored document fields into out, which must be a pointer
// to one of the model structs. Timestamps are accepted as RFC 3339 strings.
func DecodeFields(fields map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
		Result: out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(fields); err != nil {
		return fmt.Errorf("decode document fields: %w", err)
	}
	return nil
}
