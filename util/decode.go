package util

import (
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// DecodeOther uses mapstructure to decode into target structure. Unused keys cause errors.
func DecodeOther(other, cc interface{}) error {
	return decode(other, cc, true)
}

// DecodeLenient decodes like DecodeOther but ignores unused keys
func DecodeLenient(other, cc interface{}) error {
	return decode(other, cc, false)
}

func decode(other, cc interface{}, strict bool) error {
	decoderConfig := &mapstructure.DecoderConfig{
		Result:           cc,
		ErrorUnused:      strict,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			zeroTimeHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err == nil {
		err = decoder.Decode(other)
	}

	return err
}

// zeroTimeHookFunc maps empty strings to the zero time
func zeroTimeHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(time.Time{}) {
			return data, nil
		}
		if data.(string) == "" {
			return time.Time{}, nil
		}
		return data, nil
	}
}
