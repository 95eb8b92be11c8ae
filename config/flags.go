package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/pflag"
)

var durationType = reflect.TypeOf(time.Duration(0))

// RegisterFlags adds one flag per koanf tagged field of Config.
// Flag names, shorthands and usage are taken from the koanf, short and description tags.
func RegisterFlags(flags *pflag.FlagSet, defaults Config) error {
	v := reflect.ValueOf(defaults)
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("koanf")
		if name == "" || name == "-" {
			continue
		}
		short := field.Tag.Get("short")
		usage := field.Tag.Get("description")
		value := v.Field(i)

		switch {
		case field.Type == durationType:
			flags.DurationP(name, short, time.Duration(value.Int()), usage)
		case field.Type.Kind() == reflect.String:
			flags.StringP(name, short, value.String(), usage)
		case field.Type.Kind() == reflect.Bool:
			flags.BoolP(name, short, value.Bool(), usage)
		default:
			return fmt.Errorf("unsupported flag type %s of field %s", field.Type, field.Name)
		}
	}

	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if alias, found := aliases[name]; found {
			name = alias
		}
		return pflag.NormalizedName(name)
	})
	return nil
}

func knownKeys() map[string]bool {
	t := reflect.TypeOf(Config{})
	keys := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("koanf")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}
