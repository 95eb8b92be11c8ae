package config

import (
	"fmt"
	"strings"

	"github.com/jxsl13/attr-state/model"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables, e.g. ATTR_LOG_LEVEL.
const EnvPrefix = "ATTR_"

var aliases = map[string]string{
	"name": "path",
}

var boolKeys = map[string]bool{
	"recursive": true,
	"check":     true,
}

// Load merges defaults, environment, key=value arguments and flags, in that order.
// Flags override everything, but only if they were set explicitly.
func Load(flags *pflag.FlagSet, args []string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	moduleArgs, err := ParseModuleArgs(args)
	if err != nil {
		return nil, err
	}
	if err := k.Load(confmap.Provider(moduleArgs, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load arguments: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, &model.ValidationError{Msg: fmt.Sprintf("invalid configuration: %v", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps ATTR_LOG_LEVEL to log-level.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	key = strings.ReplaceAll(key, "_", "-")
	if alias, found := aliases[key]; found {
		return alias
	}
	return key
}

// ParseModuleArgs converts positional key=value arguments, as in
// "path=/etc/foo.conf attr=i state=absent recursive=yes", into a flat map.
func ParseModuleArgs(args []string) (map[string]interface{}, error) {
	known := knownKeys()
	result := make(map[string]interface{}, len(args))

	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, &model.ValidationError{Msg: fmt.Sprintf("invalid argument %q: expected key=value", arg)}
		}
		if alias, ok := aliases[key]; ok {
			key = alias
		}
		if !known[key] {
			return nil, &model.ValidationError{Field: key, Msg: fmt.Sprintf("unsupported parameter %q", key)}
		}

		if boolKeys[key] {
			b, err := parseBool(value)
			if err != nil {
				return nil, &model.ValidationError{Field: key, Msg: fmt.Sprintf("invalid value for %s: %v", key, err)}
			}
			result[key] = b
			continue
		}
		result[key] = value
	}
	return result, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "on", "1":
		return true, nil
	case "no", "n", "false", "off", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", s)
}
