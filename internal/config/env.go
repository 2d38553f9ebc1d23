package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// LookupFunc resolves an environment variable. os.LookupEnv in production.
type LookupFunc func(key string) (string, bool)

// envBinding ties one config field to the variable named in its env tag
type envBinding struct {
	name  string
	path  string
	value reflect.Value
}

// envBindings lists every env-tagged field of cfg, with its dotted yaml path
// (e.g. "session.secure") for error messages.
func envBindings(cfg *Config) []envBinding {
	var out []envBinding
	collectBindings(reflect.ValueOf(cfg).Elem(), "", &out)
	return out
}

func collectBindings(v reflect.Value, prefix string, out *[]envBinding) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		path := strings.TrimPrefix(prefix+"."+strings.SplitN(sf.Tag.Get("yaml"), ",", 2)[0], ".")

		if sf.Type.Kind() == reflect.Struct {
			collectBindings(v.Field(i), path, out)
			continue
		}
		if name := sf.Tag.Get("env"); name != "" {
			*out = append(*out, envBinding{name: name, path: path, value: v.Field(i)})
		}
	}
}

// applyEnv overrides cfg with every variable lookup knows about. All bad
// values are reported together rather than stopping at the first.
func applyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error
	for _, b := range envBindings(cfg) {
		raw, ok := lookup(b.name)
		if !ok {
			continue
		}
		if err := setValue(b.value, raw); err != nil {
			errs = append(errs, fmt.Errorf("%s (%s=%q): %w", b.path, b.name, raw, err))
		}
	}
	return errors.Join(errs...)
}

// setValue handles the field kinds Config uses: text, whole numbers and flags.
func setValue(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer format")
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := parseFlag(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}

// parseFlag accepts strconv's booleans plus yes/no and on/off, which is what
// people tend to write in .env files.
func parseFlag(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("invalid boolean format")
	}
	return b, nil
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return applyEnv(config, os.LookupEnv)
}
