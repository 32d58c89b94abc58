package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("field not found")

type Option func(options *options)

type options struct {
	withDefault  bool
	defaultValue interface{}
}

func WithDefault(value interface{}) Option {
	return func(options *options) {
		options.withDefault = true
		options.defaultValue = value
	}
}

// GetInterface gets the given field irrespective of its type.
// Dots in the field name descend into submaps, so "auth.token" reads token from the auth map.
func GetInterface(config map[string]interface{}, field string) (interface{}, error) {
	current := config
	path := strings.Split(field, ".")
	for i, key := range path {
		element, ok := current[key]
		if !ok {
			return nil, errors.Wrapf(ErrNotFound, "%s", strings.Join(path[:i+1], "."))
		}
		if i == len(path)-1 {
			return element, nil
		}
		submap, ok := element.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("%s should be a map, got %T", strings.Join(path[:i+1], "."), element)
		}
		current = submap
	}
	panic("unreachable")
}

// get reads the field and converts it to T, falling back to the default if the field is missing.
func get[T any](config map[string]interface{}, field string, convert func(interface{}) (T, error), opts []Option) (T, error) {
	var options options
	for _, opt := range opts {
		opt(&options)
	}

	var zero T
	value, err := GetInterface(config, field)
	if err != nil {
		if options.withDefault && errors.Cause(err) == ErrNotFound {
			defaultValue, ok := options.defaultValue.(T)
			if !ok {
				panic(fmt.Sprintf("invalid default value type for %s: %T", field, options.defaultValue))
			}
			return defaultValue, nil
		}
		return zero, err
	}

	out, err := convert(value)
	if err != nil {
		return zero, errors.Wrapf(err, "invalid %s", field)
	}
	return out, nil
}

func GetString(config map[string]interface{}, field string, opts ...Option) (string, error) {
	return get(config, field, func(value interface{}) (string, error) {
		out, ok := value.(string)
		if !ok {
			return "", errors.Errorf("expected string, got %T", value)
		}
		return out, nil
	}, opts)
}

func GetInt(config map[string]interface{}, field string, opts ...Option) (int, error) {
	return get(config, field, func(value interface{}) (int, error) {
		out, ok := value.(int)
		if !ok {
			return 0, errors.Errorf("expected int, got %T", value)
		}
		return out, nil
	}, opts)
}

// GetFloat64 also accepts integers, as YAML decodes "10" as one.
func GetFloat64(config map[string]interface{}, field string, opts ...Option) (float64, error) {
	return get(config, field, func(value interface{}) (float64, error) {
		switch value := value.(type) {
		case float64:
			return value, nil
		case int:
			return float64(value), nil
		}
		return 0, errors.Errorf("expected number, got %T", value)
	}, opts)
}

// GetDuration gets a duration written like "1m30s".
func GetDuration(config map[string]interface{}, field string, opts ...Option) (time.Duration, error) {
	return get(config, field, func(value interface{}) (time.Duration, error) {
		str, ok := value.(string)
		if !ok {
			return 0, errors.Errorf("expected duration string, got %T", value)
		}
		out, err := time.ParseDuration(str)
		if err != nil {
			return 0, errors.Wrap(err, "couldn't parse duration")
		}
		return out, nil
	}, opts)
}

func GetStringList(config map[string]interface{}, field string, opts ...Option) ([]string, error) {
	return get(config, field, func(value interface{}) ([]string, error) {
		list, ok := value.([]interface{})
		if !ok {
			return nil, errors.Errorf("expected list, got %T", value)
		}
		out := make([]string, len(list))
		for i := range list {
			str, ok := list[i].(string)
			if !ok {
				return nil, errors.Errorf("expected string at index %d, got %T", i, list[i])
			}
			out[i] = str
		}
		return out, nil
	}, opts)
}

// GetStringMap gets a map with string values, like a set of HTTP headers.
func GetStringMap(config map[string]interface{}, field string, opts ...Option) (map[string]string, error) {
	return get(config, field, func(value interface{}) (map[string]string, error) {
		m, ok := value.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("expected map, got %T", value)
		}
		out := make(map[string]string, len(m))
		for key, element := range m {
			str, ok := element.(string)
			if !ok {
				return nil, errors.Errorf("expected string value for %s, got %T", key, element)
			}
			out[key] = str
		}
		return out, nil
	}, opts)
}
