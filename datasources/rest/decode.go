package rest

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/cube2222/octorest/octosql"
)

// DecodeValue converts a JSON value to the given type. Missing values, and values of the wrong type, are null.
func DecodeValue(t octosql.Type, value *fastjson.Value) octosql.Value {
	if value == nil || value.Type() == fastjson.TypeNull {
		return octosql.NewNull()
	}

	switch t.TypeID {
	case octosql.TypeIDInt:
		if value.Type() == fastjson.TypeNumber {
			if v, err := value.Int(); err == nil {
				return octosql.NewInt(v)
			}
		}
	case octosql.TypeIDFloat:
		if value.Type() == fastjson.TypeNumber {
			v, _ := value.Float64()
			return octosql.NewFloat(v)
		}
	case octosql.TypeIDBoolean:
		if value.Type() == fastjson.TypeTrue {
			return octosql.NewBoolean(true)
		} else if value.Type() == fastjson.TypeFalse {
			return octosql.NewBoolean(false)
		}
	case octosql.TypeIDString:
		if value.Type() == fastjson.TypeString {
			v, _ := value.StringBytes()
			return octosql.NewString(string(v))
		}
	case octosql.TypeIDTime:
		if value.Type() == fastjson.TypeString {
			v, _ := value.StringBytes()
			if parsed, err := time.Parse(time.RFC3339Nano, string(v)); err == nil {
				return octosql.NewTime(parsed.UTC())
			}
		}
	case octosql.TypeIDList:
		if value.Type() == fastjson.TypeArray {
			arr, _ := value.Array()
			values := make([]octosql.Value, len(arr))
			for i := range arr {
				values[i] = DecodeValue(*t.List.Element, arr[i])
			}
			return octosql.NewList(values)
		}
	case octosql.TypeIDUnion:
		return DecodeValue(t.Primitive(), value)
	}

	return octosql.NewNull()
}

// ParseEpochTimestamp parses timestamps like "1704164645.000100", seconds since the epoch with a fractional part.
func ParseEpochTimestamp(value *fastjson.Value) (octosql.Value, error) {
	if value == nil || value.Type() == fastjson.TypeNull {
		return octosql.NewNull(), nil
	}
	if value.Type() != fastjson.TypeString {
		return octosql.Value{}, errors.Errorf("expected epoch timestamp string, got %s", value.Type())
	}
	t, err := ParseEpoch(string(value.GetStringBytes()))
	if err != nil {
		return octosql.Value{}, err
	}
	return octosql.NewTime(t), nil
}

// ParseEpoch parses seconds since the epoch with an optional fractional part, like "-1.5".
func ParseEpoch(s string) (time.Time, error) {
	unsigned, negative := strings.CutPrefix(s, "-")
	secondsPart, fractionPart, _ := strings.Cut(unsigned, ".")
	if !isDigits(secondsPart) || (fractionPart != "" && !isDigits(fractionPart)) {
		return time.Time{}, errors.Errorf("invalid epoch timestamp %s", s)
	}
	seconds, err := strconv.ParseInt(secondsPart, 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid epoch timestamp %s", s)
	}
	var nanos int64
	if fractionPart != "" {
		if len(fractionPart) > 9 {
			fractionPart = fractionPart[:9]
		}
		nanos, _ = strconv.ParseInt(fractionPart+strings.Repeat("0", 9-len(fractionPart)), 10, 64)
	}
	if negative {
		seconds, nanos = -seconds, -nanos
	}
	return time.Unix(seconds, nanos).UTC(), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := range s {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
