package utils

import (
	"fmt"
	"os"
	"strconv"
)

type Env interface {
	uint | bool | string
}

// LookupEnv returns the parsed value of key and whether it was set.
func LookupEnv[T Env](key string) (T, bool, error) {
	var retVal T

	val, ok := os.LookupEnv(key)
	if !ok {
		return retVal, false, nil
	}

	if err := parseEnv(&retVal, val); err != nil {
		return retVal, true, fmt.Errorf("error: parsing env %s=%s: %w", key, val, err)
	}

	return retVal, true, nil
}

func GetEnv[T Env](key string, defaultVal string, required bool) T {
	var retVal T

	val, ok := os.LookupEnv(key)
	if !ok {
		if required {
			panic(fmt.Sprintf("env %s is required", key))
		}

		val = defaultVal
	}

	if err := parseEnv(&retVal, val); err != nil {
		panic(fmt.Sprintf("error: parsing env %s=%s", key, val))
	}

	return retVal
}

func parseEnv[T Env](retVal *T, val string) error {
	switch ptr := any(retVal).(type) {
	case *uint:
		parsedVal, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return err
		}

		*ptr = uint(parsedVal)
	case *bool:
		parsedVal, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		*ptr = parsedVal
	case *string:
		*ptr = val
	}

	return nil
}
