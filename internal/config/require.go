package config

import (
	"fmt"
	"log"
	"strings"
)

type Field struct {
	Env string
	Set bool
}

func Str(env, v string) Field { return Field{Env: env, Set: v != ""} }

func Bytes(env string, v []byte) Field { return Field{Env: env, Set: len(v) > 0} }

// Require names every unset field in a single error.
func Require(fields ...Field) error {
	var missing []string
	for _, f := range fields {
		if !f.Set {
			missing = append(missing, f.Env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
	}
	return nil
}

func MustRequire(fields ...Field) {
	if err := Require(fields...); err != nil {
		log.Fatal(err)
	}
}
