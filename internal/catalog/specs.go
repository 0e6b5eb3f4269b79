package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gorm.io/datatypes"
)

// NormalizeSpecs validates a specifications map at the boundary. Keys are
// trimmed, numeric-looking strings become numbers, null values are dropped and
// anything that is not a scalar is rejected.
func NormalizeSpecs(raw map[string]any) (datatypes.JSONMap, error) {
	out := make(datatypes.JSONMap, len(raw))
	for k, v := range raw {
		key := strings.TrimSpace(k)
		if key == "" {
			return nil, fmt.Errorf("%w: empty specification name", ErrValidation)
		}

		switch val := v.(type) {
		case nil:
			continue
		case string:
			s := strings.TrimSpace(val)
			if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
				out[key] = f
			} else {
				out[key] = s
			}
		case float64:
			out[key] = val
		case int:
			out[key] = float64(val)
		case int64:
			out[key] = float64(val)
		case json.Number:
			f, err := val.Float64()
			if err != nil {
				return nil, fmt.Errorf("%w: specification %q: %v", ErrValidation, key, err)
			}
			out[key] = f
		case bool:
			out[key] = val
		default:
			return nil, fmt.Errorf("%w: specification %q must be a string, number or boolean", ErrValidation, key)
		}
	}
	return out, nil
}
