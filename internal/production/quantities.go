package production

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/linesched/internal/flowshop"
)

// ParseQuantities reads a product -> integer object from JSON. path is a
// gjson path to the object; an empty path reads the document root.
func ParseQuantities(data []byte, path string) (map[string]int, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: quantities are not valid JSON", flowshop.ErrInvalidInput)
	}

	obj := gjson.ParseBytes(data)
	if path != "" {
		obj = gjson.GetBytes(data, path)
		if !obj.Exists() {
			return nil, fmt.Errorf("%w: no value at %q", flowshop.ErrInvalidInput, path)
		}
	}
	if !obj.IsObject() {
		return nil, fmt.Errorf("%w: expected an object of product quantities", flowshop.ErrInvalidInput)
	}

	out := make(map[string]int)
	var parseErr error
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if value.Type != gjson.Number || value.Float() != float64(value.Int()) {
			parseErr = fmt.Errorf("%w: quantity for %q must be an integer (got %s)", flowshop.ErrInvalidInput, name, value.Raw)
			return false
		}
		if value.Int() < 0 {
			parseErr = fmt.Errorf("%w: quantity for %q must be >= 0 (got %d)", flowshop.ErrInvalidInput, name, value.Int())
			return false
		}
		out[name] = int(value.Int())
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return out, nil
}
