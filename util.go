package errctx

import (
	"encoding"
	"encoding/json"
)

// convertForJSONMarshalling replaces the given obj if it's an "error" without custom marshalling by its string
// representation (obj.Error()), because an enum value would otherwise be marshaled as its underlying number.
//
// The boolean return value is true if the obj was converted, false otherwise.
func convertForJSONMarshalling(obj interface{}) (interface{}, bool) {
	switch t := obj.(type) {
	case json.Marshaler,
		encoding.TextMarshaler:
		// no conversion needed - they marshal correctly
	case error:
		return t.Error(), true
	}
	return obj, false
}
