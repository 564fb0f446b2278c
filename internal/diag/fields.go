package diag

import (
	"fmt"
)

// field is a single key-value pair attached to an Error.
type field struct {
	key string
	val interface{}
}

// fields stores the key-value pairs of an Error in insertion order. Setting an existing key replaces its value in
// place.
//
// Warning: lookups are linear - only meant for the handful of fields a diagnostic carries.
type fields []field

func (f *fields) Append(kvs ...interface{}) {
	for i := 0; i < len(kvs); i += 2 {
		key := toString(kvs[i])
		if i+1 < len(kvs) {
			f.Set(key, kvs[i+1])
		} else {
			f.Set(key, "<missing>")
		}
	}
}

func (f *fields) Set(key string, val interface{}) {
	for i := range *f {
		if (*f)[i].key == key {
			(*f)[i].val = val
			return
		}
	}
	*f = append(*f, field{key: key, val: val})
}

func (f fields) Get(key string) (interface{}, bool) {
	for _, fd := range f {
		if fd.key == key {
			return fd.val, true
		}
	}
	return nil, false
}

func toString(val interface{}) string {
	if val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprint(val)
}
