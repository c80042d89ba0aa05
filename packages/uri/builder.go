package uri

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

// ErrMissingParameter is returned when a path placeholder has no value in the
// parameter bag.
var ErrMissingParameter = errors.New("missing path parameter")

// Params is the parameter bag used to fill path placeholders and the query string.
type Params map[string]any

var (
	placeholderPattern = regexp.MustCompile(`\{[a-zA-Z_][0-9a-zA-Z_]*\}`)
	absolutePattern    = regexp.MustCompile(`(?i)^([a-z][a-z0-9+.\-]*://|//)`)
)

// Clone returns a shallow copy of the bag. A nil bag clones to an empty one.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// IsAbsolute reports whether path is a fully qualified (scheme://) or
// protocol-relative (//) URI.
func IsAbsolute(path string) bool {
	return absolutePattern.MatchString(path)
}

// Build combines baseURI, relativePath and params into a URI.
//
// Exactly one slash separates baseURI and relativePath. Absolute paths are used
// as-is and baseURI is ignored. The caller's params are never modified.
func Build(baseURI, relativePath string, params Params) (string, error) {
	bag := params.Clone()

	absolute := IsAbsolute(relativePath)
	if !absolute {
		baseURI = strings.TrimSuffix(baseURI, "/")
		relativePath = strings.TrimPrefix(relativePath, "/")
	}

	path, err := substitute(relativePath, bag)
	if err != nil {
		return "", err
	}

	uri := path
	if !absolute {
		uri = baseURI + "/" + path
	}

	query := Query(bag)
	if query == "" {
		return uri, nil
	}
	if strings.Contains(uri, "?") {
		return uri + "&" + query, nil
	}
	return uri + "?" + query, nil
}

// substitute replaces every {name} token in path with the encoded value from
// bag and removes the consumed keys from bag.
func substitute(path string, bag Params) (string, error) {
	var missing []string
	path = placeholderPattern.ReplaceAllStringFunc(path, func(token string) string {
		name := token[1 : len(token)-1]
		value, ok := bag[name]
		delete(bag, name)
		if !ok || isNil(value) {
			missing = append(missing, name)
			return token
		}
		return EncodeComponent(Stringify(value))
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, strings.Join(missing, ", "))
	}
	return path, nil
}

// Query encodes the non-nil entries of bag as key=value pairs joined by "&",
// sorted by key. Keys are emitted verbatim.
func Query(bag Params) string {
	keys := make([]string, 0, len(bag))
	for k, v := range bag {
		if isNil(v) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+EncodeComponent(Stringify(bag[k])))
	}
	return strings.Join(pairs, "&")
}

// isNil reports whether v is nil or a typed nil pointer, map, slice or func.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
