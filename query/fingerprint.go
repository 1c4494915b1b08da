package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// fingerprint hashes the compiler kind and the keyword mapping with the given
// key order. Selection passes sorted keys so insertion order never matters;
// Order passes declaration order because it is semantically significant.
func fingerprint(kind string, keys []string, kwargs map[string]any) string {
	h := sha256.New()
	io.WriteString(h, kind)
	for _, k := range keys {
		io.WriteString(h, "\x00")
		io.WriteString(h, k)
		io.WriteString(h, "\x1f")
		io.WriteString(h, repr(kwargs[k]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// repr serializes a keyword value deterministically. Callables hash by their
// type only, which makes their fingerprints best-effort: two distinct
// functions of the same type collide. Restrict cache keys to value-based
// selections when that matters.
func repr(v any) string {
	switch vv := v.(type) {
	case nil:
		return "null"
	case wildcard:
		return "*"
	case string:
		return "s:" + strconv.Quote(vv)
	case int:
		return "i:" + strconv.Itoa(vv)
	case int64:
		return "i:" + strconv.FormatInt(vv, 10)
	case float64:
		return "f:" + strconv.FormatFloat(vv, 'g', -1, 64)
	case bool:
		return "b:" + strconv.FormatBool(vv)
	case time.Time:
		return "t:" + vv.Format(time.RFC3339Nano)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = repr(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	}

	return fmt.Sprintf("%T", v)
}
