package application

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront-relay/internal/domain"

	"github.com/shopspring/decimal"
)

const loaderTemplate = `(function(d,t,u,p,e,f){e=d.createElement(t);f=d.getElementsByTagName(t)[0];
e.async=1;e.src=u+'?'+p+'&cb='+Math.floor(Math.random()*999999);f.parentNode.insertBefore(e,f);
})(document,'script', '%s', '%s');`

const scriptTagTemplate = "<script type='text/javascript'>\n%s\n</script>"

// loaderCode returns the async script loader for endpoint and query.
// The cache-busting cb parameter is added by the loader when it runs.
func loaderCode(endpoint, query string) string {
	return fmt.Sprintf(loaderTemplate, endpoint, query)
}

// scriptTag wraps loader code for direct output
func scriptTag(code string) string {
	return fmt.Sprintf(scriptTagTemplate, code)
}

// EncodeQuery form-encodes fields. Nested maps become bracketed keys,
// slices become indexed keys and nil values are dropped.
func EncodeQuery(fields domain.Fields) string {
	values := url.Values{}
	for key, value := range fields {
		appendValue(values, key, value)
	}
	return values.Encode()
}

func appendValue(values url.Values, key string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case map[string]any:
		for nk, nv := range v {
			appendValue(values, key+"["+nk+"]", nv)
		}
	case domain.Fields:
		for nk, nv := range v {
			appendValue(values, key+"["+nk+"]", nv)
		}
	case []string:
		for i, s := range v {
			values.Add(key+"["+strconv.Itoa(i)+"]", s)
		}
	case []any:
		for i, item := range v {
			appendValue(values, key+"["+strconv.Itoa(i)+"]", item)
		}
	case *time.Time:
		if v == nil {
			return
		}
		values.Add(key, v.UTC().Format(time.RFC3339))
	default:
		if s, ok := scalarString(value); ok {
			values.Add(key, s)
		}
	}
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case decimal.Decimal:
		return v.String(), true
	case time.Time:
		return v.UTC().Format(time.RFC3339), true
	case fmt.Stringer:
		return v.String(), true
	}
	s := fmt.Sprint(value)
	return s, !strings.HasPrefix(s, "<nil")
}
