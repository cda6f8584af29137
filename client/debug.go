package client

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/codeartlibs/apikit-go/client/transport"
)

// httpie renders req as an httpie command line so a failing call can be
// replayed by hand. Header values are masked when mask is set; the
// token header always is.
func (c *Client) httpie(req *transport.Request, params map[string]any, mask bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "http --follow %s %s", req.Method, req.URL)

	// GET params already sit in the URL.
	if req.Method != http.MethodGet {
		for _, k := range slices.Sorted(maps.Keys(params)) {
			v, err := json.Marshal(params[k])
			if err != nil {
				v = []byte(`"?"`)
			}
			fmt.Fprintf(&b, " %s:=%s", k, shellQuote(string(v)))
		}
	}

	for _, k := range slices.Sorted(maps.Keys(req.Header)) {
		if k == http.CanonicalHeaderKey(HeaderRequestID) {
			continue
		}
		v := strings.Join(req.Header[k], ", ")
		if mask || strings.EqualFold(k, c.cfg.TokenHeader) {
			v = "?"
		} else {
			v = shellQuote(v)
		}
		fmt.Fprintf(&b, " %s:%s", k, v)
	}

	return b.String()
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`!*?[]{}();&|<>#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
