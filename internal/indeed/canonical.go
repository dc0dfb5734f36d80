package indeed

import (
	"net/url"
	"sort"
	"strings"
)

// jobKeyPaths are the paths whose only meaningful parameter is the job key.
var jobKeyPaths = map[string]bool{
	"/viewjob":    true,
	"/rc/clk":     true,
	"/pagead/clk": true,
}

// trackingParams never change which posting a URL points at.
var trackingParams = map[string]bool{
	"from":  true,
	"tk":    true,
	"vjs":   true,
	"advn":  true,
	"fccid": true,
	"sjdu":  true,
}

// CanonicalURL reduces a job URL to the form used as its dedupe key.
// Links carrying a jk job key become /viewjob?jk=<key>; other URLs lose
// their fragment and tracking parameters. Unparseable input is returned as is.
func CanonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	q := u.Query()
	if jk := q.Get("jk"); jk != "" && jobKeyPaths[u.Path] {
		u.Path = "/viewjob"
		u.RawPath = ""
		u.RawQuery = "jk=" + url.QueryEscape(jk)
		return u.String()
	}

	for key := range q {
		if trackingParams[key] || strings.HasPrefix(key, "utm_") {
			q.Del(key)
		}
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.RawQuery = encodeSorted(q)
	return u.String()
}

// encodeSorted encodes values with keys and values in a stable order.
func encodeSorted(v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		vals := append([]string(nil), v[k]...)
		sort.Strings(vals)
		for _, val := range vals {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(k))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(val))
		}
	}
	return sb.String()
}
