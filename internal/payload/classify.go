// Package payload classifies decoded QR/barcode strings into typed payloads.
package payload

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/harrylevesque/qrscan/internal/models"
)

// rule recognises one payload kind. A rule applies when prefix matches the
// trimmed input; parse may still reject it, in which case classification
// falls through to the next rule.
type rule struct {
	kind   models.Kind
	prefix *regexp.Regexp
	parse  func(s string) (models.Fields, bool)
}

var (
	wifiPattern = regexp.MustCompile(`(?i)WIFI:T:([^;]*);S:([^;]*);P:([^;]*);H:([^;]*);?`)
	geoPattern  = regexp.MustCompile(`(?i)geo:([^,]+),([^,?]+)(?:\?(.*))?`)
	numberStart = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

// rules is evaluated in order; the first rule that both matches and parses wins.
var rules = []rule{
	{models.KindURL, regexp.MustCompile(`(?i)^(?:https?|ftp)://`), parseURL},
	{models.KindEmail, regexp.MustCompile(`(?i)^mailto:`), parseEmail},
	{models.KindPhone, regexp.MustCompile(`(?i)^tel:`), parsePhone},
	{models.KindSMS, regexp.MustCompile(`(?i)^sms:`), parseSMS},
	{models.KindWifi, regexp.MustCompile(`(?i)^WIFI:`), parseWifi},
	{models.KindContact, regexp.MustCompile(`(?i)^BEGIN:VCARD`), parseContact},
	{models.KindGeo, regexp.MustCompile(`(?i)^geo:`), parseGeo},
}

// Classify maps a raw decoded string to exactly one payload kind. It never
// fails: input no rule accepts becomes a Text payload holding the trimmed
// string. Classify is safe for concurrent use.
func Classify(raw string) models.Payload {
	s := strings.TrimSpace(raw)
	for _, r := range rules {
		if !r.prefix.MatchString(s) {
			continue
		}
		if f, ok := r.parse(s); ok {
			return models.NewPayload(raw, f)
		}
	}
	return models.NewPayload(raw, models.TextFields{Text: s})
}

func parseURL(s string) (models.Fields, bool) {
	return models.URLFields{URL: s}, true
}

func parseEmail(s string) (models.Fields, bool) {
	address, query, _ := strings.Cut(stripScheme(s), "?")
	values := parseFormQuery(query)
	return models.EmailFields{
		Address: address,
		Subject: values.Get("subject"),
		Body:    values.Get("body"),
	}, true
}

// parseFormQuery splits an application/x-www-form-urlencoded query the way
// browsers do: only "&" separates pairs, and malformed escapes are kept
// verbatim instead of dropping the pair.
func parseFormQuery(query string) url.Values {
	values := url.Values{}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		values.Add(lenientUnescape(k), lenientUnescape(v))
	}
	return values
}

// lenientUnescape decodes "+" and every well-formed %XX escape, leaving
// other "%" sequences untouched. Invalid UTF-8 becomes U+FFFD.
func lenientUnescape(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			n, _ := strconv.ParseUint(s[i+1:i+3], 16, 8)
			b.WriteByte(byte(n))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return strings.ToValidUTF8(b.String(), "\uFFFD")
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func parsePhone(s string) (models.Fields, bool) {
	return models.PhoneFields{Phone: stripScheme(s)}, true
}

func parseSMS(s string) (models.Fields, bool) {
	phone, message, _ := strings.Cut(stripScheme(s), "?body=")
	if i := strings.IndexAny(phone, "?:"); i >= 0 {
		phone = phone[:i]
	}
	decoded, err := url.PathUnescape(message)
	if err != nil || !utf8.ValidString(decoded) {
		return nil, false
	}
	return models.SMSFields{Phone: phone, Message: decoded}, true
}

func parseWifi(s string) (models.Fields, bool) {
	m := wifiPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	security := m[1]
	if security == "" {
		security = "None"
	}
	return models.WifiFields{
		Security: security,
		SSID:     m[2],
		Password: m[3],
		Hidden:   strings.EqualFold(m[4], "true"),
	}, true
}

func parseGeo(s string) (models.Fields, bool) {
	m := geoPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	lat, ok := leadingFloat(m[1])
	if !ok {
		return nil, false
	}
	lon, ok := leadingFloat(m[2])
	if !ok {
		return nil, false
	}
	return models.GeoFields{Latitude: lat, Longitude: lon, Query: m[3]}, true
}

// leadingFloat parses the numeric prefix of s, ignoring trailing parameters
// such as ";u=35" in "geo:1,2;u=35".
func leadingFloat(s string) (float64, bool) {
	n := numberStart.FindString(strings.TrimLeft(s, " \t"))
	if n == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// stripScheme drops everything up to and including the first colon. Callers
// only pass strings whose scheme prefix already matched.
func stripScheme(s string) string {
	_, rest, _ := strings.Cut(s, ":")
	return rest
}
