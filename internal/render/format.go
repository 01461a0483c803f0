// Package render turns classified payloads into display fragments.
package render

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/harrylevesque/qrscan/internal/models"
)

// Item is one displayed field. Href, when set, is the action behind the value.
type Item struct {
	Label    string `json:"label,omitempty"`
	Value    string `json:"value"`
	Href     string `json:"href,omitempty"`
	External bool   `json:"external,omitempty"`
	Code     bool   `json:"code,omitempty"`
}

// Fragment is the display template for one payload.
type Fragment struct {
	Kind        models.Kind `json:"kind"`
	Icon        string      `json:"icon"`
	Label       string      `json:"label"`
	DisplayName string      `json:"display_name"`
	Items       []Item      `json:"items"`
}

const mapsBaseURL = "https://www.google.com/maps?q="

// MapURL links a location to an external map view.
func MapURL(g models.GeoFields) string {
	return mapsBaseURL + formatCoord(g.Latitude) + "," + formatCoord(g.Longitude)
}

// Format maps each payload kind to its fixed template. Optional values are
// only emitted when present.
func Format(p models.Payload) Fragment {
	fr := Fragment{Kind: p.Kind, DisplayName: p.DisplayName}
	switch f := p.Fields.(type) {
	case models.URLFields:
		fr.Icon, fr.Label = "🌐", "URL"
		fr.Items = []Item{{Value: f.URL, Href: f.URL, External: true}}

	case models.EmailFields:
		fr.Icon, fr.Label = "📧", "Email"
		fr.Items = []Item{{Value: f.Address, Href: "mailto:" + f.Address}}
		fr.Items = appendIf(fr.Items, f.Subject != "", Item{Label: "Subject", Value: f.Subject})
		fr.Items = appendIf(fr.Items, f.Body != "", Item{Label: "Message", Value: f.Body})

	case models.PhoneFields:
		fr.Icon, fr.Label = "📞", "Phone"
		fr.Items = []Item{{Value: f.Phone, Href: "tel:" + f.Phone}}

	case models.SMSFields:
		fr.Icon, fr.Label = "💬", "SMS"
		href := "sms:" + f.Phone
		if f.Message != "" {
			href += "?body=" + encodeComponent(f.Message)
		}
		fr.Items = []Item{{Value: f.Phone, Href: href}}
		fr.Items = appendIf(fr.Items, f.Message != "", Item{Label: "Message", Value: f.Message})

	case models.WifiFields:
		fr.Icon, fr.Label = "📶", "WiFi Network"
		fr.Items = []Item{
			{Label: "Network", Value: f.SSID},
			{Label: "Security", Value: f.Security},
		}
		fr.Items = appendIf(fr.Items, f.Password != "", Item{Label: "Password", Value: f.Password, Code: true})
		fr.Items = appendIf(fr.Items, f.Hidden, Item{Value: "Hidden network"})

	case models.ContactFields:
		fr.Icon, fr.Label = "👤", "Contact"
		if f.Name != nil && *f.Name != "" {
			fr.Items = append(fr.Items, Item{Label: "Name", Value: *f.Name})
		}
		if f.Organization != nil && *f.Organization != "" {
			fr.Items = append(fr.Items, Item{Label: "Organization", Value: *f.Organization})
		}
		if f.Phone != nil && *f.Phone != "" {
			fr.Items = append(fr.Items, Item{Label: "Phone", Value: *f.Phone, Href: "tel:" + *f.Phone})
		}
		if f.Email != nil && *f.Email != "" {
			fr.Items = append(fr.Items, Item{Label: "Email", Value: *f.Email, Href: "mailto:" + *f.Email})
		}
		if f.Website != nil && *f.Website != "" {
			fr.Items = append(fr.Items, Item{Label: "Website", Value: *f.Website, Href: *f.Website, External: true})
		}

	case models.GeoFields:
		fr.Icon, fr.Label = "📍", "Location"
		fr.Items = []Item{
			{Label: "Latitude", Value: formatCoord(f.Latitude)},
			{Label: "Longitude", Value: formatCoord(f.Longitude)},
			{Value: "View on Maps", Href: MapURL(f), External: true},
		}

	case models.TextFields:
		fr.Icon, fr.Label = "📝", "Text"
		fr.Items = []Item{{Value: f.Text, Code: true}}
	}
	return fr
}

func appendIf(items []Item, cond bool, it Item) []Item {
	if !cond {
		return items
	}
	return append(items, it)
}

// formatCoord prints the shortest round-trip form of v the way browsers
// stringify numbers: negative zero is "0", and magnitudes below 1e-6 or
// from 1e21 up use an exponent without zero padding ("1e-7", "1e+21").
func formatCoord(v float64) string {
	if v == 0 {
		return "0"
	}
	if abs := math.Abs(v); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}

// uriUnreserved undoes QueryEscape for the marks a URI component may carry
// literally.
var uriUnreserved = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes s for use inside a URI query value, leaving
// A-Z a-z 0-9 and -_.!~*'() unescaped and encoding spaces as %20.
func encodeComponent(s string) string {
	return uriUnreserved.Replace(url.QueryEscape(s))
}
