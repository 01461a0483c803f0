package render

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/qrscan/internal/models"
	"github.com/harrylevesque/qrscan/internal/payload"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Fragment
	}{
		{
			name: "url opens externally",
			raw:  "https://www.example.com",
			want: Fragment{
				Kind: models.KindURL, Icon: "🌐", Label: "URL", DisplayName: "Website URL",
				Items: []Item{{Value: "https://www.example.com", Href: "https://www.example.com", External: true}},
			},
		},
		{
			name: "email shows subject and message",
			raw:  "mailto:a@b.com?subject=Hi&body=Yo",
			want: Fragment{
				Kind: models.KindEmail, Icon: "📧", Label: "Email", DisplayName: "Email Address",
				Items: []Item{
					{Value: "a@b.com", Href: "mailto:a@b.com"},
					{Label: "Subject", Value: "Hi"},
					{Label: "Message", Value: "Yo"},
				},
			},
		},
		{
			name: "email omits empty subject and body",
			raw:  "mailto:a@b.com",
			want: Fragment{
				Kind: models.KindEmail, Icon: "📧", Label: "Email", DisplayName: "Email Address",
				Items: []Item{{Value: "a@b.com", Href: "mailto:a@b.com"}},
			},
		},
		{
			name: "phone dials",
			raw:  "tel:555-0100",
			want: Fragment{
				Kind: models.KindPhone, Icon: "📞", Label: "Phone", DisplayName: "Phone Number",
				Items: []Item{{Value: "555-0100", Href: "tel:555-0100"}},
			},
		},
		{
			name: "sms re-encodes body",
			raw:  "sms:555?body=Hi%20there%2B1",
			want: Fragment{
				Kind: models.KindSMS, Icon: "💬", Label: "SMS", DisplayName: "SMS Message",
				Items: []Item{
					{Value: "555", Href: "sms:555?body=Hi%20there%2B1"},
					{Label: "Message", Value: "Hi there+1"},
				},
			},
		},
		{
			name: "sms leaves uri marks unescaped",
			raw:  "sms:555?body=Hi%20(there)!%20*'~",
			want: Fragment{
				Kind: models.KindSMS, Icon: "💬", Label: "SMS", DisplayName: "SMS Message",
				Items: []Item{
					{Value: "555", Href: "sms:555?body=Hi%20(there)!%20*'~"},
					{Label: "Message", Value: "Hi (there)! *'~"},
				},
			},
		},
		{
			name: "wifi hides empty password",
			raw:  "WIFI:T:;S:Guest;P:;H:false;",
			want: Fragment{
				Kind: models.KindWifi, Icon: "📶", Label: "WiFi Network", DisplayName: "WiFi Network",
				Items: []Item{
					{Label: "Network", Value: "Guest"},
					{Label: "Security", Value: "None"},
				},
			},
		},
		{
			name: "wifi with password and hidden flag",
			raw:  "WIFI:T:WPA;S:Home;P:pw;H:true;",
			want: Fragment{
				Kind: models.KindWifi, Icon: "📶", Label: "WiFi Network", DisplayName: "WiFi Network",
				Items: []Item{
					{Label: "Network", Value: "Home"},
					{Label: "Security", Value: "WPA"},
					{Label: "Password", Value: "pw", Code: true},
					{Value: "Hidden network"},
				},
			},
		},
		{
			name: "contact shows present fields only",
			raw:  "BEGIN:VCARD\nFN:Jane Doe\nTEL:555-1234\nEMAIL:\nEND:VCARD",
			want: Fragment{
				Kind: models.KindContact, Icon: "👤", Label: "Contact", DisplayName: "Contact Information",
				Items: []Item{
					{Label: "Name", Value: "Jane Doe"},
					{Label: "Phone", Value: "555-1234", Href: "tel:555-1234"},
				},
			},
		},
		{
			name: "geo derives map link",
			raw:  "geo:37.7749,-122.4194?z=15",
			want: Fragment{
				Kind: models.KindGeo, Icon: "📍", Label: "Location", DisplayName: "Geographic Location",
				Items: []Item{
					{Label: "Latitude", Value: "37.7749"},
					{Label: "Longitude", Value: "-122.4194"},
					{Value: "View on Maps", Href: "https://www.google.com/maps?q=37.7749,-122.4194", External: true},
				},
			},
		},
		{
			name: "text is preformatted",
			raw:  "  Hello World ",
			want: Fragment{
				Kind: models.KindText, Icon: "📝", Label: "Text", DisplayName: "Text Content",
				Items: []Item{{Value: "Hello World", Code: true}},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Format(payload.Classify(tt.raw))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Format(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestFormat_Idempotent(t *testing.T) {
	t.Parallel()
	for _, k := range []string{
		"https://a.example", "mailto:a@b.c", "tel:1", "sms:1?body=x",
		"WIFI:T:WPA;S:a;P:b;H:true;", "BEGIN:VCARD\nFN:x", "geo:1,2", "plain",
	} {
		p := payload.Classify(k)
		assert.Empty(t, cmp.Diff(Format(p), Format(p)), k)
	}
}

func TestMapURL(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "https://www.google.com/maps?q=0,180", MapURL(models.GeoFields{Latitude: 0, Longitude: 180}))
	assert.Equal(t, "https://www.google.com/maps?q=-33.8688,151.2093", MapURL(models.GeoFields{Latitude: -33.8688, Longitude: 151.2093}))
	assert.Equal(t, "https://www.google.com/maps?q=0,0", MapURL(payload.Classify("geo:-0,0").Fields.(models.GeoFields)))
}

func TestFormatCoord(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{37.7749, "37.7749"},
		{-122.4194, "-122.4194"},
		{0.000001, "0.000001"},
		{1.5e-7, "1.5e-7"},
		{-2e-10, "-2e-10"},
		{1e21, "1e+21"},
		{1.25e22, "1.25e+22"},
		{123456789, "123456789"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCoord(tt.in), "%v", tt.in)
	}
}

func TestEncodeComponent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a%20b%2B1%26c%3Dd!'()*-_.~", encodeComponent("a b+1&c=d!'()*-_.~"))
	assert.Equal(t, "caf%C3%A9%20%25", encodeComponent("café %"))
}

func TestFragment_HTML(t *testing.T) {
	t.Parallel()

	html, err := Format(payload.Classify("BEGIN:VCARD\nFN:<b>Jane</b>\nTEL:555-1234\nURL:javascript:alert(1)")).HTML()
	require.NoError(t, err)
	assert.Contains(t, html, `href="tel:555-1234"`)
	assert.Contains(t, html, "&lt;b&gt;Jane&lt;/b&gt;")
	assert.NotContains(t, html, `href="javascript:`)
	assert.Contains(t, html, "#ZgotmplZ")

	html, err = Format(payload.Classify("https://example.com")).HTML()
	require.NoError(t, err)
	assert.Contains(t, html, `target="_blank" rel="noopener noreferrer"`)
}

func TestFragment_Text(t *testing.T) {
	t.Parallel()
	got := Format(payload.Classify("WIFI:T:WPA;S:Home;P:pw;H:false;")).Text()
	assert.Equal(t, "📶 WiFi Network\n  Network: Home\n  Security: WPA\n  Password: pw\n", got)

	got = Format(payload.Classify("tel:555")).Text()
	assert.Equal(t, "📞 Phone Number\n  555 <tel:555>\n", got)
}
