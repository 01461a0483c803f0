package payload

import (
	"regexp"
	"strings"

	"github.com/harrylevesque/qrscan/internal/models"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// vcardMarkers maps a line marker to the contact field it sets.
var vcardMarkers = []struct {
	marker string
	set    func(c *models.ContactFields, v string)
}{
	{"FN:", func(c *models.ContactFields, v string) { c.Name = &v }},
	{"ORG:", func(c *models.ContactFields, v string) { c.Organization = &v }},
	{"TEL:", func(c *models.ContactFields, v string) { c.Phone = &v }},
	{"EMAIL:", func(c *models.ContactFields, v string) { c.Email = &v }},
	{"URL:", func(c *models.ContactFields, v string) { c.Website = &v }},
}

// parseContact applies the marker table to each line in order, so the last
// line carrying a marker wins. Fields without a matching line stay nil.
func parseContact(s string) (models.Fields, bool) {
	var c models.ContactFields
	for _, line := range lineBreak.Split(s, -1) {
		for _, m := range vcardMarkers {
			if _, v, ok := strings.Cut(line, m.marker); ok {
				m.set(&c, v)
			}
		}
	}
	return c, true
}
