package models

import (
	"encoding/json"
	"fmt"
)

// Kind is the semantic category assigned to a decoded payload.
type Kind string

const (
	KindURL     Kind = "url"
	KindEmail   Kind = "email"
	KindPhone   Kind = "phone"
	KindSMS     Kind = "sms"
	KindWifi    Kind = "wifi"
	KindContact Kind = "contact"
	KindGeo     Kind = "geo"
	KindText    Kind = "text"
)

// Kinds returns every kind in classification priority order.
func Kinds() []Kind {
	return []Kind{KindURL, KindEmail, KindPhone, KindSMS, KindWifi, KindContact, KindGeo, KindText}
}

// ParseKind maps a lowercase kind name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// DisplayName is the fixed human-readable label of a kind.
func (k Kind) DisplayName() string {
	switch k {
	case KindURL:
		return "Website URL"
	case KindEmail:
		return "Email Address"
	case KindPhone:
		return "Phone Number"
	case KindSMS:
		return "SMS Message"
	case KindWifi:
		return "WiFi Network"
	case KindContact:
		return "Contact Information"
	case KindGeo:
		return "Geographic Location"
	default:
		return "Text Content"
	}
}

// Fields is implemented by exactly one record type per Kind.
type Fields interface {
	Kind() Kind
}

type URLFields struct {
	URL string `json:"url"`
}

type EmailFields struct {
	Address string `json:"address"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type PhoneFields struct {
	Phone string `json:"phone"`
}

type SMSFields struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type WifiFields struct {
	Security string `json:"security"`
	SSID     string `json:"ssid"`
	Password string `json:"password"`
	Hidden   bool   `json:"hidden"`
}

// ContactFields holds vCard values. A nil field was not present in the card;
// a pointer to "" was present but empty.
type ContactFields struct {
	Name         *string `json:"name,omitempty"`
	Organization *string `json:"organization,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
	Website      *string `json:"website,omitempty"`
}

type GeoFields struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Query     string  `json:"query"`
}

type TextFields struct {
	Text string `json:"text"`
}

func (URLFields) Kind() Kind     { return KindURL }
func (EmailFields) Kind() Kind   { return KindEmail }
func (PhoneFields) Kind() Kind   { return KindPhone }
func (SMSFields) Kind() Kind     { return KindSMS }
func (WifiFields) Kind() Kind    { return KindWifi }
func (ContactFields) Kind() Kind { return KindContact }
func (GeoFields) Kind() Kind     { return KindGeo }
func (TextFields) Kind() Kind    { return KindText }

// Payload is a classified decode result. Values are never mutated after
// construction; Kind always equals Fields.Kind().
type Payload struct {
	Kind        Kind   `json:"kind"`
	Raw         string `json:"raw"`
	DisplayName string `json:"display_name"`
	Fields      Fields `json:"fields"`
}

// NewPayload builds a Payload whose kind and label follow from f.
func NewPayload(raw string, f Fields) Payload {
	k := f.Kind()
	return Payload{
		Kind:        k,
		Raw:         raw,
		DisplayName: k.DisplayName(),
		Fields:      f,
	}
}

// UnmarshalJSON decodes Fields into the record type named by kind.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var aux struct {
		Kind        Kind            `json:"kind"`
		Raw         string          `json:"raw"`
		DisplayName string          `json:"display_name"`
		Fields      json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var f Fields
	switch aux.Kind {
	case KindURL:
		f = decodeFields[URLFields](aux.Fields)
	case KindEmail:
		f = decodeFields[EmailFields](aux.Fields)
	case KindPhone:
		f = decodeFields[PhoneFields](aux.Fields)
	case KindSMS:
		f = decodeFields[SMSFields](aux.Fields)
	case KindWifi:
		f = decodeFields[WifiFields](aux.Fields)
	case KindContact:
		f = decodeFields[ContactFields](aux.Fields)
	case KindGeo:
		f = decodeFields[GeoFields](aux.Fields)
	case KindText:
		f = decodeFields[TextFields](aux.Fields)
	default:
		return fmt.Errorf("unknown payload kind %q", aux.Kind)
	}
	if f == nil {
		return fmt.Errorf("invalid %s fields", aux.Kind)
	}
	*p = Payload{
		Kind:        aux.Kind,
		Raw:         aux.Raw,
		DisplayName: aux.DisplayName,
		Fields:      f,
	}
	return nil
}

func decodeFields[T Fields](raw json.RawMessage) Fields {
	var v T
	if len(raw) == 0 {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
