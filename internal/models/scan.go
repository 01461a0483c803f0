package models

import "time"

// Scan is one classified decode result kept in the history store.
type Scan struct {
	ID          string    `json:"id"`
	Raw         string    `json:"raw"`
	Kind        Kind      `json:"kind"`
	DisplayName string    `json:"display_name"`
	Payload     Payload   `json:"payload"`
	Screenshot  []byte    `json:"screenshot,omitempty"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewScan wraps a classified payload. ID and CreatedAt are assigned by the store.
func NewScan(p Payload, source string, screenshot []byte) *Scan {
	return &Scan{
		Raw:         p.Raw,
		Kind:        p.Kind,
		DisplayName: p.DisplayName,
		Payload:     p,
		Screenshot:  screenshot,
		Source:      source,
	}
}
