package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Supplier is a vendor that purchase orders are addressed to. Fields submitted
// beyond the known ones are kept in Extra and stored flat alongside them.
type Supplier struct {
	ID      int64
	Name    string
	Contact string
	Phone   string
	Email   string
	Address string
	TaxID   string
	Notes   string
	Extra   map[string]string
}

// supplierKnownFields maps JSON keys to the struct fields they populate.
var supplierKnownFields = []string{"id", "name", "contact", "phone", "email", "address", "taxId", "notes"}

func (s *Supplier) knownField(key string) *string {
	switch key {
	case "name":
		return &s.Name
	case "contact":
		return &s.Contact
	case "phone":
		return &s.Phone
	case "email":
		return &s.Email
	case "address":
		return &s.Address
	case "taxId":
		return &s.TaxID
	case "notes":
		return &s.Notes
	}
	return nil
}

// Set assigns a field by its JSON key. Unknown keys go to Extra.
func (s *Supplier) Set(key, value string) {
	if key == "id" {
		return
	}
	if f := s.knownField(key); f != nil {
		*f = value
		return
	}
	if s.Extra == nil {
		s.Extra = make(map[string]string)
	}
	s.Extra[key] = value
}

// ExtraKeys returns the Extra keys in sorted order for stable rendering.
func (s Supplier) ExtraKeys() []string {
	keys := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON flattens Extra into the top-level object.
func (s Supplier) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(s.Extra)+len(supplierKnownFields))
	for k, v := range s.Extra {
		m[k] = v
	}
	m["id"] = s.ID
	m["name"] = s.Name
	m["contact"] = s.Contact
	m["phone"] = s.Phone
	m["email"] = s.Email
	m["address"] = s.Address
	m["taxId"] = s.TaxID
	m["notes"] = s.Notes
	return json.Marshal(m)
}

// UnmarshalJSON accepts the flat layout written by MarshalJSON. Non-string
// extra values are kept in their JSON text form.
func (s *Supplier) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Supplier{}
	for k, v := range raw {
		if k == "id" {
			if err := json.Unmarshal(v, &s.ID); err != nil {
				return fmt.Errorf("decoding supplier id: %w", err)
			}
			continue
		}
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			str = string(v)
		}
		s.Set(k, str)
	}
	return nil
}
