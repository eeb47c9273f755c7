// Package selectors holds the CSS selector tables the job scrapers resolve fields with.
//
// A Document is the shareable, versioned table (bundled with the binary and optionally
// replaced by a remotely published copy). Field lists in a remote document override the
// bundled ones per field; an empty remote list falls back to the bundled list.
package selectors

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed selectors.json
var bundledJSON []byte

// Field names shared by both platforms.
const (
	FieldPosition    = "position"
	FieldCompany     = "company"
	FieldCompanyURL  = "companyUrl"
	FieldSalary      = "salary"
	FieldDescription = "description"
	FieldAppLink     = "appLink"
)

// RequiredFields are the fields every platform table must be able to resolve.
var RequiredFields = []string{FieldPosition, FieldCompany, FieldSalary, FieldDescription, FieldAppLink}

// FieldSelectors is the per-platform table of ordered selector lists, first match wins.
type FieldSelectors struct {
	Position    []string `json:"position"`
	Company     []string `json:"company"`
	CompanyURL  []string `json:"companyUrl,omitempty"`
	Salary      []string `json:"salary"`
	Description []string `json:"description"`
	AppLink     []string `json:"appLink"`
}

// Document is the selector configuration for all supported platforms.
type Document struct {
	Version  string         `json:"version"`
	LinkedIn FieldSelectors `json:"linkedin"`
	Indeed   FieldSelectors `json:"indeed"`
}

// Bundled returns a fresh copy of the selector document compiled into the binary.
func Bundled() *Document {
	doc, err := Parse(bundledJSON)
	if err != nil {
		panic(fmt.Sprintf("bundled selectors.json is invalid: %v", err))
	}
	return doc
}

// BundledJSON returns the raw bundled document.
func BundledJSON() []byte {
	return append([]byte(nil), bundledJSON...)
}

// Field returns the selector list stored under a field name.
func (f FieldSelectors) Field(name string) []string {
	switch name {
	case FieldPosition:
		return f.Position
	case FieldCompany:
		return f.Company
	case FieldCompanyURL:
		return f.CompanyURL
	case FieldSalary:
		return f.Salary
	case FieldDescription:
		return f.Description
	case FieldAppLink:
		return f.AppLink
	}
	return nil
}

// MissingFields returns the required fields whose list has no usable selector.
func (f FieldSelectors) MissingFields() []string {
	var missing []string
	for _, name := range RequiredFields {
		if !hasSelector(f.Field(name)) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Merge overlays override onto base field by field. Non-empty override lists win.
func (f FieldSelectors) Merge(override FieldSelectors) FieldSelectors {
	return FieldSelectors{
		Position:    pick(override.Position, f.Position),
		Company:     pick(override.Company, f.Company),
		CompanyURL:  pick(override.CompanyURL, f.CompanyURL),
		Salary:      pick(override.Salary, f.Salary),
		Description: pick(override.Description, f.Description),
		AppLink:     pick(override.AppLink, f.AppLink),
	}
}

// Merge returns base with every non-empty field of override applied. A nil override returns a copy of base.
func Merge(base, override *Document) *Document {
	if base == nil {
		base = &Document{}
	}
	merged := &Document{
		Version:  base.Version,
		LinkedIn: base.LinkedIn.Merge(FieldSelectors{}),
		Indeed:   base.Indeed.Merge(FieldSelectors{}),
	}
	if override == nil {
		return merged
	}
	if override.Version != "" {
		merged.Version = override.Version
	}
	merged.LinkedIn = merged.LinkedIn.Merge(override.LinkedIn)
	merged.Indeed = merged.Indeed.Merge(override.Indeed)
	return merged
}

// JSON renders the document with indentation for display.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func pick(override, base []string) []string {
	if hasSelector(override) {
		return append([]string(nil), override...)
	}
	return append([]string(nil), base...)
}

func hasSelector(list []string) bool {
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}
