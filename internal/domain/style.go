package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Gender classifies who a style is intended for.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNeutral Gender = "neutral"
)

// ParseGender normalizes free-form input; unknown values are neutral.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "man":
		return GenderMale
	case "female", "f", "woman":
		return GenderFemale
	default:
		return GenderNeutral
	}
}

// Style is a reference hairstyle from the catalog.
type Style struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	ImagePath string   `json:"image_path"`
	Exists    bool     `json:"exists"`
	Tags      []string `json:"tags"`
	Gender    Gender   `json:"gender"`
	Category  string   `json:"category"`
}

// DisplayName returns Name, or a title-cased rendering of the id.
func (s Style) DisplayName() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(s.ID, "_", " "))
}

// HasTag reports whether tag is among the style's tags.
func (s Style) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
