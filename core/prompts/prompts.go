// Package prompts composes the system instruction handed to the formatting
// model at the start of every recording turn.
//
// The instruction is built from three sections that always appear in the
// same order:
//
//   - main: core formatting rules, always present.
//   - advanced: backtrack corrections and list formatting, on by default.
//   - dictionary: personal word mappings, off by default.
//
// Each section uses its override text when one is set and the built-in
// default otherwise.
package prompts

import "strings"

const sectionSeparator = "\n\n"

type SectionName string

const (
	SectionMain       SectionName = "main"
	SectionAdvanced   SectionName = "advanced"
	SectionDictionary SectionName = "dictionary"
)

// SectionConfig selects which sections are composed and what text they use.
// An empty override means the section default is used.
type SectionConfig struct {
	MainOverride string `json:"main_override,omitempty"`

	AdvancedEnabled  bool   `json:"advanced_enabled"`
	AdvancedOverride string `json:"advanced_override,omitempty"`

	DictionaryEnabled  bool   `json:"dictionary_enabled"`
	DictionaryOverride string `json:"dictionary_override,omitempty"`
}

func DefaultSectionConfig() SectionConfig {
	return SectionConfig{AdvancedEnabled: true}
}

// Section is one effective section of a composed instruction.
type Section struct {
	Name       SectionName
	Text       string
	Overridden bool
}

// Sections returns the enabled sections in composition order.
func Sections(config SectionConfig) []Section {
	sections := []Section{effectiveSection(SectionMain, config.MainOverride, MainDefault)}
	if config.AdvancedEnabled {
		sections = append(sections, effectiveSection(SectionAdvanced, config.AdvancedOverride, AdvancedDefault))
	}
	if config.DictionaryEnabled {
		sections = append(sections, effectiveSection(SectionDictionary, config.DictionaryOverride, DictionaryDefault))
	}
	return sections
}

// Compose joins the enabled sections with a blank line. It has no failure
// mode and the same config always yields the same text.
func Compose(config SectionConfig) string {
	sections := Sections(config)
	parts := make([]string, 0, len(sections))
	for _, section := range sections {
		parts = append(parts, section.Text)
	}
	return strings.Join(parts, sectionSeparator)
}

func effectiveSection(name SectionName, override, fallback string) Section {
	if override != "" {
		return Section{Name: name, Text: override, Overridden: true}
	}
	return Section{Name: name, Text: fallback}
}
