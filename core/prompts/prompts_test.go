package prompts

import (
	"strings"
	"testing"
)

func TestComposeIsDeterministic(t *testing.T) {
	configs := []SectionConfig{
		{},
		DefaultSectionConfig(),
		{AdvancedEnabled: true, DictionaryEnabled: true},
		{MainOverride: "main", AdvancedEnabled: true, AdvancedOverride: "adv", DictionaryEnabled: true, DictionaryOverride: "dict"},
	}

	for _, config := range configs {
		first := Compose(config)
		second := Compose(config)
		if first != second {
			t.Fatalf("expected identical output for %+v", config)
		}
	}
}

func TestComposeMainOnlyHasNoSeparators(t *testing.T) {
	testCases := []struct {
		name     string
		config   SectionConfig
		expected string
	}{
		{name: "default main", config: SectionConfig{}, expected: MainDefault},
		{name: "overridden main", config: SectionConfig{MainOverride: "Only fix punctuation."}, expected: "Only fix punctuation."},
		{
			name:     "disabled sections ignore overrides",
			config:   SectionConfig{AdvancedOverride: "adv", DictionaryOverride: "dict"},
			expected: MainDefault,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := Compose(testCase.config); got != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestComposeOrdersSections(t *testing.T) {
	got := Compose(SectionConfig{
		MainOverride:       "main",
		AdvancedEnabled:    true,
		AdvancedOverride:   "advanced",
		DictionaryEnabled:  true,
		DictionaryOverride: "dictionary",
	})

	if expected := "main\n\nadvanced\n\ndictionary"; got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestComposeFallsBackToDefaults(t *testing.T) {
	got := Compose(SectionConfig{AdvancedEnabled: true, DictionaryEnabled: true})

	expected := MainDefault + "\n\n" + AdvancedDefault + "\n\n" + DictionaryDefault
	if got != expected {
		t.Fatalf("expected all default sections joined by blank lines")
	}
}

func TestComposeDefaultConfigIncludesAdvancedOnly(t *testing.T) {
	got := Compose(DefaultSectionConfig())

	if !strings.HasPrefix(got, MainDefault) {
		t.Fatalf("expected main section first")
	}
	if !strings.HasSuffix(got, AdvancedDefault) {
		t.Fatalf("expected advanced section last")
	}
	if strings.Contains(got, DictionaryDefault) {
		t.Fatalf("expected dictionary section to be disabled by default")
	}
}

func TestSectionsReportOverrides(t *testing.T) {
	sections := Sections(SectionConfig{MainOverride: "custom", DictionaryEnabled: true})

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Name != SectionMain || !sections[0].Overridden {
		t.Fatalf("expected overridden main section, got %+v", sections[0])
	}
	if sections[1].Name != SectionDictionary || sections[1].Overridden || sections[1].Text != DictionaryDefault {
		t.Fatalf("expected default dictionary section, got %+v", sections[1])
	}
}

func TestDefaultsKeepCorrectionInstructions(t *testing.T) {
	for _, phrase := range []string{"scratch that", "actually"} {
		if !strings.Contains(AdvancedDefault, phrase) {
			t.Fatalf("expected advanced default to mention %q", phrase)
		}
	}
}
