package llms

import "testing"

func TestMessageConstructorsSetRoles(t *testing.T) {
	testCases := []struct {
		name     string
		message  Message
		expected Role
	}{
		{name: "system", message: SystemMessage("s"), expected: RoleSystem},
		{name: "user", message: UserMessage("u"), expected: RoleUser},
		{name: "assistant", message: AssistantMessage("a"), expected: RoleAssistant},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if testCase.message.Role != testCase.expected {
				t.Fatalf("expected role %q, got %q", testCase.expected, testCase.message.Role)
			}
			if !testCase.message.Role.IsValid() {
				t.Fatalf("expected role %q to be valid", testCase.message.Role)
			}
		})
	}

	if Role("tool").IsValid() {
		t.Fatalf("expected tool role to be invalid")
	}
}

func TestApplyStreamingOptions(t *testing.T) {
	options := ApplyStreamingOptions(WithTemperature(0.2), WithMaxTokens(256), nil)

	if options.Temperature == nil || *options.Temperature != 0.2 {
		t.Fatalf("expected temperature 0.2, got %v", options.Temperature)
	}
	if options.MaxTokens != 256 {
		t.Fatalf("expected max tokens 256, got %d", options.MaxTokens)
	}
}
