package utils

import "testing"

// TestCleanJsonBlock verifies markdown fence stripping.
func TestCleanJsonBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json fence",
			input: "```json\n{\"a\": 1}\n```",
			want:  "{\"a\": 1}",
		},
		{
			name:  "bare fence",
			input: "```\n{\"a\": 1}\n```",
			want:  "{\"a\": 1}",
		},
		{
			name:  "no fence",
			input: "  {\"a\": 1}  ",
			want:  "{\"a\": 1}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJsonBlock(tt.input); got != tt.want {
				t.Errorf("CleanJsonBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestExtractJsonObject verifies balanced-brace extraction from prose.
func TestExtractJsonObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "object surrounded by prose",
			input: `I will search now. {"tool": {"tool_name": "web_search", "args": {"query": "go"}}} Done.`,
			want:  `{"tool": {"tool_name": "web_search", "args": {"query": "go"}}}`,
		},
		{
			name:  "braces inside string literals",
			input: `{"note": "use {curly} braces and a \" quote"}`,
			want:  `{"note": "use {curly} braces and a \" quote"}`,
		},
		{
			name:  "no object",
			input: "just some text",
			want:  "",
		},
		{
			name:  "unbalanced object",
			input: `{"tool": {"tool_name": "x"`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJsonObject(tt.input); got != tt.want {
				t.Errorf("ExtractJsonObject() = %q, want %q", got, tt.want)
			}
		})
	}
}
