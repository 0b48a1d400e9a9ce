package ai

import "testing"

func TestParseClassifierOutput(t *testing.T) {
	content := "Here is the result:\n```json\n{\"label\": \"Cecum\", \"reasoning\": \"appendiceal orifice visible\", \"description\": \"Cecal pole with clear landmarks\"}\n```"

	payload, err := parseClassifierOutput(content)
	if err != nil {
		t.Fatalf("parseClassifierOutput err: %v", err)
	}
	if payload.Label != "Cecum" {
		t.Fatalf("unexpected label: %q", payload.Label)
	}
	if payload.Description != "Cecal pole with clear landmarks" {
		t.Fatalf("unexpected description: %q", payload.Description)
	}
}

func TestParseClassifierOutputMissingObject(t *testing.T) {
	if _, err := parseClassifierOutput("no json here"); err == nil {
		t.Fatal("expected error for output without a JSON object")
	}
}

func TestParseClassifierOutputEmptyLabel(t *testing.T) {
	if _, err := parseClassifierOutput(`{"label": "", "reasoning": "x", "description": "y"}`); err == nil {
		t.Fatal("expected error for empty label")
	}
}

func TestNormalizeLabel(t *testing.T) {
	if got := normalizeLabel("cecum"); got != "Cecum" {
		t.Fatalf("expected canonical Cecum, got %q", got)
	}
	if got := normalizeLabel("  Sigmoid Colon "); got != "Sigmoid colon" {
		t.Fatalf("expected canonical Sigmoid colon, got %q", got)
	}
	if got := normalizeLabel("Something else"); got != "Something else" {
		t.Fatalf("unknown labels must pass through, got %q", got)
	}
}

func TestNoteContentBlocks(t *testing.T) {
	content := noteContent(nil, nil, "")
	if content != "Conversation log:\nNo clinician messages recorded.\n\nImages and annotations:\nNo images classified." {
		t.Fatalf("unexpected empty-session content: %q", content)
	}
}
