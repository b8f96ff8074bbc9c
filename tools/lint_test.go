package tools

import (
	"strings"
	"testing"
)

func TestLintUndefinedLabel(t *testing.T) {
	source := ".ORIG x3000\n" +
		"BR undefined_label\n" +
		".END\n"

	issues := NewLinter(DefaultLintOptions()).Lint(source)

	found := false
	for _, issue := range issues {
		if issue.Code == "UNDEF_LABEL" && strings.Contains(issue.Message, "undefined_label") {
			found = true
			if issue.Level != LintError {
				t.Errorf("expected error level, got %v", issue.Level)
			}
		}
	}
	if !found {
		t.Error("expected an undefined-label error")
	}
}

func TestLintUndefinedLabelSuggestsSimilarName(t *testing.T) {
	source := ".ORIG x3000\n" +
		"loop ADD R0, R0, #1\n" +
		"BR loo\n" +
		".END\n"

	issues := NewLinter(DefaultLintOptions()).Lint(source)

	found := false
	for _, issue := range issues {
		if issue.Code == "UNDEF_LABEL" && strings.Contains(issue.Message, `"loop"`) {
			found = true
		}
	}
	if !found {
		t.Error("expected undefined-label suggestion referencing 'loop'")
	}
}

func TestLintDuplicateLabelDoesNotAbortAnalysis(t *testing.T) {
	source := ".ORIG x3000\n" +
		"foo ADD R0, R0, #1\n" +
		"foo ADD R0, R0, #2\n" +
		"BR missing\n" +
		".END\n"

	issues := NewLinter(DefaultLintOptions()).Lint(source)

	var sawDup, sawUndef bool
	for _, issue := range issues {
		switch issue.Code {
		case "DUPLICATE_LABEL":
			sawDup = true
		case "UNDEF_LABEL":
			sawUndef = true
		}
	}
	if !sawDup {
		t.Error("expected a duplicate-label warning")
	}
	if !sawUndef {
		t.Error("expected analysis to continue past the duplicate and catch the undefined label")
	}
}

func TestLintUnusedLabel(t *testing.T) {
	source := ".ORIG x3000\n" +
		"HALT\n" +
		"unused ADD R0, R0, #1\n" +
		".END\n"

	options := DefaultLintOptions()
	options.CheckUnused = true
	issues := NewLinter(options).Lint(source)

	found := false
	for _, issue := range issues {
		if issue.Code == "UNUSED_LABEL" && strings.Contains(issue.Message, "unused") {
			found = true
		}
	}
	if !found {
		t.Error("expected an unused-label warning")
	}
}

func TestLintUnreachableCodeAfterUnconditionalBranch(t *testing.T) {
	source := ".ORIG x3000\n" +
		"BR done\n" +
		"ADD R0, R0, #1\n" +
		"done HALT\n" +
		".END\n"

	issues := NewLinter(DefaultLintOptions()).Lint(source)

	found := false
	for _, issue := range issues {
		if issue.Code == "UNREACHABLE_CODE" {
			found = true
		}
	}
	if !found {
		t.Error("expected unreachable-code warning for the statement after an unconditional BR")
	}
}

func TestLintDoesNotFlagCodeAfterSubroutineCall(t *testing.T) {
	source := ".ORIG x3000\n" +
		"JSR sub\n" +
		"ADD R0, R0, #1\n" +
		"HALT\n" +
		"sub RET\n" +
		".END\n"

	issues := NewLinter(DefaultLintOptions()).Lint(source)
	for _, issue := range issues {
		if issue.Code == "UNREACHABLE_CODE" {
			t.Errorf("did not expect unreachable-code warning after a subroutine call: %v", issue)
		}
	}
}

func TestLintMissingEnd(t *testing.T) {
	source := ".ORIG x3000\nHALT\n"

	issues := NewLinter(DefaultLintOptions()).Lint(source)

	found := false
	for _, issue := range issues {
		if issue.Code == "MISSING_END" {
			found = true
		}
	}
	if !found {
		t.Error("expected a missing-.END error")
	}
}

func TestLintCodeAfterEnd(t *testing.T) {
	source := ".ORIG x3000\nHALT\n.END\nADD R0, R0, #1\n"

	issues := NewLinter(DefaultLintOptions()).Lint(source)

	found := false
	for _, issue := range issues {
		if issue.Code == "CODE_AFTER_END" {
			found = true
		}
	}
	if !found {
		t.Error("expected a code-after-.END warning")
	}
}
