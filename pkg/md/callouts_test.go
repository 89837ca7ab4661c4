package md

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertCallouts_Markers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"info", "<p>~?hello?~</p>", infoOpen + "hello" + calloutEnd},
		{"note", "<p>~!hello!~</p>", noteOpen + "hello" + calloutEnd},
		{"warning", "<p>~%hello%~</p>", warningOpen + "hello" + calloutEnd},
		{"inline markup preserved", "<p>~?a <em>b</em>?~</p>", infoOpen + "a <em>b</em>" + calloutEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConvertCallouts(tt.input))
		})
	}
}

func TestConvertCallouts_InfoWrapsParagraph(t *testing.T) {
	out := ConvertCallouts("<p>~?hello?~</p>")
	assert.Equal(t,
		`<p><ac:structured-macro ac:name="info"><ac:rich-text-body><p>hello</p></ac:rich-text-body></ac:structured-macro></p>`,
		out)
}

func TestConvertCallouts_Blockquotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "note prefix",
			input:    "<blockquote><p>Note: text</p></blockquote>",
			expected: noteOpen + "Text" + calloutEnd,
		},
		{
			name:     "strong warning prefix",
			input:    "<blockquote><p><strong>Warning:</strong> text</p></blockquote>",
			expected: warningOpen + "Text" + calloutEnd,
		},
		{
			name:     "plain blockquote",
			input:    "<blockquote><p>plain</p></blockquote>",
			expected: infoOpen + "plain" + calloutEnd,
		},
		{
			name:     "renderer whitespace",
			input:    "<blockquote>\n<p>note: mind the gap</p>\n</blockquote>",
			expected: noteOpen + "Mind the gap" + calloutEnd,
		},
		{
			name:     "multiple paragraphs",
			input:    "<blockquote><p>Warning: one</p><p>two</p></blockquote>",
			expected: warningOpen + "One" + calloutEnd + warningOpen + "two" + calloutEnd,
		},
		{
			name:     "word starting with note is still a note",
			input:    "<blockquote><p>Notes are kept</p></blockquote>",
			expected: noteOpen + "Notes are kept" + calloutEnd,
		},
		{
			name:     "label later in the text is content",
			input:    "<blockquote><p><strong>Note</strong> see below. Note: x</p></blockquote>",
			expected: noteOpen + "<strong>Note</strong> see below. Note: x" + calloutEnd,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConvertCallouts(tt.input))
		})
	}
}

func TestConvertCallouts_LabelForms(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrapped colon space inside", "<p><strong>Note: </strong>text</p>"},
		{"wrapped space colon space inside", "<p><em>Note : </em>text</p>"},
		{"wrapped colon inside", "<p><strong>Note:</strong> text</p>"},
		{"wrapped space colon inside", "<p><em>Note :</em> text</p>"},
		{"wrapped colon outside", "<p><strong>Note</strong>: text</p>"},
		{"wrapped space colon outside", "<p><em>Note </em>: text</p>"},
		{"plain", "<p>Note: text</p>"},
		{"plain space colon", "<p>Note : text</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ConvertCallouts("<blockquote>" + tt.input + "</blockquote>")
			assert.Equal(t, noteOpen+"Text"+calloutEnd, out)
			assert.NotContains(t, out, "<strong>")
			assert.NotContains(t, out, "<em>")
		})
	}
}

func TestCalloutRule_StripsFirstOccurrenceOnly(t *testing.T) {
	rule := calloutRules[0]
	assert.Equal(t, "<p>a NOTE: b</p>", rule.stripLabel("<p>note: a NOTE: b</p>"))
}

func TestCalloutRule_StripsLeadingLabelOnly(t *testing.T) {
	rule := calloutRules[0]
	assert.Equal(t, "<p>see below. Note: x</p>", rule.stripLabel("<p>see below. Note: x</p>"))
	assert.Equal(t, "<p>\n x</p>", rule.stripLabel("<p>\n Note : x</p>"))
}

func TestConvertCallouts_IdenticalBlockquotesConvertedIndependently(t *testing.T) {
	block := "<blockquote><p>Note: same</p></blockquote>"
	out := ConvertCallouts(block + "\n" + block)

	assert.Equal(t, noteOpen+"Same"+calloutEnd+"\n"+noteOpen+"Same"+calloutEnd, out)
	assert.NotContains(t, out, "blockquote")
}

func TestConvertCallouts_Doctoc(t *testing.T) {
	input := "<!-- START doctoc generated TOC please keep comment here -->\n" +
		"<ul><li>a</li></ul>\n" +
		"<!-- END doctoc generated TOC please keep comment here to allow auto update -->\n<p>Body</p>"

	out := ConvertCallouts(input)

	assert.True(t, strings.HasPrefix(out, `<p><ac:structured-macro ac:name="toc">`))
	assert.Contains(t, out, `<ac:parameter ac:name="maxLevel">7</ac:parameter>`)
	assert.Contains(t, out, `<ac:parameter ac:name="outline">clear</ac:parameter>`)
	assert.Contains(t, out, `<ac:parameter ac:name="include">.*</ac:parameter>`)
	assert.NotContains(t, out, "doctoc")
	assert.NotContains(t, out, "<li>a</li>")
	assert.Contains(t, out, "<p>Body</p>")
}

func TestCapitalizeAfterFirstTag(t *testing.T) {
	assert.Equal(t, "<p>Text</p>", capitalizeAfterFirstTag("<p>text</p>"))
	assert.Equal(t, "<p>Éa</p>", capitalizeAfterFirstTag("<p>éa</p>"))
	assert.Equal(t, "<p>1a</p>", capitalizeAfterFirstTag("<p>1a</p>"))
	assert.Equal(t, "no tags", capitalizeAfterFirstTag("no tags"))
	assert.Equal(t, "<p>", capitalizeAfterFirstTag("<p>"))
}
