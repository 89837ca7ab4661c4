// macro.go defines structured macros and renders them to storage format.
package md

import "strings"

// BodyType indicates how a macro's body content should be rendered.
type BodyType string

const (
	BodyTypeNone      BodyType = ""           // no body (e.g., TOC)
	BodyTypeRichText  BodyType = "rich-text"  // HTML content (e.g., info, details)
	BodyTypePlainText BodyType = "plain-text" // CDATA content (e.g., code, html)
)

// Parameter is a named macro parameter. Parameters render in declaration order.
type Parameter struct {
	Name  string
	Value string
}

// MacroNode is a Confluence structured macro.
type MacroNode struct {
	Name          string
	SchemaVersion string
	Parameters    []Parameter
	Body          string
	BodyType      BodyType
}

// RenderMacroToXML converts a MacroNode to Confluence XML storage format.
// A macro with neither parameters nor body is rendered self-closed.
func RenderMacroToXML(node *MacroNode) string {
	var sb strings.Builder

	sb.WriteString(`<ac:structured-macro ac:name="`)
	sb.WriteString(node.Name)
	sb.WriteString(`"`)
	if node.SchemaVersion != "" {
		sb.WriteString(` ac:schema-version="`)
		sb.WriteString(node.SchemaVersion)
		sb.WriteString(`"`)
	}

	if len(node.Parameters) == 0 && node.BodyType == BodyTypeNone {
		sb.WriteString(`/>`)
		return sb.String()
	}
	sb.WriteString(`>`)

	for _, p := range node.Parameters {
		sb.WriteString(`<ac:parameter ac:name="`)
		sb.WriteString(p.Name)
		sb.WriteString(`">`)
		sb.WriteString(escapeXML(p.Value))
		sb.WriteString(`</ac:parameter>`)
	}

	switch node.BodyType {
	case BodyTypeRichText:
		sb.WriteString(`<ac:rich-text-body>`)
		sb.WriteString(node.Body)
		sb.WriteString(`</ac:rich-text-body>`)
	case BodyTypePlainText:
		sb.WriteString(`<ac:plain-text-body><![CDATA[`)
		sb.WriteString(escapeCDATA(node.Body))
		sb.WriteString(`]]></ac:plain-text-body>`)
	}

	sb.WriteString(`</ac:structured-macro>`)
	return sb.String()
}

// escapeCDATA splits every "]]" across two CDATA sections so the body can
// never terminate its section early.
func escapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]", "]]]]><![CDATA[")
}
