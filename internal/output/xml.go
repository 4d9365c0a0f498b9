package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// XML STRUCTURE:
//   The generated XML follows this nesting pattern:
//
//   <merchantRecord source="acme.txt" dialect="TSYS">
//     <fields>
//       <Merchant_ID/>                         <!-- empty keys are kept -->
//       <Merchant_Name>CORNER DELI</Merchant_Name>
//       ...
//     </fields>
//     <validation valid="false">
//       <issue severity="error" field="TSYS_Merchant_ID" rule="required">...</issue>
//     </validation>
//   </merchantRecord>

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the XML declaration.
	// Default: "UTF-8"
	Encoding string

	// RootElement is the name of the root element.
	// Default: "merchantRecord"
	RootElement string

	// RootAttributes are additional attributes for the root element.
	// Example: {"xmlns": "http://example.com/steam"}
	RootAttributes map[string]string

	// IncludeEmptyFields keeps canonical keys without a value as empty
	// elements.
	// Default: true
	IncludeEmptyFields bool

	// IncludeValidation appends the validation block when the document has
	// a verdict.
	// Default: true
	IncludeValidation bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "UTF-8",
		RootElement:           "merchantRecord",
		RootAttributes:        make(map[string]string),
		IncludeEmptyFields:    true,
		IncludeValidation:     true,
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// GenerateXML creates an XML document with the default options.
func GenerateXML(doc *Document) ([]byte, error) {
	return GenerateXMLWithOptions(doc, DefaultGenerateOptions())
}

// GenerateXMLWithOptions creates an XML document with custom options.
func GenerateXMLWithOptions(doc *Document, options GenerateOptions) ([]byte, error) {
	if err := ValidateFields(doc.Fields); err != nil {
		return nil, err
	}

	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(fmt.Sprintf("<?xml version=\"%s\" encoding=\"%s\"?>\n",
			options.XMLVersion, options.Encoding))
	}

	root := buildDocument(doc, options)
	writeElement(&buffer, root, options.Indent, 0)

	return buffer.Bytes(), nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// XMLElement represents a generic XML element.
type XMLElement struct {
	Name       string
	Attributes []XMLAttr
	Value      string
	Children   []XMLElement
}

// XMLAttr is a single element attribute.
type XMLAttr struct {
	Name  string
	Value string
}

// buildDocument constructs the element tree for doc.
func buildDocument(doc *Document, options GenerateOptions) XMLElement {
	rootName := options.RootElement
	if rootName == "" {
		rootName = "merchantRecord"
	}

	root := XMLElement{
		Name: rootName,
		Attributes: []XMLAttr{
			{Name: "source", Value: doc.Source},
			{Name: "dialect", Value: doc.Dialect.String()},
		},
	}
	if doc.DialectSource != "" {
		root.Attributes = append(root.Attributes, XMLAttr{Name: "dialectSource", Value: doc.DialectSource})
	}

	extra := make([]string, 0, len(options.RootAttributes))
	for key := range options.RootAttributes {
		extra = append(extra, key)
	}
	sort.Strings(extra)
	for _, key := range extra {
		root.Attributes = append(root.Attributes, XMLAttr{Name: key, Value: options.RootAttributes[key]})
	}

	fields := XMLElement{Name: "fields"}
	for _, entry := range doc.Fields.Entries() {
		if entry.Value == "" && !options.IncludeEmptyFields {
			continue
		}
		fields.Children = append(fields.Children, createSimpleElement(entry.Key, entry.Value))
	}
	root.Children = append(root.Children, fields)

	if options.IncludeValidation && doc.Validation != nil {
		root.Children = append(root.Children, buildValidationElement(doc))
	}

	return root
}

// buildValidationElement constructs the validation block.
//
// STRUCTURE:
//   <validation valid="true" errors="0" warnings="1">
//     <issue severity="warning" field="Merchant_Name" rule="recommended">Merchant_Name is empty</issue>
//   </validation>
func buildValidationElement(doc *Document) XMLElement {
	result := doc.Validation
	element := XMLElement{
		Name: "validation",
		Attributes: []XMLAttr{
			{Name: "valid", Value: fmt.Sprintf("%t", result.IsValid)},
			{Name: "errors", Value: fmt.Sprintf("%d", len(result.Errors))},
			{Name: "warnings", Value: fmt.Sprintf("%d", len(result.Warnings))},
		},
	}

	for _, issue := range result.Issues {
		element.Children = append(element.Children, XMLElement{
			Name: "issue",
			Attributes: []XMLAttr{
				{Name: "severity", Value: issue.Severity},
				{Name: "field", Value: issue.Field},
				{Name: "rule", Value: issue.Rule},
			},
			Value: issue.Message,
		})
	}

	return element
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// createSimpleElement creates a simple XML element with a text value.
func createSimpleElement(name, value string) XMLElement {
	return XMLElement{
		Name:  name,
		Value: value,
	}
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	buffer.WriteString(strings.Repeat(indent, level))

	buffer.WriteString("<")
	buffer.WriteString(element.Name)

	for _, attr := range element.Attributes {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name, escapeXML(attr.Value)))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if element.Value != "" {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		buffer.WriteString(strings.Repeat(indent, level))
	}

	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// =============================================================================
// XSD GENERATION
// =============================================================================

// xsdRestrictions holds the fixed lengths of fields whose size the
// provisioning system enforces.
var xsdRestrictions = map[string]int{
	types.FieldTSYSTerminalNumber:         4,
	types.FieldTSYSStoreNumber:            4,
	types.FieldTSYSBinNumber:              6,
	types.FieldTSYSCategoryCode:           4,
	types.FieldTSYSMerchantABA:            9,
	types.FieldTSYSReimbursementAttribute: 1,
}

// GenerateXSD creates an XSD describing the documents GenerateXML emits.
// Empty values are allowed everywhere, so length restrictions are expressed
// as maxLength.
func GenerateXSD() ([]byte, error) {
	var buffer bytes.Buffer

	buffer.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="merchantRecord">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="fields">
          <xs:complexType>
            <xs:sequence>
`)

	for _, key := range types.CanonicalKeys {
		writeXSDElement(&buffer, key, 7)
	}

	buffer.WriteString(`            </xs:sequence>
          </xs:complexType>
        </xs:element>
        <xs:element name="validation" minOccurs="0">
          <xs:complexType>
            <xs:sequence>
              <xs:element name="issue" minOccurs="0" maxOccurs="unbounded">
                <xs:complexType>
                  <xs:simpleContent>
                    <xs:extension base="xs:string">
                      <xs:attribute name="severity" type="xs:string" use="required"/>
                      <xs:attribute name="field" type="xs:string" use="required"/>
                      <xs:attribute name="rule" type="xs:string" use="required"/>
                    </xs:extension>
                  </xs:simpleContent>
                </xs:complexType>
              </xs:element>
            </xs:sequence>
            <xs:attribute name="valid" type="xs:boolean" use="required"/>
            <xs:attribute name="errors" type="xs:nonNegativeInteger" use="required"/>
            <xs:attribute name="warnings" type="xs:nonNegativeInteger" use="required"/>
          </xs:complexType>
        </xs:element>
      </xs:sequence>
      <xs:attribute name="source" type="xs:string" use="required"/>
      <xs:attribute name="dialect" type="xs:string" use="required"/>
      <xs:attribute name="dialectSource" type="xs:string"/>
    </xs:complexType>
  </xs:element>
</xs:schema>
`)

	return buffer.Bytes(), nil
}

// writeXSDElement writes an XSD element definition.
func writeXSDElement(buffer *bytes.Buffer, name string, indentLevel int) {
	indent := strings.Repeat("  ", indentLevel)

	if maxLength, ok := xsdRestrictions[name]; ok {
		buffer.WriteString(fmt.Sprintf(`%s<xs:element name="%s">
%s  <xs:simpleType>
%s    <xs:restriction base="xs:string">
%s      <xs:maxLength value="%d"/>
%s    </xs:restriction>
%s  </xs:simpleType>
%s</xs:element>
`, indent, name,
			indent, indent,
			indent, maxLength,
			indent, indent, indent))
		return
	}

	buffer.WriteString(fmt.Sprintf("%s<xs:element name=\"%s\" type=\"xs:string\"/>\n", indent, name))
}
