package codegen

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/dashgen/pkg/uitree"
)

// SerializeProps renders props as a space-joined JSX attribute sequence in
// input order.
//
//	string              name="value"   (name={"..."} when it holds quotes, backslashes, newlines or '&')
//	number, boolean     name={2}, name={true}
//	array, object       name={<literal>}
//
// Nil values are dropped. Values without a literal form are dropped and
// reported. An empty result means no attributes.
func SerializeProps(props uitree.Props) (string, []Diagnostic) {
	attrs := make([]string, 0, len(props))
	var diags []Diagnostic

	for _, p := range props {
		if p.Value == nil {
			continue
		}

		if s, ok := p.Value.(string); ok && attrSafe(s) {
			attrs = append(attrs, p.Name+`="`+s+`"`)
			continue
		}

		lit, err := encodeLiteral(p.Value)
		if err != nil {
			diags = append(diags, Diagnostic{
				Kind:    KindUnencodable,
				Prop:    p.Name,
				Message: fmt.Sprintf("value dropped: %v", err),
			})
			continue
		}
		attrs = append(attrs, p.Name+"={"+lit+"}")
	}

	return strings.Join(attrs, " "), diags
}
