package dom

import (
	"strings"

	"golang.org/x/net/html"
)

type declaration struct {
	prop  string
	value string
}

// parseStyle splits an inline style attribute into declarations, keeping
// their order.
func parseStyle(s string) []declaration {
	var decls []declaration
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		decls = append(decls, declaration{prop: prop, value: strings.TrimSpace(value)})
	}
	return decls
}

func formatStyle(decls []declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ":" + d.value
	}
	return strings.Join(parts, ";")
}

func styleValue(n *html.Node, prop string) string {
	for _, d := range parseStyle(attr(n, "style")) {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// setStyle sets one property of n's inline style, adding the attribute
// if needed.
func setStyle(n *html.Node, prop, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key != "style" {
			continue
		}
		decls := parseStyle(n.Attr[i].Val)
		found := false
		for j := range decls {
			if decls[j].prop == prop {
				decls[j].value = value
				found = true
			}
		}
		if !found {
			decls = append(decls, declaration{prop: prop, value: value})
		}
		n.Attr[i].Val = formatStyle(decls)
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: prop + ":" + value})
}
