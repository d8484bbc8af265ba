package pptx

import "github.com/beevik/etree"

// OOXML namespaces used by slides and charts.
const (
	NSPresentation         = "http://schemas.openxmlformats.org/presentationml/2006/main"
	NSDrawing              = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSChart                = "http://schemas.openxmlformats.org/drawingml/2006/chart"
	NSRelationships        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSPackageRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// Is reports whether el has the given namespace and local name.
func Is(el *etree.Element, ns, local string) bool {
	return el != nil && el.Tag == local && el.NamespaceURI() == ns
}

// Child 返回第一个匹配的子元素，没有时返回 nil
func Child(el *etree.Element, ns, local string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if Is(c, ns, local) {
			return c
		}
	}
	return nil
}

// Children 返回所有匹配的子元素
func Children(el *etree.Element, ns, local string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if Is(c, ns, local) {
			out = append(out, c)
		}
	}
	return out
}

// Path follows a chain of local names inside one namespace.
func Path(el *etree.Element, ns string, locals ...string) *etree.Element {
	for _, local := range locals {
		el = Child(el, ns, local)
		if el == nil {
			return nil
		}
	}
	return el
}

// AttrNS returns the value of a namespaced attribute, or "".
func AttrNS(el *etree.Element, ns, key string) string {
	if el == nil {
		return ""
	}
	for _, a := range el.Attr {
		if a.Key == key && a.NamespaceURI() == ns {
			return a.Value
		}
	}
	return ""
}

// QName 返回使用 like 前缀的限定名
func QName(like *etree.Element, local string) string {
	if like == nil || like.Space == "" {
		return local
	}
	return like.Space + ":" + local
}

// NewElement 创建一个与 like 使用相同前缀的新元素（未挂载）
func NewElement(like *etree.Element, local string) *etree.Element {
	return etree.NewElement(QName(like, local))
}
