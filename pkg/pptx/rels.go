package pptx

import (
	"fmt"
	"path"
	"strings"
)

// Relationship 是 .rels 部件中的一条关系
type Relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// External reports whether the target lives outside the package.
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

// RelsPartName returns the name of the relationships part for source.
func RelsPartName(source string) string {
	dir, base := path.Split(source)
	return path.Join(dir, "_rels", base+".rels")
}

// ResolveTarget 将相对目标解析为包内的绝对部件名
func ResolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// Relationships returns the relationships declared for source, keyed by id.
// A part without a .rels part has no relationships.
func (p *Package) Relationships(source string) (map[string]Relationship, error) {
	relsName := RelsPartName(source)
	if !p.Has(relsName) {
		return map[string]Relationship{}, nil
	}

	part, err := p.Part(relsName)
	if err != nil {
		return nil, err
	}

	rels := make(map[string]Relationship)
	for _, el := range Children(part.Root(), NSPackageRelationships, "Relationship") {
		rel := Relationship{
			ID:         el.SelectAttrValue("Id", ""),
			Type:       el.SelectAttrValue("Type", ""),
			Target:     el.SelectAttrValue("Target", ""),
			TargetMode: el.SelectAttrValue("TargetMode", ""),
		}
		if rel.ID != "" {
			rels[rel.ID] = rel
		}
	}
	return rels, nil
}

// ResolveRelationship 返回 source 中关系 id 指向的部件名
func (p *Package) ResolveRelationship(source, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("empty relationship id in %s", source)
	}
	rels, err := p.Relationships(source)
	if err != nil {
		return "", err
	}
	rel, ok := rels[id]
	if !ok {
		return "", fmt.Errorf("relationship %s not found in %s", id, source)
	}
	if rel.External() {
		return "", fmt.Errorf("relationship %s in %s points outside the package", id, source)
	}
	return ResolveTarget(source, rel.Target), nil
}
