// Package deck 是幻灯片翻译的核心：文档模型、分类器、地址、提取器与写回。
//
// 使用流程：Open 加载文档，Extractor 一次性提取全部片段，
// 按幻灯片调用翻译后由 Reconciler 写回，最后 Save 保存。
// Document 不是并发安全的，整个流程由单个调用方持有。
package deck

import (
	"fmt"
	"io"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/pptx"
)

// Document 是已加载的演示文稿
type Document struct {
	pkg    *pptx.Package
	Slides []*Slide
}

// Slide 是一页幻灯片，Index 从 0 开始
type Slide struct {
	Index    int
	PartName string
	Shapes   []Shape
}

// Open 从文件加载演示文稿
func Open(filename string) (*Document, error) {
	pkg, err := pptx.Open(filename)
	if err != nil {
		return nil, NewError(ErrInputValidation, "open", -1, err)
	}
	return FromPackage(pkg)
}

// Load 从内存加载演示文稿
func Load(data []byte) (*Document, error) {
	pkg, err := pptx.Load(data)
	if err != nil {
		return nil, NewError(ErrInputValidation, "load", -1, err)
	}
	return FromPackage(pkg)
}

// FromPackage builds the slide and shape model over an opened package.
func FromPackage(pkg *pptx.Package) (*Document, error) {
	names, err := pkg.SlideNames()
	if err != nil {
		return nil, NewError(ErrInputValidation, "load", -1, err)
	}

	doc := &Document{pkg: pkg}
	for i, name := range names {
		part, err := pkg.Part(name)
		if err != nil {
			return nil, NewError(ErrInputValidation, "load", i, err)
		}
		tree := pptx.Path(part.Root(), pptx.NSPresentation, "cSld", "spTree")
		if tree == nil {
			return nil, NewError(ErrInputValidation, "load", i, fmt.Errorf("%s has no shape tree", name))
		}
		doc.Slides = append(doc.Slides, &Slide{
			Index:    i,
			PartName: name,
			Shapes:   buildShapes(tree, pkg, part),
		})
	}
	return doc, nil
}

// Package 返回底层的 PPTX 包
func (d *Document) Package() *pptx.Package {
	return d.pkg
}

// Slide 返回指定索引的幻灯片
func (d *Document) Slide(index int) (*Slide, error) {
	if index < 0 || index >= len(d.Slides) {
		return nil, fmt.Errorf("slide %d out of range (document has %d slides)", index, len(d.Slides))
	}
	return d.Slides[index], nil
}

// Shape 返回指定索引的形状
func (s *Slide) Shape(index int) (Shape, error) {
	if index < 0 || index >= len(s.Shapes) {
		return nil, fmt.Errorf("shape %d out of range (slide %d has %d shapes)", index, s.Index, len(s.Shapes))
	}
	return s.Shapes[index], nil
}

// Save 将文档写入 w
func (d *Document) Save(w io.Writer) error {
	return d.pkg.Save(w)
}

// SaveFile 将文档保存到文件
func (d *Document) SaveFile(filename string) error {
	return d.pkg.SaveFile(filename)
}
