// Package pptx 读写 PresentationML 包（zip 容器中的 XML 部件）。
//
// 只有被修改过的 XML 部件会重新序列化，其余 zip 条目按原字节复制，
// 因此母版、版式、媒体等内容保存后保持不变。
package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

const (
	contentTypesPart = "[Content_Types].xml"
	presentationPart = "ppt/presentation.xml"
)

// ErrInvalidPackage 表示输入不是可读的 PPTX 包
var ErrInvalidPackage = errors.New("not a valid pptx package")

// Part is a parsed XML part of the package.
type Part struct {
	Name  string
	Doc   *etree.Document
	dirty bool
}

// Root 返回部件的根元素
func (p *Part) Root() *etree.Element {
	return p.Doc.Root()
}

// Touch marks the part as modified so Save re-serializes it.
func (p *Part) Touch() {
	p.dirty = true
}

// Dirty reports whether the part was modified.
func (p *Part) Dirty() bool {
	return p.dirty
}

// Package 是一个已打开的 PPTX 包
type Package struct {
	files []*zip.File
	index map[string]*zip.File
	parts map[string]*Part
}

// Open reads a .pptx file from disk.
func Open(filename string) (*Package, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return Load(data)
}

// Load parses a .pptx package held in memory.
func Load(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}

	pkg := &Package{
		files: zr.File,
		index: make(map[string]*zip.File, len(zr.File)),
		parts: make(map[string]*Part),
	}
	for _, f := range zr.File {
		pkg.index[f.Name] = f
	}

	if !pkg.Has(contentTypesPart) {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidPackage, contentTypesPart)
	}
	return pkg, nil
}

// Has reports whether the package contains the named entry.
func (p *Package) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Part 返回解析后的 XML 部件，首次访问时解析并缓存
func (p *Package) Part(name string) (*Part, error) {
	if part, ok := p.parts[name]; ok {
		return part, nil
	}

	f, ok := p.index[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", name, err)
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse part %s: %w", name, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("part %s has no root element", name)
	}

	part := &Part{Name: name, Doc: doc}
	p.parts[name] = part
	return part, nil
}

// SlideNames 按演示文稿顺序返回幻灯片部件名。
// 优先使用 presentation.xml 的 sldIdLst，缺失时按 slideN.xml 的数字排序。
func (p *Package) SlideNames() ([]string, error) {
	if p.Has(presentationPart) {
		part, err := p.Part(presentationPart)
		if err != nil {
			return nil, err
		}
		if lst := Child(part.Root(), NSPresentation, "sldIdLst"); lst != nil {
			var names []string
			for _, sldID := range Children(lst, NSPresentation, "sldId") {
				rid := AttrNS(sldID, NSRelationships, "id")
				target, err := p.ResolveRelationship(presentationPart, rid)
				if err != nil {
					return nil, err
				}
				names = append(names, target)
			}
			return names, nil
		}
	}

	type numbered struct {
		name string
		n    int
	}
	var slides []numbered
	for _, f := range p.files {
		dir, base := path.Split(f.Name)
		if dir != "ppt/slides/" || !strings.HasPrefix(base, "slide") || !strings.HasSuffix(base, ".xml") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(base, "slide"), ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, numbered{name: f.Name, n: n})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	names := make([]string, len(slides))
	for i, s := range slides {
		names[i] = s.name
	}
	return names, nil
}

// Save writes the package to w. Unmodified entries are copied verbatim.
func (p *Package) Save(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, f := range p.files {
		part, ok := p.parts[f.Name]
		if !ok || !part.dirty {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("failed to copy %s: %w", f.Name, err)
			}
			continue
		}

		data, err := part.Doc.WriteToBytes()
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", f.Name, err)
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
		})
		if err != nil {
			return fmt.Errorf("failed to create entry %s: %w", f.Name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize package: %w", err)
	}
	return nil
}

// SaveFile 保存到文件：先写入同目录临时文件，再重命名
func (p *Package) SaveFile(filename string) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, ".pptx-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := p.Save(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
