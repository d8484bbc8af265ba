package deck

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/pptx"
)

// DefaultLatinFont 是写回英文时强制使用的拉丁字体
const DefaultLatinFont = "Arial"

// RGB 是绝对 RGB 颜色；主题色不在此表示
type RGB struct {
	R, G, B uint8
}

// ParseRGB 解析 "1F4E79" 或 "#1F4E79" 形式的颜色
func ParseRGB(s string) (RGB, error) {
	c, err := colorful.Hex("#" + strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil {
		return RGB{}, fmt.Errorf("invalid RGB color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// Hex returns the color as six upper-case hex digits, as stored in a:srgbClr.
func (c RGB) Hex() string {
	hex := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hex()
	return strings.ToUpper(strings.TrimPrefix(hex, "#"))
}

// MarshalText 实现 encoding.TextMarshaler
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseRGB(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Format 是从段落第一个 run 捕获的字符格式
type Format struct {
	Size   *int `json:"size,omitempty"` // 字号，单位为百分之一磅
	Color  *RGB `json:"color,omitempty"`
	Bold   bool `json:"bold"`
	Italic bool `json:"italic"`
}

// CaptureFormat 从 a:rPr 读取格式，rPr 为 nil 时返回零值
func CaptureFormat(rPr *etree.Element) Format {
	var f Format
	if rPr == nil {
		return f
	}

	if sz := rPr.SelectAttrValue("sz", ""); sz != "" {
		if n, err := strconv.Atoi(sz); err == nil {
			f.Size = &n
		}
	}
	if clr := pptx.Path(rPr, pptx.NSDrawing, "solidFill", "srgbClr"); clr != nil {
		if c, err := ParseRGB(clr.SelectAttrValue("val", "")); err == nil {
			f.Color = &c
		}
	}
	f.Bold = boolAttr(rPr, "b")
	f.Italic = boolAttr(rPr, "i")
	return f
}

// 子元素在 CT_TextCharacterProperties 中的顺序
var rPrOrder = []string{
	"ln", "noFill", "solidFill", "gradFill", "blipFill", "pattFill", "grpFill",
	"effectLst", "effectDag", "highlight", "uLnTx", "uLn", "uFillTx", "uFill",
	"latin", "ea", "cs", "sym", "hlinkClick", "hlinkMouseOver", "rtl", "extLst",
}

var fillElements = []string{"noFill", "solidFill", "gradFill", "blipFill", "pattFill", "grpFill"}

// Apply writes the format onto rPr and forces the Latin typeface. The
// East Asian typeface (a:ea) is left alone.
func (f Format) Apply(rPr *etree.Element, latinFont string) {
	if latinFont == "" {
		latinFont = DefaultLatinFont
	}

	if f.Size != nil {
		rPr.CreateAttr("sz", strconv.Itoa(*f.Size))
	}
	rPr.CreateAttr("b", boolValue(f.Bold))
	rPr.CreateAttr("i", boolValue(f.Italic))

	if f.Color != nil {
		for _, local := range fillElements {
			if old := pptx.Child(rPr, pptx.NSDrawing, local); old != nil {
				rPr.RemoveChild(old)
			}
		}
		fill := pptx.NewElement(rPr, "solidFill")
		fill.CreateElement(pptx.QName(rPr, "srgbClr")).CreateAttr("val", f.Color.Hex())
		insertOrdered(rPr, fill, "solidFill")
	}

	if old := pptx.Child(rPr, pptx.NSDrawing, "latin"); old != nil {
		rPr.RemoveChild(old)
	}
	latin := pptx.NewElement(rPr, "latin")
	latin.CreateAttr("typeface", latinFont)
	insertOrdered(rPr, latin, "latin")
}

func insertOrdered(parent, child *etree.Element, local string) {
	rank := orderOf(local)
	for _, c := range parent.ChildElements() {
		if c.NamespaceURI() == pptx.NSDrawing && orderOf(c.Tag) > rank {
			parent.InsertChildAt(c.Index(), child)
			return
		}
	}
	parent.AddChild(child)
}

func orderOf(local string) int {
	for i, name := range rPrOrder {
		if name == local {
			return i
		}
	}
	return len(rPrOrder)
}

func boolAttr(el *etree.Element, key string) bool {
	v := el.SelectAttrValue(key, "")
	return v == "1" || v == "true"
}

func boolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
