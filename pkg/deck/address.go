package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// AddressKind 区分四种容器的坐标形式
type AddressKind int

const (
	AddrTextBox AddressKind = iota // (slide, shape, paragraph)
	AddrGroup                      // (slide, shape, sub_shape, paragraph)
	AddrTable                      // (slide, shape, row, col)
	AddrChart                      // (slide, shape, element[, series])
)

func (k AddressKind) String() string {
	switch k {
	case AddrTextBox:
		return "text_box"
	case AddrGroup:
		return "group"
	case AddrTable:
		return "table"
	case AddrChart:
		return "chart"
	default:
		return "unknown"
	}
}

// ChartElement 是图表中可翻译的子元素
type ChartElement string

const (
	ChartTitle        ChartElement = "title"
	ChartCategoryAxis ChartElement = "category_axis"
	ChartValueAxis    ChartElement = "value_axis"
	ChartLegend       ChartElement = "legend"
)

// ChartElements 按提取顺序列出图表子元素
var ChartElements = []ChartElement{ChartTitle, ChartCategoryAxis, ChartValueAxis, ChartLegend}

func (e ChartElement) valid() bool {
	for _, known := range ChartElements {
		if e == known {
			return true
		}
	}
	return false
}

// NoParagraph marks a text-box or group address without a paragraph index.
const NoParagraph = -1

// Address locates one text fragment inside a document. Indices are the
// positions seen at extraction time and are never renumbered.
type Address struct {
	Kind      AddressKind
	Slide     int
	Shape     int
	SubShape  int
	Paragraph int
	Row       int
	Col       int
	Element   ChartElement
	// Series 只用于图例地址，指向第几个系列的名称
	Series int
}

// TextBoxAddress 文本框段落地址
func TextBoxAddress(slide, shape, paragraph int) Address {
	return Address{Kind: AddrTextBox, Slide: slide, Shape: shape, Paragraph: paragraph}
}

// GroupAddress 组合形状中子形状的段落地址
func GroupAddress(slide, shape, subShape, paragraph int) Address {
	return Address{Kind: AddrGroup, Slide: slide, Shape: shape, SubShape: subShape, Paragraph: paragraph}
}

// CellAddress 表格单元格地址
func CellAddress(slide, shape, row, col int) Address {
	return Address{Kind: AddrTable, Slide: slide, Shape: shape, Row: row, Col: col}
}

// ChartAddress 图表子元素地址
func ChartAddress(slide, shape int, element ChartElement) Address {
	return Address{Kind: AddrChart, Slide: slide, Shape: shape, Element: element}
}

// LegendAddress 图例中某个系列名称的地址
func LegendAddress(slide, shape, series int) Address {
	return Address{Kind: AddrChart, Slide: slide, Shape: shape, Element: ChartLegend, Series: series}
}

// HasParagraph reports whether a text-box or group address carries a paragraph index.
func (a Address) HasParagraph() bool {
	return a.Paragraph != NoParagraph
}

// String renders the address, e.g. "s0/sh1/p2", "s0/sh1/sub2/p0",
// "s0/sh3/r1c2", "s0/sh4/chart:title" or "s0/sh4/chart:legend/ser1".
func (a Address) String() string {
	prefix := fmt.Sprintf("s%d/sh%d", a.Slide, a.Shape)
	switch a.Kind {
	case AddrTextBox:
		if !a.HasParagraph() {
			return prefix
		}
		return fmt.Sprintf("%s/p%d", prefix, a.Paragraph)
	case AddrGroup:
		if !a.HasParagraph() {
			return fmt.Sprintf("%s/sub%d", prefix, a.SubShape)
		}
		return fmt.Sprintf("%s/sub%d/p%d", prefix, a.SubShape, a.Paragraph)
	case AddrTable:
		return fmt.Sprintf("%s/r%dc%d", prefix, a.Row, a.Col)
	case AddrChart:
		if a.Element == ChartLegend {
			return fmt.Sprintf("%s/chart:%s/ser%d", prefix, a.Element, a.Series)
		}
		return fmt.Sprintf("%s/chart:%s", prefix, a.Element)
	default:
		return prefix + "/?"
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress 解析 String 生成的地址字符串
func ParseAddress(s string) (Address, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) < 2 || len(parts) > 4 {
		return Address{}, fmt.Errorf("invalid address %q", s)
	}

	slide, err := parseIndex(parts[0], "s")
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	shape, err := parseIndex(parts[1], "sh")
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}

	rest := parts[2:]
	switch {
	case len(rest) == 0:
		return TextBoxAddress(slide, shape, NoParagraph), nil

	case len(rest) == 1 && strings.HasPrefix(rest[0], "chart:"):
		el := ChartElement(strings.TrimPrefix(rest[0], "chart:"))
		if !el.valid() || el == ChartLegend {
			return Address{}, fmt.Errorf("invalid address %q: unknown chart element %q", s, el)
		}
		return ChartAddress(slide, shape, el), nil

	case len(rest) == 2 && rest[0] == "chart:"+string(ChartLegend):
		series, err := parseIndex(rest[1], "ser")
		if err != nil {
			return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
		}
		return LegendAddress(slide, shape, series), nil

	case len(rest) == 1 && strings.HasPrefix(rest[0], "sub"):
		sub, err := parseIndex(rest[0], "sub")
		if err != nil {
			return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
		}
		return GroupAddress(slide, shape, sub, NoParagraph), nil

	case len(rest) == 1 && strings.HasPrefix(rest[0], "p"):
		p, err := parseIndex(rest[0], "p")
		if err != nil {
			return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
		}
		return TextBoxAddress(slide, shape, p), nil

	case len(rest) == 1 && strings.HasPrefix(rest[0], "r"):
		rowCol := strings.SplitN(strings.TrimPrefix(rest[0], "r"), "c", 2)
		if len(rowCol) != 2 {
			return Address{}, fmt.Errorf("invalid address %q: bad cell", s)
		}
		row, err1 := strconv.Atoi(rowCol[0])
		col, err2 := strconv.Atoi(rowCol[1])
		if err1 != nil || err2 != nil || row < 0 || col < 0 {
			return Address{}, fmt.Errorf("invalid address %q: bad cell", s)
		}
		return CellAddress(slide, shape, row, col), nil

	case len(rest) == 2:
		sub, err := parseIndex(rest[0], "sub")
		if err != nil {
			return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
		}
		p, err := parseIndex(rest[1], "p")
		if err != nil {
			return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
		}
		return GroupAddress(slide, shape, sub, p), nil
	}

	return Address{}, fmt.Errorf("invalid address %q", s)
}

func parseIndex(part, prefix string) (int, error) {
	if !strings.HasPrefix(part, prefix) {
		return 0, fmt.Errorf("expected %q segment, got %q", prefix, part)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(part, prefix))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad index in %q", part)
	}
	return n, nil
}
