package deck

import (
	"errors"
	"fmt"
)

// 错误分类，用 errors.Is 判断
var (
	// ErrInputValidation 输入文件缺失、为空、扩展名错误或无法解析
	ErrInputValidation = errors.New("input validation failed")

	// ErrExtraction 遍历文档树提取文本失败
	ErrExtraction = errors.New("extraction failed")

	// ErrTranslationService 翻译服务调用失败（网络、凭证、响应格式）
	ErrTranslationService = errors.New("translation service failed")

	// ErrWrite 地址无法解析或写回失败
	ErrWrite = errors.New("write failed")
)

// Error 携带错误分类与位置信息
type Error struct {
	Kind  error  // ErrInputValidation / ErrExtraction / ErrTranslationService / ErrWrite
	Op    string // 发生错误的操作
	Slide int    // 幻灯片索引，-1 表示与具体幻灯片无关
	Err   error  // 原因
}

// Error 实现 error 接口
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Slide >= 0 {
		msg = fmt.Sprintf("%s (slide %d)", msg, e.Slide)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Code 返回用于 API 响应的错误代码
func (e *Error) Code() string {
	return Code(e)
}

// NewError 创建分类错误
func NewError(kind error, op string, slide int, err error) *Error {
	return &Error{Kind: kind, Op: op, Slide: slide, Err: err}
}

// Code maps an error onto a stable string code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInputValidation):
		return "INPUT_VALIDATION"
	case errors.Is(err, ErrExtraction):
		return "EXTRACTION"
	case errors.Is(err, ErrTranslationService):
		return "TRANSLATION_SERVICE"
	case errors.Is(err, ErrWrite):
		return "WRITE"
	default:
		return "INTERNAL"
	}
}

// ChartAccessError 表示图表内部结构不可读或不可写。
// 调用方记录日志后跳过该图表，不中断整个文档。
type ChartAccessError struct {
	Slide   int
	Shape   int
	Element ChartElement
	Err     error
}

// Error 实现 error 接口
func (e *ChartAccessError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("chart access failed at slide %d shape %d (%s): %v", e.Slide, e.Shape, e.Element, e.Err)
	}
	return fmt.Sprintf("chart access failed at slide %d shape %d: %v", e.Slide, e.Shape, e.Err)
}

// Unwrap 返回原因错误
func (e *ChartAccessError) Unwrap() error {
	return e.Err
}

// IsChartAccess reports whether err is (or wraps) a ChartAccessError.
func IsChartAccess(err error) bool {
	var ce *ChartAccessError
	return errors.As(err, &ce)
}
