package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldTranslate(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   bool
		reason Reason
	}{
		{"纯数字", "2024", false, ReasonDigitsOnly},
		{"全角数字", "２０２４", false, ReasonDigitsOnly},
		{"百分号不是数字但无中文", "100%", false, ReasonNoCJK},
		{"纯英文", "Quarterly revenue report", false, ReasonNoCJK},
		{"空字符串", "", false, ReasonEmpty},
		{"中英混合高占比", "这是测试文本abc", true, ReasonRatio},
		{"领域关键词", "第3轮融资", true, ReasonRatio},
		{"年份标签", "2023年", true, ReasonRatio},
		{"低占比无提示词", "Revenue grew to 1000000 USD 增长", false, ReasonLowRatio},
		{"低占比命中关键词", "Series B round 融资 2024", true, ReasonHint},
		{"低占比命中标点", "Cost: low，very low indeed 低", true, ReasonHint},
		{"低占比命中时间单位", "Duration 2 小时 and 30 minutes total", true, ReasonHint},
		{"扩展区汉字不计入", "\U00020000abc", false, ReasonNoCJK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify(tt.text)
			assert.Equal(t, tt.want, v.Translate)
			assert.Equal(t, tt.reason, v.Reason)
			assert.Equal(t, tt.want, ShouldTranslate(tt.text))
		})
	}
}

func TestClassifyRatioBoundary(t *testing.T) {
	// 1 个汉字 / 5 个字符 = 0.2，恰好达到阈值
	v := Classify("中abcd")
	assert.True(t, v.Translate)
	assert.InDelta(t, 0.2, v.Ratio, 1e-9)

	// 1 / 6 低于阈值且无提示词
	v = Classify("中abcde")
	assert.False(t, v.Translate)
	assert.Equal(t, ReasonLowRatio, v.Reason)
}

func TestClassifyMixedRevenueLabel(t *testing.T) {
	// 8 个汉字 / 17 个字符，占比高于阈值
	v := Classify("Q1销售额增长到1000000美元")
	assert.True(t, v.Translate)
	assert.InDelta(t, 8.0/17.0, v.Ratio, 1e-9)
}

func TestClassifyReportsHint(t *testing.T) {
	v := Classify("Series B round 融资 2024")
	assert.Equal(t, "融资", v.Hint)
}
