package translator

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// 推理模型在回答前输出的思考块，如 <think>...</think>
var reasoningBlock = regexp2.MustCompile(`<(think|reasoning|analysis|思考|思路|推理|分析)>.*?</\1>`, regexp2.IgnoreCase|regexp2.Singleline)

// FilterReasoning 移除回复中的推理块
func FilterReasoning(content string) string {
	out, err := reasoningBlock.Replace(content, "", -1, -1)
	if err != nil {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(out)
}
