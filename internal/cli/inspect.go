package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-pptx-translator/internal/report"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
)

// newInspectCommand 创建 inspect 诊断命令，不需要配置与模型
func newInspectCommand() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "诊断演示文稿的形状、分类结果与图表",
	}
	cmd.PersistentFlags().IntVar(&width, "width", report.DefaultTextWidth, "文本列的最大显示宽度")

	printer := func(cmd *cobra.Command) *report.Printer {
		return report.NewPrinter(cmd.OutOrStdout()).WithTextWidth(width)
	}

	shapes := &cobra.Command{
		Use:   "shapes <input.pptx>",
		Short: "列出每页的形状、段落数与中文段落数",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := deck.Open(args[0])
			if err != nil {
				return err
			}
			printer(cmd).Shapes(report.InspectShapes(doc))
			return nil
		},
	}

	filtered := &cobra.Command{
		Use:   "filtered <input.pptx>",
		Short: "显示每个文本片段是否需要翻译及原因",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := deck.Open(args[0])
			if err != nil {
				return err
			}
			rows, summary, err := report.InspectFiltered(doc)
			if err != nil {
				return err
			}
			printer(cmd).Filtered(rows, summary)
			return nil
		},
	}

	charts := &cobra.Command{
		Use:   "charts <input.pptx> <slide>",
		Short: "列出某页图表的标题、坐标轴标题与图例（页码从 1 开始）",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[1])
			if err != nil || number < 1 {
				return fmt.Errorf("无效的页码 %q", args[1])
			}
			doc, err := deck.Open(args[0])
			if err != nil {
				return err
			}
			rows, err := report.InspectCharts(doc, number-1)
			if err != nil {
				return err
			}
			printer(cmd).Charts(rows)
			return nil
		},
	}

	cmd.AddCommand(shapes, filtered, charts)
	return cmd
}
