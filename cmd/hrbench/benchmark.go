package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yuqie6/HRBench/internal/bootstrap"
	"github.com/yuqie6/HRBench/internal/collector"
	"github.com/yuqie6/HRBench/internal/excel"
	"github.com/yuqie6/HRBench/internal/repository"
	"github.com/yuqie6/HRBench/internal/service"
)

type periodFlags struct {
	year    int
	quarter int
}

func (p *periodFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.year, "year", 0, "统计年份（默认当前年份）")
	cmd.Flags().IntVar(&p.quarter, "quarter", 0, "统计季度 1-4（0 为全年）")
}

// metricsCmd 聚合并打印企业指标
func metricsCmd() *cobra.Command {
	var (
		period     periodFlags
		bestEffort bool
	)
	cmd := &cobra.Command{
		Use:   "metrics <company-id>",
		Short: "聚合企业 HR 指标",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(func(core *bootstrap.Core) error {
				ctx := context.Background()
				collect := core.Services.Metrics.CollectCompanyMetrics
				if bestEffort || core.Cfg.Aggregator.BestEffort {
					collect = core.Services.Metrics.CollectCompanyMetricsBestEffort
				}
				m, err := collect(ctx, args[0], period.year, period.quarter)
				if err != nil {
					return err
				}
				return printJSON(m)
			})
		},
	}
	period.bind(cmd)
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "类别失败时返回部分结果")
	return cmd
}

// compareCmd 企业与行业基准对比
func compareCmd() *cobra.Command {
	var (
		period periodFlags
		asJSON bool
		out    string
	)
	cmd := &cobra.Command{
		Use:   "compare <company-id>",
		Short: "与所属细分行业基准对比",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(func(core *bootstrap.Core) error {
				result, err := core.Services.Benchmarks.CompareCompany(context.Background(), args[0], period.year, period.quarter)
				if err != nil {
					return err
				}
				if out != "" {
					f, err := excel.WriteComparison(result)
					if err != nil {
						return err
					}
					defer f.Close()
					if err := f.SaveAs(out); err != nil {
						return fmt.Errorf("保存对比报告失败: %w", err)
					}
					fmt.Printf("📄 对比报告已保存: %s\n", out)
				}
				if asJSON {
					return printJSON(result)
				}
				printComparison(result)
				return nil
			})
		},
	}
	period.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	cmd.Flags().StringVarP(&out, "out", "o", "", "同时导出 xlsx 对比报告")
	return cmd
}

func printComparison(r *service.ComparisonResult) {
	name := r.CompanyID
	if r.CompanyName != "" {
		name = fmt.Sprintf("%s（%s）", r.CompanyName, r.CompanyID)
	}
	fmt.Printf("📊 %s %s 行业对标\n", name, r.PeriodLabel)
	fmt.Printf("   基准: %s  来源: %s  可信度: %s\n\n", r.Benchmark.BenchmarkKey.String(), r.Benchmark.DataSource, r.Benchmark.DataConfidence)

	fmt.Printf("%-14s %10s %10s %9s  %s\n", "维度", "企业", "基准", "差异%", "位置")
	for _, d := range r.Dimensions {
		fmt.Printf("%-14s %10.2f %10.2f %8.1f%%  %s\n", d.Label, d.CompanyValue, d.BenchmarkValue, d.DifferencePercent, d.PositionText)
	}
	fmt.Printf("\n🎯 综合得分 %.1f（%s）\n", r.OverallScore, r.OverallText)
	if len(r.Skipped) > 0 {
		fmt.Printf("⚠️  以下类别数据缺失，未参与对比: %v\n", r.Skipped)
	}

	printList("🌟 优势", r.Strengths)
	printList("💪 短板", r.Weaknesses)
	printList("💡 建议", r.Recommendations)
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s\n", title)
	for _, s := range items {
		fmt.Printf("  • %s\n", s)
	}
}

// importCmd 从文件导入基准批次
func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "导入基准批次文件（xlsx / yaml / json）",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(func(core *bootstrap.Core) error {
				ctx := context.Background()
				for _, path := range args {
					rows, err := collector.LoadRowsFromFile(path)
					if err != nil {
						return err
					}
					res, err := core.Services.Import.ImportBenchmarkData(ctx, rows)
					if err != nil {
						return err
					}
					fmt.Printf("✅ %s: 批次 %s，共 %d 行，成功 %d，失败 %d\n", path, res.BatchID, res.Total, res.Success, res.Failed)
					for _, msg := range res.Errors {
						fmt.Printf("   • %s\n", msg)
					}
				}
				return nil
			})
		},
	}
}

// benchmarksCmd 浏览基准目录
func benchmarksCmd() *cobra.Command {
	var filter repository.BenchmarkFilter
	cmd := &cobra.Command{
		Use:   "benchmarks",
		Short: "浏览行业基准目录",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(func(core *bootstrap.Core) error {
				items, err := core.Services.Benchmarks.ListBenchmarks(context.Background(), filter)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Println("基准目录为空")
					return nil
				}
				for _, b := range items {
					fmt.Printf("%-40s 平均薪酬 %6.2f 万  离职率 %5.1f%%  样本 %d  (%s)\n",
						b.Key().String(), b.AvgSalary, b.TurnoverRate, b.SampleSize, b.DataConfidence)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter.Industry, "industry", "", "行业")
	cmd.Flags().StringVar(&filter.CompanySize, "size", "", "企业规模")
	cmd.Flags().StringVar(&filter.Region, "region", "", "地区")
	cmd.Flags().IntVar(&filter.Year, "year", 0, "年份")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "最多显示条数")
	return cmd
}

// templateCmd 生成导入模板
func templateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template [path]",
		Short: "生成基准导入模板 xlsx",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "benchmark_template.xlsx"
			if len(args) == 1 {
				path = args[0]
			}
			f, err := excel.BuildImportTemplate()
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.SaveAs(path); err != nil {
				return fmt.Errorf("保存模板失败: %w", err)
			}
			fmt.Printf("📄 导入模板已保存: %s\n", path)
			return nil
		},
	}
}

func dimensionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dimensions",
		Short: "列出对比维度",
		Run: func(cmd *cobra.Command, args []string) {
			for _, d := range service.Dimensions() {
				direction := "越低越好"
				if d.HigherIsBetter {
					direction = "越高越好"
				}
				fmt.Printf("%-28s %-12s %-6s %-8s %s\n", d.Key, d.Label, d.Unit, direction, d.Category.Label())
			}
		},
	}
}

func optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "列出行业/规模/地区/可信度选项",
		Run: func(cmd *cobra.Command, args []string) {
			opts := service.ReferenceOptions()
			printOptions("行业", opts.Industries)
			printOptions("企业规模", opts.CompanySizes)
			printOptions("地区", opts.Regions)
			printOptions("数据可信度", opts.Confidences)
		},
	}
}

func printOptions(title string, opts []service.Option) {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		parts = append(parts, fmt.Sprintf("%s(%s)", o.Value, o.Label))
	}
	fmt.Printf("%s: %s\n", title, strings.Join(parts, ", "))
}
