package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fairvalue/screener/internal/screener"
)

// valueCmd represents the value command
var valueCmd = &cobra.Command{
	Use:   "value TICKER",
	Short: "단일 종목 DCF 적정가치",
	Long: `선택한 투자 철학의 가정으로 한 종목의 DCF 적정가치를 계산합니다.

출력:
- 주당 적정가치와 민감도 밴드
- 할인율 ± 2%p, 성장률 ± 1%p 3x3 그리드 범위
- 현재가 대비 할인율, value score

Example:
  go run ./cmd/fairvalue value AAPL
  go run ./cmd/fairvalue value KO --philosophy DividendIncome --json`,
	Args: cobra.ExactArgs(1),
	RunE: runValue,
}

var valuePhilosophy string

func init() {
	rootCmd.AddCommand(valueCmd)

	valueCmd.Flags().StringVarP(&valuePhilosophy, "philosophy", "p", "", "investment philosophy (default ValueDCF)")
}

func runValue(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.profile(valuePhilosophy)
	if err != nil {
		return err
	}

	v, err := a.screener.Value(ctx, args[0], profile)
	if err != nil {
		return fmt.Errorf("value %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return PrintJSON(out, v)
	}
	printValuation(out, v)
	return nil
}

func printValuation(w io.Writer, v *screener.Valuation) {
	est := v.Estimate

	PrintHeader(w, fmt.Sprintf("%s - %s", v.Ticker, v.Profile),
		fmt.Sprintf("As of     : %s", est.AsOf.Format("2006-01-02 15:04:05")),
	)

	PrintKeyValue(w, "Price", fmtMoney(v.Price), 14)
	PrintKeyValue(w, "Fair value", fmt.Sprintf("%.2f", est.PointEstimate), 14)
	PrintKeyValue(w, "Band", fmt.Sprintf("%.2f ~ %.2f", est.LowBand, est.HighBand), 14)
	if v.Range != nil {
		PrintKeyValue(w, "Grid range", fmt.Sprintf("%.2f ~ %.2f (%d cells)", v.Range.Low, v.Range.High, v.Range.Cells), 14)
	}
	PrintKeyValue(w, "Discount", fmtPct(v.DiscountPct), 14)
	PrintKeyValue(w, "Value score", fmtScore(v.ValueScore), 14)
	PrintSeparator(w)
	PrintKeyValue(w, "PV flows", fmt.Sprintf("%.0f", est.PVFlows), 14)
	PrintKeyValue(w, "PV terminal", fmt.Sprintf("%.0f", est.PVTerminal), 14)
	PrintKeyValue(w, "EV", fmt.Sprintf("%.0f", est.EnterpriseValue), 14)

	for _, warn := range est.Warnings {
		PrintWarning(w, fmt.Sprintf("%s: %s", warn.Code, warn.Message))
	}
}
