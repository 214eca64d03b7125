package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/internal/selection"
	"github.com/fairvalue/screener/internal/universe"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "유니버스 스크리닝",
	Long: `티커 목록을 투자 철학 기준으로 순위화합니다.

점수 축:
- value: 적정가치 대비 할인 (0~1)
- quality: ROE 백분위
- growth: 매출 성장률 백분위
- stability: 1 - 부채비율 백분위

--tickers 가 --universe 보다 우선합니다.
--sort discount 는 전체 종목을 적정가치 대비 할인율 순으로 보여줍니다 (deals).

Example:
  go run ./cmd/fairvalue screen --universe "Dow 30"
  go run ./cmd/fairvalue screen --tickers AAPL,MSFT,KO --philosophy GARP --top 10
  go run ./cmd/fairvalue screen --universe "SP500" --sort discount --top 25`,
	RunE: runScreen,
}

var (
	screenUniverse   string
	screenTickers    []string
	screenPhilosophy string
	screenTop        int
	screenSort       string
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVarP(&screenUniverse, "universe", "u", "", "ticker list name from UNIVERSE_DIR (e.g. \"Dow 30\")")
	screenCmd.Flags().StringSliceVarP(&screenTickers, "tickers", "t", nil, "comma separated tickers")
	screenCmd.Flags().StringVarP(&screenPhilosophy, "philosophy", "p", "", "investment philosophy (default ValueDCF)")
	screenCmd.Flags().IntVar(&screenTop, "top", 0, "show only the top N ranked rows (0 = all)")
	screenCmd.Flags().StringVar(&screenSort, "sort", "composite", "row order: composite or discount")
}

func runScreen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.profile(screenPhilosophy)
	if err != nil {
		return err
	}

	mode, err := selection.ParseSort(screenSort)
	if err != nil {
		return err
	}

	tickers := screenTickers
	if len(tickers) == 0 {
		if screenUniverse == "" {
			return fmt.Errorf("--tickers or --universe is required")
		}
		tickers, err = universe.Load(a.cfg.Screen.UniverseDir, screenUniverse)
		if err != nil {
			return err
		}
	}

	start := time.Now()
	result, err := a.screener.Run(ctx, tickers, profile)
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}

	out := cmd.OutOrStdout()
	if mode == selection.SortDiscount {
		view := selection.ByDiscount(result)
		if jsonOutput {
			return PrintJSON(out, view)
		}
		printDeals(out, view, screenTop)
		PrintSuccess(out, fmt.Sprintf("%d tickers screened in %.2fs", result.Size(), time.Since(start).Seconds()))
		return nil
	}

	if jsonOutput {
		return PrintJSON(out, result)
	}

	printScored(out, result, screenTop)
	PrintSuccess(out, fmt.Sprintf("%d tickers screened in %.2fs", result.Size(), time.Since(start).Seconds()))
	return nil
}

var scoredColumns = []string{"#", "Ticker", "Price", "Fair", "Disc", "Value", "Qual", "Grow", "Stab", "Score", "ROE", "Growth"}
var scoredWidths = []int{4, 8, 9, 9, 8, 6, 6, 6, 6, 6, 4, 6}

func printScored(w io.Writer, u *contracts.ScoredUniverse, top int) {
	PrintHeader(w, "Screen - "+u.Profile,
		fmt.Sprintf("Run ID    : %s", u.RunID),
		fmt.Sprintf("As of     : %s", u.AsOf.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Ranked    : %d / %d", len(u.Ranked), u.Size()),
	)

	PrintTableHeader(w, scoredColumns, scoredWidths)
	for _, row := range u.TopN(top) {
		PrintTableRow(w, []string{
			strconv.Itoa(row.Rank),
			row.Ticker,
			fmtMoney(row.Price),
			fmtMoney(row.FairValue),
			fmtPct(row.DiscountPct),
			fmtScore(row.ValueScore),
			fmtScore(row.QualityPercentile),
			fmtScore(row.GrowthPercentile),
			fmtScore(row.StabilityPercentile),
			fmtScore(row.CompositeScore),
			fmtCheck(row.MeetsROEThreshold),
			fmtCheck(row.MeetsGrowthThreshold),
		}, scoredWidths)
	}

	if len(u.Unranked) == 0 {
		return
	}
	fmt.Fprintln(w)
	PrintWarning(w, fmt.Sprintf("%d unranked", len(u.Unranked)))
	for _, row := range u.Unranked {
		line := fmt.Sprintf("   • %-8s %s", row.Ticker, strings.Join(row.Flags, ","))
		if row.Error != "" {
			line += "  (" + row.Error + ")"
		}
		fmt.Fprintln(w, line)
	}
}

var dealColumns = []string{"#", "Ticker", "Price", "Fair", "Disc", "Score", "Flags"}
var dealWidths = []int{4, 8, 9, 9, 8, 6, 24}

func printDeals(w io.Writer, v *contracts.DiscountView, top int) {
	PrintHeader(w, "Deals - "+v.Profile,
		fmt.Sprintf("Run ID    : %s", v.RunID),
		fmt.Sprintf("As of     : %s", v.AsOf.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Rows      : %d", len(v.Rows)),
	)

	PrintTableHeader(w, dealColumns, dealWidths)
	for i, row := range v.TopN(top) {
		PrintTableRow(w, []string{
			strconv.Itoa(i + 1),
			row.Ticker,
			fmtMoney(row.Price),
			fmtMoney(row.FairValue),
			fmtPct(row.DiscountPct),
			fmtScore(row.CompositeScore),
			strings.Join(row.Flags, ","),
		}, dealWidths)
	}
}
