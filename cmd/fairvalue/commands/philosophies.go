package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fairvalue/screener/internal/philosophy"
	"github.com/fairvalue/screener/internal/universe"
)

// philosophiesCmd lists the investment philosophies
var philosophiesCmd = &cobra.Command{
	Use:     "philosophies",
	Aliases: []string{"profiles"},
	Short:   "투자 철학 목록",
	Long: `등록된 투자 철학과 DCF/가중치 가정을 출력합니다.
--profiles 로 YAML 오버라이드를 지정하면 반영된 값을 보여줍니다.`,
	RunE: runPhilosophies,
}

// universesCmd lists the ticker lists found in UNIVERSE_DIR
var universesCmd = &cobra.Command{
	Use:   "universes",
	Short: "유니버스(티커 목록) 조회",
	RunE:  runUniverses,
}

func init() {
	rootCmd.AddCommand(philosophiesCmd)
	rootCmd.AddCommand(universesCmd)
}

func runPhilosophies(cmd *cobra.Command, args []string) error {
	_, _, profiles, err := loadSettings()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return PrintJSON(out, profiles.All())
	}

	for _, p := range profiles.All() {
		printProfile(out, p)
	}
	return nil
}

func printProfile(w io.Writer, p philosophy.Profile) {
	PrintHeader(w, fmt.Sprintf("%s (%s)", p.Name, p.Title), p.Description)

	wts := p.Weights()
	PrintKeyValue(w, "Years", fmt.Sprintf("%d", p.ProjectionYears), 18)
	PrintKeyValue(w, "Discount rate", fmtPct(&p.DiscountRate), 18)
	PrintKeyValue(w, "Terminal growth", fmtPct(&p.TerminalGrowth), 18)
	g := p.ProjectedGrowth()
	PrintKeyValue(w, "Projection growth", fmtPct(&g), 18)
	side := "discount rate"
	if p.SensitivityOnGrowth {
		side = "terminal growth"
	}
	PrintKeyValue(w, "Sensitivity", fmt.Sprintf("± %s on %s", fmtPct(&p.SensitivityDelta), side), 18)
	PrintKeyValue(w, "Weights", fmt.Sprintf("value %.2f / quality %.2f / growth %.2f / stability %.2f",
		wts.Value, wts.Quality, wts.Growth, wts.Stability), 18)
	PrintKeyValue(w, "ROE ≥", fmtPct(&p.ROEThreshold), 18)
	PrintKeyValue(w, "Revenue growth ≥", fmtPct(&p.RevenueGrowthThreshold), 18)
	if p.RequiredYield != nil {
		PrintKeyValue(w, "Yield ≥", fmtPct(p.RequiredYield), 18)
	}
	if p.MaxPayoutRatio != nil {
		PrintKeyValue(w, "Payout ≤", fmtPct(p.MaxPayoutRatio), 18)
	}
	for _, warn := range p.Warn() {
		PrintWarning(w, warn.Message)
	}
}

func runUniverses(cmd *cobra.Command, args []string) error {
	cfg, _, _, err := loadSettings()
	if err != nil {
		return err
	}

	names, err := universe.Names(cfg.Screen.UniverseDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return PrintJSON(out, names)
	}
	if len(names) == 0 {
		PrintWarning(out, fmt.Sprintf("No *%s files found in %s", universe.Suffix, cfg.Screen.UniverseDir))
		return nil
	}
	for _, n := range names {
		fmt.Fprintf(out, "   • %s\n", n)
	}
	return nil
}
