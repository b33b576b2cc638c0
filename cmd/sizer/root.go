package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"MyGens/internal/auth"
	"MyGens/internal/calc/importer"
	"MyGens/internal/calc/sizing"
	"MyGens/internal/i18n"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type options struct {
	json    bool
	catalog string
	lang    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "sizer",
		Short: "Standby generator sizing from the command line",
		Long: `sizer runs the same generator sizing as the MyGens web tool.

Environment Variables:
  CATALOG_FILE  YAML appliance catalog (default: built-in catalog)`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "Output JSON instead of human-readable text")
	root.PersistentFlags().StringVar(&opts.catalog, "catalog", os.Getenv("CATALOG_FILE"), "YAML appliance catalog")
	root.PersistentFlags().StringVar(&opts.lang, "lang", string(i18n.English), "Label language (en, es)")

	root.AddCommand(
		newResidentialCmd(opts),
		newIndustrialCmd(opts),
		newCatalogCmd(opts),
		newHashPasswordCmd(),
	)
	return root
}

func (o *options) calculator() (*sizing.Calculator, error) {
	if o.catalog == "" {
		return sizing.NewCalculator(nil), nil
	}
	catalog, err := sizing.LoadCatalog(o.catalog)
	if err != nil {
		return nil, err
	}
	return sizing.NewCalculator(catalog), nil
}

func (o *options) translator() (i18n.Translator, error) {
	lang, ok := i18n.Parse(o.lang)
	if !ok {
		return i18n.Translator{}, fmt.Errorf("unsupported language %q", o.lang)
	}
	b, err := i18n.Load(lang)
	if err != nil {
		return i18n.Translator{}, err
	}
	return b.Translator(lang), nil
}

func newResidentialCmd(opts *options) *cobra.Command {
	var (
		counts map[string]int
		kw     map[string]string
		phase  string
		noATS  bool
		sheet  string
	)
	cmd := &cobra.Command{
		Use:   "residential",
		Short: "Size a generator for household appliances",
		Example: `  sizer residential --device ac=2 --device waterPump=1 --kw ac=3.0 --phase 3ph
  sizer residential --sheet loads.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.calculator()
			if err != nil {
				return err
			}
			in := sizing.Input{
				Method:           "cli",
				InstallationType: sizing.Residential,
				Phase:            sizing.Phase(phase),
				ATS:              ats(noATS),
				Devices:          selections(c.Catalog(), counts, kw),
			}
			if sheet != "" {
				if in.Devices, err = readSheet(cmd.ErrOrStderr(), sheet); err != nil {
					return err
				}
			}
			return opts.run(cmd.OutOrStdout(), c, in)
		},
	}
	cmd.Flags().StringToIntVar(&counts, "device", nil, "Device count as id=count (repeatable)")
	cmd.Flags().StringToStringVar(&kw, "kw", nil, "Running kW override as id=kw (repeatable)")
	cmd.Flags().StringVar(&phase, "phase", string(sizing.SinglePhase), "Electrical service: 1ph or 3ph")
	cmd.Flags().BoolVar(&noATS, "no-ats", false, "Size for prime duty without a transfer switch")
	cmd.Flags().StringVar(&sheet, "sheet", "", "xlsx sheet of id, running_kw, alpha, count rows")
	cmd.MarkFlagsMutuallyExclusive("sheet", "device")
	cmd.MarkFlagsMutuallyExclusive("sheet", "kw")
	return cmd
}

func newIndustrialCmd(opts *options) *cobra.Command {
	var (
		in    sizing.IndustrialInput
		start string
		noATS bool
	)
	cmd := &cobra.Command{
		Use:     "industrial",
		Short:   "Size a generator for a base load plus one large motor",
		Example: `  sizer industrial --base 20 --motor 10 --method VFD`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.calculator()
			if err != nil {
				return err
			}
			in.StartMethod = sizing.StartMethod(strings.ToUpper(start))
			return opts.run(cmd.OutOrStdout(), c, sizing.Input{
				Method:           "cli",
				InstallationType: sizing.Industrial,
				ATS:              ats(noATS),
				Industrial:       in,
			})
		},
	}
	cmd.Flags().Float64Var(&in.BaseKW, "base", 0, "Continuous base load in kW")
	cmd.Flags().Float64Var(&in.MotorKW, "motor", 0, "Largest motor in kW")
	cmd.Flags().StringVar(&start, "method", string(sizing.StartDOL), "Motor starting method: DOL, STAR, SOFT or VFD")
	cmd.Flags().BoolVar(&noATS, "no-ats", false, "Size for prime duty without a transfer switch")
	return cmd
}

func newCatalogCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the appliance catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.calculator()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, c.Catalog())
			}
			for _, d := range c.Catalog() {
				fmt.Fprintf(out, "%-14s %-18s %6s kW  x%-4s default %d\n",
					d.ID, d.Name, humanize.FormatFloat("#,###.##", d.RunningKW), humanize.FormatFloat("#.#", d.Alpha), d.Count)
			}
			return nil
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password PASSWORD",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func (o *options) run(out io.Writer, c *sizing.Calculator, in sizing.Input) error {
	res, err := c.Calculate(in)
	if err != nil {
		return err
	}
	if o.json {
		return writeJSON(out, res)
	}
	tr, err := o.translator()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, summary(lipgloss.NewRenderer(out), res, tr))
	return nil
}

func ats(off bool) *bool {
	on := !off
	return &on
}

// selections starts from the catalog default counts and applies the
// --device and --kw overrides. Ids outside the catalog are added in id order.
func selections(catalog []sizing.ApplianceSpec, counts map[string]int, kw map[string]string) []sizing.DeviceInput {
	if len(counts) == 0 && len(kw) == 0 {
		return nil
	}
	known := make(map[string]bool, len(catalog))
	extra := map[string]bool{}
	var out []sizing.DeviceInput
	for _, d := range catalog {
		known[d.ID] = true
		out = append(out, override(sizing.DeviceInput{ID: d.ID, Count: d.Count}, counts, kw))
	}
	for id := range counts {
		if !known[id] {
			extra[id] = true
		}
	}
	for id := range kw {
		if !known[id] {
			extra[id] = true
		}
	}
	for _, id := range slices.Sorted(maps.Keys(extra)) {
		out = append(out, override(sizing.DeviceInput{ID: id}, counts, kw))
	}
	return out
}

func override(d sizing.DeviceInput, counts map[string]int, kw map[string]string) sizing.DeviceInput {
	if n, ok := counts[d.ID]; ok {
		d.Count = n
	}
	if v, ok := kw[d.ID]; ok {
		f := sizing.ParseKW(v)
		d.RunningKW = &f
	}
	return d
}

func readSheet(errOut io.Writer, path string) ([]sizing.DeviceInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet, err := importer.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sheet.Skipped > 0 {
		fmt.Fprintf(errOut, "skipped %d malformed rows in %s\n", sheet.Skipped, path)
	}
	return sheet.Devices, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func summary(r *lipgloss.Renderer, res sizing.Result, tr i18n.Translator) string {
	label := r.NewStyle().Bold(true).Width(24)
	rows := [][2]string{
		{tr.T("report.installation"), tr.T("report." + string(res.InstallationType))},
		{tr.T("sizingTool.runningLoad"), humanize.FormatFloat("#,###.##", res.Loads.RunningLoad) + " kW"},
		{tr.T("sizingTool.peakLoad"), humanize.FormatFloat("#,###.##", res.Loads.PeakLoad) + " kW"},
		{tr.T("sizingTool.info.recommended"), humanize.Comma(int64(res.RecommendedKW)) + " kW"},
		{tr.T("sizingTool.info.margin"), strconv.Itoa(res.MarginPercent) + " %"},
	}
	if s := res.Service; s != nil {
		rows = append(rows,
			[2]string{tr.T("sizingTool.info.amps"), strconv.Itoa(s.Amps) + " A"},
			[2]string{tr.T("report.voltage"), fmt.Sprintf("%s %s %dW", s.VoltageLabel, s.PhaseLabel, s.Wires)},
			[2]string{tr.T("sizingTool.info.atsSwitch"), s.Switch},
		)
	}
	rows = append(rows, [2]string{tr.T("report.duty"), tr.T("sizingTool.info." + res.Duty)})

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label.Render(row[0]), row[1]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
