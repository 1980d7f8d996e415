package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/ArnoutMaet/walker-masses/internal/bias"
	"github.com/ArnoutMaet/walker-masses/internal/config"
	"github.com/ArnoutMaet/walker-masses/internal/forcefield"
	"github.com/ArnoutMaet/walker-masses/internal/potential"
	"github.com/ArnoutMaet/walker-masses/internal/sampling"
	"github.com/ArnoutMaet/walker-masses/internal/strain"
	"github.com/ArnoutMaet/walker-masses/internal/units"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	safeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	alertStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
)

var (
	configFile string
	potName    string
	threshold  float64
	plotForces bool
	strainSpec string
	boxSpec    string
	box0Spec   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "walker",
		Short: "force, strain and trajectory toolkit for periodic atomic systems",
	}

	pointCmd := &cobra.Command{
		Use:   "point [structure.xyz]",
		Short: "single-point energy/force evaluation with safety check",
		Args:  cobra.ExactArgs(1),
		RunE:  runPoint,
	}
	pointCmd.Flags().StringVar(&configFile, "config", "", "yaml configuration file")
	pointCmd.Flags().StringVar(&potName, "potential", "", "potential name (overrides config)")
	pointCmd.Flags().Float64Var(&threshold, "threshold", 0, "force threshold in eV/A (overrides config)")
	pointCmd.Flags().BoolVar(&plotForces, "plot", false, "plot per-atom force magnitudes")

	strainCmd := &cobra.Command{
		Use:   "strain",
		Short: "strain/box transformations",
	}
	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "deform a reference box by a symmetric strain tensor",
		RunE:  runStrainApply,
	}
	applyCmd.Flags().StringVar(&strainSpec, "strain", "", "9 components, row-major")
	applyCmd.Flags().StringVar(&box0Spec, "box0", "", "reference box, 9 components row-major (A)")
	measureCmd := &cobra.Command{
		Use:   "measure",
		Short: "measure the strain of a box relative to a reference",
		RunE:  runStrainMeasure,
	}
	measureCmd.Flags().StringVar(&boxSpec, "box", "", "deformed box, 9 components row-major (A)")
	measureCmd.Flags().StringVar(&box0Spec, "box0", "", "reference box, 9 components row-major (A)")
	strainCmd.AddCommand(applyCmd, measureCmd)

	logparseCmd := &cobra.Command{
		Use:   "logparse [file]",
		Short: "summarize integrator console output",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogparse,
	}

	rootCmd.AddCommand(pointCmd, strainCmd, logparseCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, alertStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
	}
	if potName != "" {
		cfg.Potential = potName
	}
	if threshold > 0 {
		cfg.ForceThreshold = threshold
	}
	return cfg, nil
}

func runPoint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	frames, err := sampling.ReadFile(args[0])
	if err != nil {
		return err
	}
	sys, err := frames[len(frames)-1].ToSystem()
	if err != nil {
		return err
	}
	if err := sys.SetStandardMasses(); err != nil {
		return err
	}

	calc, err := potential.New(cfg.Potential, cfg.PotentialParams)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(potential.Names(), ", "))
	}
	ff := forcefield.New(sys, cfg.ForceThreshold, forcefield.NewCalculatorPart(sys, calc))
	if cfg.Bias.Enabled {
		anchor := [3]float64{
			cfg.Bias.Anchor[0] * units.Angstrom,
			cfg.Bias.Anchor[1] * units.Angstrom,
			cfg.Bias.Anchor[2] * units.Angstrom,
		}
		k := cfg.Bias.K * units.Electronvolt / (units.Angstrom * units.Angstrom)
		ff.AddPart(bias.NewPart(sys, bias.NewRestraint(cfg.Bias.Atom, anchor, k)))
	}

	gpos := mat.NewDense(sys.Len(), 3, nil)
	vtens := mat.NewDense(3, 3, nil)
	energy, err := ff.Compute(gpos, vtens)

	var terr *forcefield.ThresholdError
	if errors.As(err, &terr) {
		fmt.Println(alertStyle.Render("unsafe: ") + terr.Error())
		os.Exit(1)
	}
	if err != nil {
		return err
	}

	magnitudes := forceMagnitudes(gpos)
	maxForce, atom := 0.0, 0
	for i, m := range magnitudes {
		if m > maxForce {
			maxForce, atom = m, i
		}
	}

	fmt.Println(titleStyle.Render("single point: ") + args[0])
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "potential\t%s\n", cfg.Potential)
	fmt.Fprintf(w, "atoms\t%d\n", sys.Len())
	fmt.Fprintf(w, "energy\t%.6f eV\n", energy/units.Electronvolt)
	fmt.Fprintf(w, "max force\t%.4f eV/A (atom %d)\n", maxForce, atom)
	fmt.Fprintf(w, "threshold\t%.4f eV/A\n", ff.Threshold())
	w.Flush()
	fmt.Println(safeStyle.Render("safe"))

	if plotForces && len(magnitudes) > 1 {
		graph := asciigraph.Plot(magnitudes,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("per-atom force magnitude (eV/A)"),
		)
		fmt.Println(graph)
	}
	return nil
}

func forceMagnitudes(gpos *mat.Dense) []float64 {
	n, _ := gpos.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sq float64
		for j := 0; j < 3; j++ {
			f := gpos.At(i, j) * units.ForcePerEVA
			sq += f * f
		}
		out[i] = math.Sqrt(sq)
	}
	return out
}

func runStrainApply(cmd *cobra.Command, args []string) error {
	s, err := parse3x3(strainSpec, "--strain")
	if err != nil {
		return err
	}
	box0, err := parse3x3(box0Spec, "--box0")
	if err != nil {
		return err
	}
	box, err := strain.Apply(s, box0)
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render("deformed box (A)"))
	print3x3(box)
	return nil
}

func runStrainMeasure(cmd *cobra.Command, args []string) error {
	box, err := parse3x3(boxSpec, "--box")
	if err != nil {
		return err
	}
	box0, err := parse3x3(box0Spec, "--box0")
	if err != nil {
		return err
	}
	s, err := strain.Compute(box, box0)
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render("strain tensor"))
	print3x3(s)
	return nil
}

func runLogparse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	tag, steps := sampling.ParseLog(string(data))
	style := safeStyle
	if tag == "unsafe" {
		style = alertStyle
	}
	fmt.Printf("%s %d steps\n", style.Render(tag), steps)
	return nil
}

func parse3x3(spec, flag string) (*mat.Dense, error) {
	if spec == "" {
		return nil, fmt.Errorf("%s is required", flag)
	}
	fields := strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 9 {
		return nil, fmt.Errorf("%s needs 9 components, got %d", flag, len(fields))
	}
	data := make([]float64, 9)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%s component %q: %v", flag, f, err)
		}
		data[i] = v
	}
	return mat.NewDense(3, 3, data), nil
}

func print3x3(m *mat.Dense) {
	for i := 0; i < 3; i++ {
		fmt.Printf("  %14.8f %14.8f %14.8f\n", m.At(i, 0), m.At(i, 1), m.At(i, 2))
	}
}
