package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"sizekit/config"
	"sizekit/fluid"
	"sizekit/manager"
	"sizekit/state"
	"sizekit/units"
)

// sheetWriter delivers generated sheets to a file or STDOUT.
type sheetWriter struct {
	path string
	out  io.Writer
	log  *zap.Logger
}

func (w *sheetWriter) Apply(css string) error {
	if len(w.path) == 0 {
		_, err := io.WriteString(w.out, css)
		return err
	}
	if err := os.WriteFile(w.path, []byte(css), 0644); err != nil {
		return fmt.Errorf("unable to write sheet '%s': %w", w.path, err)
	}
	w.log.Info("Sheet written", zap.String("file", w.path), zap.Int("bytes", len(css)))
	return nil
}

func warnExtraArgs(env *state.LocalEnv, cmd *cli.Command, expected int) {
	if cmd.Args().Len() > expected {
		env.Log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[expected:]))
	}
}

func parseSize(text string) (units.Value, error) {
	v, ok := units.ParseString(strings.TrimSpace(text))
	if !ok {
		return units.Zero, fmt.Errorf("unable to parse size '%s'", text)
	}
	return v, nil
}

func parseUnit(text string) (units.Unit, error) {
	u, ok := units.ParseUnit(text)
	if !ok {
		return u, &units.UnknownUnitError{Name: text}
	}
	return u, nil
}

func generateSheet(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	warnExtraArgs(env, cmd, 1)

	target := &sheetWriter{path: cmd.Args().Get(0), out: os.Stdout, log: env.Log}
	if err := env.StartEngine(manager.WithStyleTarget(target)); err != nil {
		return err
	}
	m := env.Manager

	unsubscribe := m.Subscribe(func(cfg manager.Config) error {
		env.Log.Info("Configuration changed", zap.Float64("base", cfg.BaseSize), zap.String("preset", cfg.Preset))
		return nil
	})
	defer unsubscribe()

	if len(target.path) > 0 {
		if fi, err := os.Stat(target.path); err == nil && fi.IsDir() {
			name := cmd.String("preset")
			if len(name) == 0 {
				name = m.Config().Preset
			}
			if len(name) == 0 {
				name = "custom"
			}
			target.path = filepath.Join(target.path, config.SheetFileName(manager.PresetName(name)))
		}
	}

	var err error
	switch {
	case cmd.IsSet("preset"):
		err = m.ApplyPreset(cmd.String("preset"))
		if err == nil && cmd.IsSet("base") {
			env.Log.Warn("Base size is ignored when preset is requested", zap.Float64("base", cmd.Float("base")))
		}
	case cmd.IsSet("base"):
		err = m.SetConfig(manager.Config{BaseSize: cmd.Float("base")})
	default:
		_, err = m.Apply()
	}
	if err != nil {
		return err
	}
	m.Flush()

	env.Rpt.StoreData("sheet.css", []byte(m.GenerateCSS()))
	return nil
}

func printFluid(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	warnExtraArgs(env, cmd, 0)

	if err := env.StartEngine(); err != nil {
		return err
	}

	minSize, err := parseSize(cmd.String("min"))
	if err != nil {
		return err
	}
	maxSize, err := parseSize(cmd.String("max"))
	if err != nil {
		return err
	}

	o := fluid.Options{
		Min:         minSize,
		Max:         maxSize,
		ViewportMin: env.Cfg.Fluid.ViewportMin,
		ViewportMax: env.Cfg.Fluid.ViewportMax,
		NoClamp:     !env.Cfg.Fluid.Clamp || cmd.Bool("no-clamp"),
	}
	if cmd.IsSet("vmin") {
		o.ViewportMin = cmd.Float("vmin")
	}
	if cmd.IsSet("vmax") {
		o.ViewportMax = cmd.Float("vmax")
	}
	if o.ViewportMax <= o.ViewportMin {
		return fmt.Errorf("%w: viewport range %v..%v is empty", manager.ErrInvalidConfiguration, o.ViewportMin, o.ViewportMax)
	}

	expr := env.Fluid.CreateFluidSize(o)
	env.Log.Debug("Fluid size", zap.Any("options", o), zap.String("expression", expr))
	_, err = fmt.Fprintln(os.Stdout, expr)
	return err
}

func printScale(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	warnExtraArgs(env, cmd, 0)

	if err := env.StartEngine(); err != nil {
		return err
	}

	base := env.Manager.Config().BaseSize
	if cmd.IsSet("base") {
		base = cmd.Float("base")
	}

	ratio := env.Cfg.Fluid.ScaleRatio.Ratio()
	if cmd.IsSet("ratio") {
		text := cmd.String("ratio")
		if r, err := strconv.ParseFloat(text, 64); err == nil {
			ratio = r
		} else if named, err := config.ParseScaleRatio(text); err == nil {
			ratio = named.Ratio()
		} else {
			return fmt.Errorf("unable to use scale ratio '%s': %w", text, err)
		}
	}
	if ratio <= 0 {
		return fmt.Errorf("%w: scale ratio must be positive, got %v", manager.ErrInvalidConfiguration, ratio)
	}

	steps := env.Cfg.Fluid.ScaleSteps
	if cmd.IsSet("steps") {
		steps = cmd.Int("steps")
	}

	unit, err := parseUnit(cmd.String("unit"))
	if err != nil {
		return err
	}

	for i, v := range env.Fluid.GenerateModularScale(base, ratio, steps, unit) {
		if _, err := fmt.Fprintf(os.Stdout, "%+d\t%s\n", i-steps, v); err != nil {
			return err
		}
	}
	return nil
}

func convertSize(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	warnExtraArgs(env, cmd, 1)

	if cmd.Args().Len() == 0 {
		return errors.New("no value to convert has been specified")
	}
	if err := env.StartEngine(); err != nil {
		return err
	}

	v, err := parseSize(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	unit, err := parseUnit(cmd.String("to"))
	if err != nil {
		return err
	}
	if v.Unit.IsRelative() || unit.IsRelative() {
		env.Log.Warn("Relative units cannot be converted, value is unchanged", zap.Stringer("value", v), zap.Stringer("to", unit))
	}

	root := env.Sizes.RootFontSize()
	if cmd.IsSet("root") {
		root = cmd.Float("root")
	}

	_, err = fmt.Fprintln(os.Stdout, env.Sizes.NewWithRoot(v, root).To(unit).String())
	return err
}

func listPresets(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	warnExtraArgs(env, cmd, 0)

	if err := env.StartEngine(); err != nil {
		return err
	}

	active := env.Manager.Config().Preset
	for _, p := range env.Manager.Presets() {
		mark := " "
		if p.Name == active {
			mark = "*"
		}
		density := p.Density
		if density <= 0 {
			density = 1
		}
		if _, err := fmt.Fprintf(os.Stdout, "%s %-16s %6.2fpx  x%.2f\n", mark, p.Name, p.BaseSize, density); err != nil {
			return err
		}
	}
	return nil
}

func diffSheet(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	warnExtraArgs(env, cmd, 1)

	fname := cmd.Args().Get(0)
	if len(fname) == 0 {
		return errors.New("no stylesheet has been specified")
	}
	data, err := os.ReadFile(fname)
	if err != nil {
		return fmt.Errorf("unable to read stylesheet: %w", err)
	}
	if err := env.StartEngine(); err != nil {
		return err
	}

	r := env.Manager.Overrides(data)
	env.Log.Info("Stylesheet compared",
		zap.String("file", fname),
		zap.Int("overridden", len(r.Overridden)),
		zap.Int("unchanged", len(r.Unchanged)),
		zap.Int("unknown", len(r.Unknown)))

	var b strings.Builder
	for _, o := range r.Overridden {
		where := o.Selector
		if len(o.Media) > 0 {
			where += " @media " + o.Media
		}
		fmt.Fprintf(&b, "~ %s: %s -> %s\t(%s)\n", o.Name, o.Generated, o.Value, where)
	}
	for _, name := range r.Unchanged {
		fmt.Fprintf(&b, "= %s\n", name)
	}
	for _, name := range r.Unknown {
		fmt.Fprintf(&b, "? %s\n", name)
	}
	_, err = io.WriteString(os.Stdout, b.String())
	return err
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	warnExtraArgs(env, cmd, 1)

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()

	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputing configuration", zap.String("state", state), zap.String("file", fname))

	_, err = out.Write(data)
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
