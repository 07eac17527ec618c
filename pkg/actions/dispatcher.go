package actions

import (
	"context"
	"strings"
	"time"

	"github.com/tarunerror/openNova/pkg/exec"
	"github.com/tarunerror/openNova/pkg/input"
	"github.com/tarunerror/openNova/pkg/logx"
	"github.com/tarunerror/openNova/pkg/vision"
)

// Dispatcher routes a single action to the effector able to perform it.
// It never panics and never aborts; every problem becomes a failed outcome.
type Dispatcher struct {
	sim     input.Simulator
	runner  exec.Runner
	locator *vision.Chain
	logger  *logx.Logger
	sleep   func(time.Duration)
}

// NewDispatcher builds a dispatcher over the given effectors. locator may be
// nil when no UI resolution tiers are available.
func NewDispatcher(sim input.Simulator, runner exec.Runner, locator *vision.Chain, logger *logx.Logger) *Dispatcher {
	if logger == nil {
		logger = logx.NewLogger("dispatcher")
	}
	return &Dispatcher{
		sim:     sim,
		runner:  runner,
		locator: locator,
		logger:  logger,
		sleep:   time.Sleep,
	}
}

// Dispatch performs one action and returns its outcome. Unknown kinds fail;
// they never partially execute.
func (d *Dispatcher) Dispatch(ctx context.Context, a Action) StepOutcome {
	d.logger.Debug("dispatching %s target=%q value=%q", a.Kind, a.Target.String(), a.Value)

	switch a.Kind {
	case KindClick:
		return d.click(ctx, a)
	case KindType:
		return d.typeText(ctx, a)
	case KindKey:
		return d.pressKey(ctx, a)
	case KindShell:
		return d.shell(ctx, a)
	case KindOpen:
		return d.open(ctx, a)
	case KindWait:
		return d.wait(a)
	case KindMove:
		return d.move(ctx, a)
	case KindScroll:
		return d.scroll(ctx, a)
	default:
		return failure("unknown action kind: %s", a.Kind)
	}
}

// resolveTarget turns a target into screen coordinates, consulting the
// locator chain for named targets.
func (d *Dispatcher) resolveTarget(ctx context.Context, t Target) (vision.Point, bool) {
	if t.Coord != nil {
		return *t.Coord, true
	}
	if t.Name == "" || d.locator == nil {
		return vision.Point{}, false
	}
	return d.locator.Resolve(ctx, t.Name)
}

func (d *Dispatcher) click(ctx context.Context, a Action) StepOutcome {
	pt, found := d.resolveTarget(ctx, a.Target)
	if !found {
		return failure("could not find: %s", a.Target.String())
	}
	if err := d.sim.Click(ctx, pt.X, pt.Y); err != nil {
		return failure("click failed: %v", err)
	}
	return success("clicked %s", a.Target.String())
}

func (d *Dispatcher) typeText(ctx context.Context, a Action) StepOutcome {
	if a.Value == "" {
		return failure("type action requires text")
	}
	if err := d.sim.TypeText(ctx, string(a.Value)); err != nil {
		return failure("typing failed: %v", err)
	}
	return success("typed %q", a.Value)
}

func (d *Dispatcher) pressKey(ctx context.Context, a Action) StepOutcome {
	spec := string(a.Value)
	if spec == "" {
		spec = a.Target.Name
	}
	if spec == "" {
		return failure("key action requires a key name")
	}

	if strings.Contains(spec, "+") {
		parts := strings.Split(spec, "+")
		keys := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				keys = append(keys, p)
			}
		}
		if len(keys) < 2 {
			return failure("invalid key chord: %s", spec)
		}
		if err := d.sim.Hotkey(ctx, keys...); err != nil {
			return failure("hotkey failed: %v", err)
		}
		return success("pressed %s", spec)
	}

	if err := d.sim.PressKey(ctx, spec); err != nil {
		return failure("key press failed: %v", err)
	}
	return success("pressed %s", spec)
}

func (d *Dispatcher) shell(ctx context.Context, a Action) StepOutcome {
	command := a.CommandText()
	if command == "" {
		return failure("shell action requires a command")
	}

	res, err := d.runner.Run(ctx, command, nil)
	if err != nil {
		return failure("shell execution failed: %v", err)
	}

	out := StepOutcome{
		Succeeded: res.ExitCode == 0,
		Extra: map[string]any{
			"exit_code": res.ExitCode,
			"stdout":    res.Stdout,
			"stderr":    res.Stderr,
		},
	}
	if out.Succeeded {
		out.Message = "command completed"
	} else {
		out.Message = "command failed"
		if res.Stderr != "" {
			out.Message = "command failed: " + strings.TrimSpace(res.Stderr)
		}
	}
	return out
}

func (d *Dispatcher) open(ctx context.Context, a Action) StepOutcome {
	app := a.CommandText()
	if app == "" {
		return failure("open action requires an application name")
	}
	if err := d.runner.Open(ctx, app); err != nil {
		return failure("could not open %s: %v", app, err)
	}
	return success("opened %s", app)
}

func (d *Dispatcher) wait(a Action) StepOutcome {
	secs := a.Value.Float(1.0)
	if secs < 0 {
		secs = 0
	}
	d.sleep(time.Duration(secs * float64(time.Second)))
	return success("waited %.1fs", secs)
}

func (d *Dispatcher) move(ctx context.Context, a Action) StepOutcome {
	pt, found := d.resolveTarget(ctx, a.Target)
	if !found {
		return failure("could not find: %s", a.Target.String())
	}
	if err := d.sim.MoveTo(ctx, pt.X, pt.Y); err != nil {
		return failure("move failed: %v", err)
	}
	return success("moved to %s", a.Target.String())
}

func (d *Dispatcher) scroll(ctx context.Context, a Action) StepOutcome {
	dir := input.ScrollDown
	if strings.EqualFold(a.Direction, "up") {
		dir = input.ScrollUp
	}
	// The magnitude passes through as parsed; only an unparseable value
	// falls back to the default. Direction carries the sign.
	clicks := a.Value.Int(3)
	if err := d.sim.Scroll(ctx, clicks, dir); err != nil {
		return failure("scroll failed: %v", err)
	}
	return success("scrolled %s %d", dir, clicks)
}
