package input

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/tarunerror/openNova/pkg/exec"
	"github.com/tarunerror/openNova/pkg/logx"
)

// xdotool wheel button codes.
const (
	wheelUp   = 4
	wheelDown = 5
)

// ShellSimulator implements Simulator by shelling out to the platform input
// tool: xdotool on Linux, cliclick on macOS, and PowerShell SendKeys on
// Windows (keyboard only; pointer uses user32 via PowerShell).
type ShellSimulator struct {
	runner exec.Runner
	logger *logx.Logger
}

// NewShellSimulator creates a simulator backed by the given runner.
func NewShellSimulator(runner exec.Runner, logger *logx.Logger) *ShellSimulator {
	return &ShellSimulator{
		runner: runner,
		logger: logger,
	}
}

// run executes an input tool command and converts non-zero exits to errors.
func (s *ShellSimulator) run(ctx context.Context, command string) error {
	opts := exec.Opts{Timeout: 10 * time.Second}
	result, err := s.runner.Run(ctx, command, &opts)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("input command failed (exit %d): %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Click performs a left click at screen coordinates.
func (s *ShellSimulator) Click(ctx context.Context, x, y int) error {
	s.logger.Debug("click at (%d, %d)", x, y)

	switch runtime.GOOS {
	case "windows":
		return s.run(ctx, windowsClickScript(x, y))
	case "darwin":
		return s.run(ctx, fmt.Sprintf("cliclick c:%d,%d", x, y))
	default:
		return s.run(ctx, fmt.Sprintf("xdotool mousemove %d %d click 1", x, y))
	}
}

// MoveTo moves the pointer to screen coordinates.
func (s *ShellSimulator) MoveTo(ctx context.Context, x, y int) error {
	s.logger.Debug("move to (%d, %d)", x, y)

	switch runtime.GOOS {
	case "windows":
		return s.run(ctx, windowsMoveScript(x, y))
	case "darwin":
		return s.run(ctx, fmt.Sprintf("cliclick m:%d,%d", x, y))
	default:
		return s.run(ctx, fmt.Sprintf("xdotool mousemove %d %d", x, y))
	}
}

// Scroll scrolls the given number of clicks in the given direction.
func (s *ShellSimulator) Scroll(ctx context.Context, clicks int, direction ScrollDirection) error {
	if clicks < 1 {
		clicks = 1
	}
	s.logger.Debug("scroll %d clicks %s", clicks, direction)

	switch runtime.GOOS {
	case "windows":
		amount := clicks * 120 // WHEEL_DELTA units
		if direction == ScrollDown {
			amount = -amount
		}
		return s.run(ctx, windowsScrollScript(amount))
	case "darwin":
		sign := "-"
		if direction == ScrollUp {
			sign = "+"
		}
		return s.run(ctx, fmt.Sprintf("cliclick w:%s%d", sign, clicks))
	default:
		button := wheelDown
		if direction == ScrollUp {
			button = wheelUp
		}
		return s.run(ctx, fmt.Sprintf("xdotool click --repeat %d %d", clicks, button))
	}
}

// TypeText types the text at the current focus.
func (s *ShellSimulator) TypeText(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("no text to type")
	}
	s.logger.Debug("type %d characters", len(text))

	switch runtime.GOOS {
	case "windows":
		return s.run(ctx, windowsSendKeysScript(escapeSendKeys(text)))
	case "darwin":
		return s.run(ctx, fmt.Sprintf("cliclick t:%s", shellQuote(text)))
	default:
		return s.run(ctx, fmt.Sprintf("xdotool type --delay 20 %s", shellQuote(text)))
	}
}

// PressKey presses a single named key.
func (s *ShellSimulator) PressKey(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("no key specified")
	}
	s.logger.Debug("press key %s", key)

	switch runtime.GOOS {
	case "windows":
		return s.run(ctx, windowsSendKeysScript(windowsKeyName(key)))
	case "darwin":
		return s.run(ctx, fmt.Sprintf("cliclick kp:%s", key))
	default:
		return s.run(ctx, fmt.Sprintf("xdotool key %s", xdotoolKeyName(key)))
	}
}

// Hotkey presses the given keys together as a chord.
func (s *ShellSimulator) Hotkey(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return fmt.Errorf("no keys specified")
	}
	s.logger.Debug("hotkey %s", strings.Join(keys, "+"))

	switch runtime.GOOS {
	case "windows":
		var chord strings.Builder
		for _, k := range keys {
			chord.WriteString(windowsModifier(k))
		}
		return s.run(ctx, windowsSendKeysScript(chord.String()))
	case "darwin":
		return s.run(ctx, fmt.Sprintf("cliclick kd:%s kp:%s ku:%s",
			strings.Join(keys[:len(keys)-1], ","), keys[len(keys)-1], strings.Join(keys[:len(keys)-1], ",")))
	default:
		mapped := make([]string, len(keys))
		for i, k := range keys {
			mapped[i] = xdotoolKeyName(k)
		}
		return s.run(ctx, fmt.Sprintf("xdotool key %s", strings.Join(mapped, "+")))
	}
}

// xdotoolKeyName maps common key names to xdotool keysym names.
func xdotoolKeyName(key string) string {
	switch strings.ToLower(key) {
	case "enter", "return":
		return "Return"
	case "esc", "escape":
		return "Escape"
	case "tab":
		return "Tab"
	case "space":
		return "space"
	case "backspace":
		return "BackSpace"
	case "delete", "del":
		return "Delete"
	case "up", "down", "left", "right", "home", "end":
		return strings.ToUpper(key[:1]) + strings.ToLower(key[1:])
	case "ctrl", "control":
		return "ctrl"
	case "alt":
		return "alt"
	case "shift":
		return "shift"
	case "win", "super", "cmd":
		return "super"
	default:
		return key
	}
}

// windowsKeyName maps common key names to SendKeys codes.
func windowsKeyName(key string) string {
	switch strings.ToLower(key) {
	case "enter", "return":
		return "{ENTER}"
	case "esc", "escape":
		return "{ESC}"
	case "tab":
		return "{TAB}"
	case "backspace":
		return "{BACKSPACE}"
	case "delete", "del":
		return "{DELETE}"
	case "up":
		return "{UP}"
	case "down":
		return "{DOWN}"
	case "left":
		return "{LEFT}"
	case "right":
		return "{RIGHT}"
	case "home":
		return "{HOME}"
	case "end":
		return "{END}"
	case "space":
		return " "
	default:
		return key
	}
}

// windowsModifier maps a hotkey component to its SendKeys modifier prefix,
// or the key code itself for non-modifiers.
func windowsModifier(key string) string {
	switch strings.ToLower(key) {
	case "ctrl", "control":
		return "^"
	case "alt":
		return "%"
	case "shift":
		return "+"
	default:
		return windowsKeyName(key)
	}
}

// escapeSendKeys escapes SendKeys metacharacters in literal text.
func escapeSendKeys(text string) string {
	replacer := strings.NewReplacer(
		"{", "{{}", "}", "{}}",
		"+", "{+}", "^", "{^}", "%", "{%}",
		"~", "{~}", "(", "{(}", ")", "{)}",
	)
	return replacer.Replace(text)
}

// shellQuote single-quotes a string for POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func windowsSendKeysScript(keys string) string {
	return fmt.Sprintf(
		`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait(%s)`,
		psQuote(keys),
	)
}

func windowsClickScript(x, y int) string {
	return windowsMoveScript(x, y) + `; Add-Type -MemberDefinition '[DllImport("user32.dll")] public static extern void mouse_event(uint f, uint x, uint y, uint d, int e);' -Name M -Namespace W; [W.M]::mouse_event(2,0,0,0,0); [W.M]::mouse_event(4,0,0,0,0)`
}

func windowsMoveScript(x, y int) string {
	return fmt.Sprintf(
		`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.Cursor]::Position = New-Object System.Drawing.Point(%d, %d)`,
		x, y,
	)
}

func windowsScrollScript(amount int) string {
	return fmt.Sprintf(
		`Add-Type -MemberDefinition '[DllImport("user32.dll")] public static extern void mouse_event(uint f, uint x, uint y, uint d, int e);' -Name M -Namespace W; [W.M]::mouse_event(0x0800,0,0,%s,0)`,
		strconv.Itoa(amount),
	)
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
