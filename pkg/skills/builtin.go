package skills

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/tarunerror/openNova/pkg/memory"
	"github.com/tarunerror/openNova/pkg/scheduler"
)

// BuiltinDeps carries the services the builtin skills need. Nil fields
// disable the skills that depend on them.
type BuiltinDeps struct {
	Memory    *memory.Store
	Scheduler *scheduler.Scheduler

	// Notify delivers an asynchronous message to the user (reminders firing
	// later). Defaults to stdout when nil.
	Notify func(message string)
}

// RegisterBuiltins registers every builtin skill the manifest allows and the
// dependencies support.
func RegisterBuiltins(reg *Registry, manifest Manifest, deps BuiltinDeps) {
	if deps.Notify == nil {
		deps.Notify = func(message string) { fmt.Println(message) }
	}

	candidates := []Skill{
		&timeSkill{},
		&sysinfoSkill{},
	}
	if deps.Memory != nil {
		candidates = append(candidates, &rememberSkill{store: deps.Memory}, &recallSkill{store: deps.Memory})
	}
	if deps.Scheduler != nil {
		candidates = append(candidates, &remindSkill{sched: deps.Scheduler, notify: deps.Notify})
	}

	for _, s := range candidates {
		if manifest.Allows(s.Name()) {
			reg.Register(s)
		}
	}
}

// timeSkill answers questions about the current time and date.
type timeSkill struct{}

func (timeSkill) Name() string        { return "time" }
func (timeSkill) Description() string { return "Tells the current time and date." }

func (timeSkill) CanHandle(command string) bool {
	c := strings.ToLower(command)
	return strings.Contains(c, "what time") ||
		strings.Contains(c, "current time") ||
		strings.Contains(c, "what's the date") ||
		strings.Contains(c, "what is the date") ||
		strings.Contains(c, "today's date")
}

func (timeSkill) Execute(_ context.Context, command string) Result {
	now := time.Now()
	response := now.Format("It is 3:04 PM on Monday, January 2, 2006.")
	if strings.Contains(strings.ToLower(command), "date") {
		response = now.Format("Today is Monday, January 2, 2006.")
	}
	return Result{
		Succeeded: true,
		Response:  response,
		Data:      map[string]any{"time": now.Format(time.RFC3339)},
	}
}

// sysinfoSkill reports basic host information.
type sysinfoSkill struct{}

func (sysinfoSkill) Name() string        { return "sysinfo" }
func (sysinfoSkill) Description() string { return "Reports host OS, architecture, and CPU count." }

func (sysinfoSkill) CanHandle(command string) bool {
	c := strings.ToLower(command)
	return strings.Contains(c, "system info") ||
		strings.Contains(c, "what os") ||
		strings.Contains(c, "which os") ||
		strings.Contains(c, "what operating system")
}

func (sysinfoSkill) Execute(_ context.Context, _ string) Result {
	host, _ := os.Hostname()
	return Result{
		Succeeded: true,
		Response: fmt.Sprintf("Running on %s/%s (%d CPUs), host %s.",
			runtime.GOOS, runtime.GOARCH, runtime.NumCPU(), host),
		Data: map[string]any{
			"os":   runtime.GOOS,
			"arch": runtime.GOARCH,
			"cpus": runtime.NumCPU(),
			"host": host,
		},
	}
}

// rememberSkill stores a fact in persistent memory.
// Usage: "remember the wifi password is hunter2".
type rememberSkill struct {
	store *memory.Store
}

func (rememberSkill) Name() string        { return "remember" }
func (rememberSkill) Description() string { return "Stores a fact in persistent memory." }

func (rememberSkill) CanHandle(command string) bool {
	c := strings.ToLower(strings.TrimSpace(command))
	return strings.HasPrefix(c, "remember ") || strings.HasPrefix(c, "remember that ")
}

func (s *rememberSkill) Execute(ctx context.Context, command string) Result {
	fact := strings.TrimSpace(command)
	for _, prefix := range []string{"remember that ", "remember "} {
		if len(fact) >= len(prefix) && strings.EqualFold(fact[:len(prefix)], prefix) {
			fact = strings.TrimSpace(fact[len(prefix):])
			break
		}
	}
	if fact == "" {
		return Result{Succeeded: false, Response: "Tell me what to remember."}
	}

	if err := s.store.Remember(ctx, fact); err != nil {
		return Result{Succeeded: false, Response: "I could not save that: " + err.Error()}
	}
	return Result{Succeeded: true, Response: "Got it, I'll remember that."}
}

// recallSkill searches persistent memory.
// Usage: "what do you remember about wifi", "recall wifi".
type recallSkill struct {
	store *memory.Store
}

func (recallSkill) Name() string        { return "recall" }
func (recallSkill) Description() string { return "Searches persistent memory for a topic." }

func (recallSkill) CanHandle(command string) bool {
	c := strings.ToLower(strings.TrimSpace(command))
	return strings.HasPrefix(c, "recall ") ||
		strings.Contains(c, "what do you remember")
}

func (s *recallSkill) Execute(ctx context.Context, command string) Result {
	query := recallQuery(command)

	notes, err := s.store.Recall(ctx, query, 5)
	if err != nil {
		return Result{Succeeded: false, Response: "Memory lookup failed: " + err.Error()}
	}
	if len(notes) == 0 {
		return Result{Succeeded: true, Response: "I don't remember anything about that."}
	}

	var b strings.Builder
	b.WriteString("Here's what I remember:")
	for _, n := range notes {
		b.WriteString("\n- ")
		b.WriteString(n.Content)
	}
	return Result{
		Succeeded: true,
		Response:  b.String(),
		Data:      map[string]any{"matches": len(notes)},
	}
}

// recallQuery strips the skill's trigger phrasing down to the search terms.
func recallQuery(command string) string {
	c := strings.TrimSpace(command)
	lower := strings.ToLower(c)

	if i := strings.Index(lower, "what do you remember"); i >= 0 {
		rest := c[i+len("what do you remember"):]
		rest = strings.TrimSpace(rest)
		rest = strings.TrimPrefix(rest, "about ")
		return strings.TrimSuffix(strings.TrimSpace(rest), "?")
	}
	if strings.HasPrefix(lower, "recall ") {
		return strings.TrimSpace(c[len("recall "):])
	}
	return c
}

var (
	remindInPattern = regexp.MustCompile(`(?i)^remind me in (\d+) (second|seconds|minute|minutes|hour|hours)(?: to (.+))?$`)
	remindAtPattern = regexp.MustCompile(`(?i)^remind me at (\d{1,2}):(\d{2})\s*(am|pm)?(?: to (.+))?$`)
)

// remindSkill schedules, lists, and cancels one-shot reminders.
// Usage: "remind me in 10 minutes to stretch", "remind me at 15:30 to leave",
// "list reminders", "cancel my reminders".
type remindSkill struct {
	sched  *scheduler.Scheduler
	notify func(string)

	// now is the clock; overridable so wall-clock parsing stays testable.
	now func() time.Time
}

func (remindSkill) Name() string        { return "remind" }
func (remindSkill) Description() string { return "Schedules, lists, and cancels reminders." }

func (remindSkill) CanHandle(command string) bool {
	c := strings.ToLower(strings.TrimSpace(command))
	return strings.HasPrefix(c, "remind me") ||
		strings.HasPrefix(c, "cancel my reminders") ||
		strings.HasPrefix(c, "cancel reminders") ||
		strings.HasPrefix(c, "list reminders") ||
		strings.HasPrefix(c, "show reminders")
}

func (s *remindSkill) Execute(_ context.Context, command string) Result {
	c := strings.TrimSpace(command)
	lower := strings.ToLower(c)

	switch {
	case strings.HasPrefix(lower, "list reminders"), strings.HasPrefix(lower, "show reminders"):
		return s.listReminders()
	case strings.HasPrefix(lower, "cancel my reminders"), strings.HasPrefix(lower, "cancel reminders"):
		return s.cancelReminders()
	}

	if m := remindInPattern.FindStringSubmatch(c); m != nil {
		return s.remindIn(m)
	}
	if m := remindAtPattern.FindStringSubmatch(c); m != nil {
		return s.remindAt(m)
	}
	return Result{
		Succeeded: false,
		Response:  `Say it like: "remind me in 10 minutes to stretch" or "remind me at 15:30 to leave".`,
	}
}

func (s *remindSkill) remindIn(m []string) Result {
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return Result{Succeeded: false, Response: "I need a positive number for the delay."}
	}

	var unit time.Duration
	switch {
	case strings.HasPrefix(m[2], "second"):
		unit = time.Second
	case strings.HasPrefix(m[2], "minute"):
		unit = time.Minute
	default:
		unit = time.Hour
	}
	delay := time.Duration(n) * unit
	message := reminderMessage(m[3])

	notify := s.notify
	job, err := s.sched.RunAfter(delay, message, func() {
		notify("Reminder: " + message)
	})
	if err != nil {
		return Result{Succeeded: false, Response: "I could not schedule that: " + err.Error()}
	}

	return Result{
		Succeeded: true,
		Response:  fmt.Sprintf("Okay, I'll remind you in %s.", delay),
		Data:      map[string]any{"job_id": job.ID, "fires_at": job.At.Format(time.RFC3339)},
	}
}

func (s *remindSkill) remindAt(m []string) Result {
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return Result{Succeeded: false, Response: "That is not a time of day I understand."}
	}

	now := s.clock()
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	// A time already past today means tomorrow.
	if !at.After(now) {
		at = at.Add(24 * time.Hour)
	}
	message := reminderMessage(m[4])

	notify := s.notify
	job, err := s.sched.RunAt(at, message, func() {
		notify("Reminder: " + message)
	})
	if err != nil {
		return Result{Succeeded: false, Response: "I could not schedule that: " + err.Error()}
	}

	return Result{
		Succeeded: true,
		Response:  fmt.Sprintf("Okay, I'll remind you at %s.", at.Format("3:04 PM")),
		Data:      map[string]any{"job_id": job.ID, "fires_at": job.At.Format(time.RFC3339)},
	}
}

func (s *remindSkill) listReminders() Result {
	jobs := s.sched.Pending()
	if len(jobs) == 0 {
		return Result{Succeeded: true, Response: "No reminders are pending."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d reminder(s) pending:", len(jobs))
	for _, j := range jobs {
		fmt.Fprintf(&b, "\n- %s at %s", j.Label, j.At.Format("3:04 PM"))
	}
	return Result{
		Succeeded: true,
		Response:  b.String(),
		Data:      map[string]any{"pending": len(jobs)},
	}
}

func (s *remindSkill) cancelReminders() Result {
	jobs := s.sched.Pending()
	cancelled := 0
	for _, j := range jobs {
		if s.sched.Cancel(j.ID) {
			cancelled++
		}
	}
	if cancelled == 0 {
		return Result{Succeeded: true, Response: "There was nothing to cancel."}
	}
	return Result{
		Succeeded: true,
		Response:  fmt.Sprintf("Cancelled %d reminder(s).", cancelled),
		Data:      map[string]any{"cancelled": cancelled},
	}
}

func (s *remindSkill) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func reminderMessage(captured string) string {
	if msg := strings.TrimSpace(captured); msg != "" {
		return msg
	}
	return "You asked me to remind you."
}
