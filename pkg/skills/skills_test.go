package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarunerror/openNova/pkg/memory"
	"github.com/tarunerror/openNova/pkg/scheduler"
)

// echoSkill handles any command starting with its trigger.
type echoSkill struct {
	name    string
	trigger string
}

func (e *echoSkill) Name() string        { return e.name }
func (e *echoSkill) Description() string { return "test skill" }

func (e *echoSkill) CanHandle(command string) bool {
	return strings.HasPrefix(command, e.trigger)
}
func (e *echoSkill) Execute(_ context.Context, command string) Result {
	return Result{Succeeded: true, Response: e.name + ": " + command}
}

func TestRegistryFirstMatchWins(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(&echoSkill{name: "first", trigger: "hello"})
	reg.Register(&echoSkill{name: "second", trigger: "hello"})

	res := reg.Dispatch(context.Background(), "hello there")
	require.True(t, res.Handled)
	assert.Equal(t, "first: hello there", res.Response)
}

func TestRegistryNoMatch(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(&echoSkill{name: "first", trigger: "hello"})

	res := reg.Dispatch(context.Background(), "goodbye")
	assert.False(t, res.Handled)
}

func TestManifestAllowsByDefault(t *testing.T) {
	var m Manifest
	assert.True(t, m.Allows("anything"))

	m = Manifest{Skills: []ManifestEntry{
		{Name: "time", Enabled: false},
		{Name: "sysinfo", Enabled: true},
	}}
	assert.False(t, m.Allows("time"))
	assert.True(t, m.Allows("sysinfo"))
	assert.True(t, m.Allows("unlisted"))
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	content := "skills:\n  - name: time\n    enabled: false\n  - name: remind\n    enabled: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.False(t, m.Allows("time"))
	assert.True(t, m.Allows("remind"))
}

func TestLoadManifestMissingFile(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.True(t, m.Allows("time"))
}

func TestRegisterBuiltinsHonorsManifest(t *testing.T) {
	reg := NewRegistry(nil)
	manifest := Manifest{Skills: []ManifestEntry{{Name: "sysinfo", Enabled: false}}}
	RegisterBuiltins(reg, manifest, BuiltinDeps{})

	names := make([]string, 0)
	for _, s := range reg.Skills() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "time")
	assert.NotContains(t, names, "sysinfo")
	assert.NotContains(t, names, "remember", "memory-backed skills need a store")
}

func TestTimeSkill(t *testing.T) {
	var s timeSkill
	assert.True(t, s.CanHandle("What time is it?"))
	assert.True(t, s.CanHandle("tell me today's date"))
	assert.False(t, s.CanHandle("open chrome"))

	res := s.Execute(context.Background(), "what time is it")
	assert.True(t, res.Succeeded)
	assert.NotEmpty(t, res.Response)
}

func TestSysinfoSkill(t *testing.T) {
	var s sysinfoSkill
	assert.True(t, s.CanHandle("show me system info"))

	res := s.Execute(context.Background(), "system info")
	assert.True(t, res.Succeeded)
	assert.NotNil(t, res.Data["os"])
}

func TestRememberAndRecallSkills(t *testing.T) {
	store, err := memory.Open(filepath.Join(t.TempDir(), "mem.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	reg := NewRegistry(nil)
	RegisterBuiltins(reg, Manifest{}, BuiltinDeps{Memory: store})

	ctx := context.Background()
	res := reg.Dispatch(ctx, "remember that the meeting room code is 4921")
	require.True(t, res.Handled)
	require.True(t, res.Succeeded)

	res = reg.Dispatch(ctx, "what do you remember about meeting room?")
	require.True(t, res.Handled)
	require.True(t, res.Succeeded)
	assert.Contains(t, res.Response, "4921")
}

func TestRemindSkill(t *testing.T) {
	sched := scheduler.New(nil)
	defer sched.Stop()

	notified := make(chan string, 1)
	reg := NewRegistry(nil)
	RegisterBuiltins(reg, Manifest{}, BuiltinDeps{
		Scheduler: sched,
		Notify:    func(msg string) { notified <- msg },
	})

	res := reg.Dispatch(context.Background(), "remind me in 1 seconds to stretch")
	require.True(t, res.Handled)
	require.True(t, res.Succeeded)

	select {
	case msg := <-notified:
		assert.Contains(t, msg, "stretch")
	case <-time.After(3 * time.Second):
		t.Fatal("reminder never fired")
	}
}

func TestRemindSkillAtTimeOfDay(t *testing.T) {
	sched := scheduler.New(nil)
	defer sched.Stop()

	base := time.Date(2026, time.August, 29, 14, 0, 0, 0, time.Local)
	s := &remindSkill{sched: sched, notify: func(string) {}, now: func() time.Time { return base }}

	res := s.Execute(context.Background(), "remind me at 15:30 to leave for the station")
	require.True(t, res.Succeeded)
	assert.Contains(t, res.Response, "3:30 PM")

	jobs := sched.Pending()
	require.Len(t, jobs, 1)
	assert.Equal(t, base.Add(90*time.Minute), jobs[0].At)

	// A time already past rolls over to tomorrow.
	res = s.Execute(context.Background(), "remind me at 9:00am to stand up")
	require.True(t, res.Succeeded)
	require.Len(t, sched.Pending(), 2)
	for _, j := range sched.Pending() {
		assert.True(t, j.At.After(base))
	}
}

func TestRemindSkillListAndCancel(t *testing.T) {
	sched := scheduler.New(nil)
	defer sched.Stop()

	s := &remindSkill{sched: sched, notify: func(string) {}}
	ctx := context.Background()

	res := s.Execute(ctx, "remind me in 5 minutes to stretch")
	require.True(t, res.Succeeded)

	res = s.Execute(ctx, "list reminders")
	require.True(t, res.Succeeded)
	assert.Contains(t, res.Response, "stretch")

	res = s.Execute(ctx, "cancel my reminders")
	require.True(t, res.Succeeded)
	assert.Contains(t, res.Response, "Cancelled 1")
	assert.Empty(t, sched.Pending())

	res = s.Execute(ctx, "cancel my reminders")
	require.True(t, res.Succeeded)
	assert.Contains(t, res.Response, "nothing to cancel")
}

func TestRemindSkillRejectsUnparseable(t *testing.T) {
	sched := scheduler.New(nil)
	defer sched.Stop()

	s := &remindSkill{sched: sched, notify: func(string) {}}
	res := s.Execute(context.Background(), "remind me eventually")
	assert.False(t, res.Succeeded)
	assert.Contains(t, res.Response, "remind me in")
}
