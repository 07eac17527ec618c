package router

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarunerror/openNova/pkg/actions"
)

func testPlan() actions.Plan {
	return actions.Plan{{Kind: actions.KindShell, Value: "rm -rf /tmp/cache"}}
}

func TestGateStartsIdle(t *testing.T) {
	g := NewConfirmationGate(3, nil)
	assert.Equal(t, StateIdle, g.State())
	assert.False(t, g.Awaiting())
	assert.Equal(t, 0, g.Remaining())
}

func TestGateRequiresAllConfirmations(t *testing.T) {
	g := NewConfirmationGate(3, nil)
	require.NoError(t, g.Open(testPlan()))
	require.True(t, g.Awaiting())
	assert.Equal(t, 3, g.Remaining())

	v, plan := g.Offer("confirm")
	assert.Equal(t, VerdictPending, v)
	assert.Nil(t, plan)
	assert.Equal(t, 2, g.Remaining())

	v, plan = g.Offer("yes")
	assert.Equal(t, VerdictPending, v)
	assert.Nil(t, plan)

	v, plan = g.Offer("proceed")
	assert.Equal(t, VerdictApproved, v)
	assert.Equal(t, testPlan(), plan)
	assert.Equal(t, StateIdle, g.State())
}

func TestGateCancelDiscardsPlan(t *testing.T) {
	g := NewConfirmationGate(3, nil)
	require.NoError(t, g.Open(testPlan()))

	_, _ = g.Offer("confirm")
	v, plan := g.Offer("cancel")
	assert.Equal(t, VerdictCancelled, v)
	assert.Nil(t, plan)
	assert.Equal(t, StateIdle, g.State())
}

func TestGateUnrecognizedInputKeepsCount(t *testing.T) {
	g := NewConfirmationGate(2, nil)
	require.NoError(t, g.Open(testPlan()))

	_, _ = g.Offer("confirm")
	v, _ := g.Offer("banana")
	assert.Equal(t, VerdictUnrecognized, v)
	assert.True(t, g.Awaiting())
	assert.Equal(t, 1, g.Remaining(), "unrecognized input neither counts nor resets")
}

func TestGateReplacementRestartsCount(t *testing.T) {
	g := NewConfirmationGate(3, nil)
	require.NoError(t, g.Open(testPlan()))
	_, _ = g.Offer("confirm")
	require.Equal(t, 2, g.Remaining())

	other := actions.Plan{{Kind: actions.KindShell, Value: "del C:\\old"}}
	require.NoError(t, g.Open(other))
	assert.Equal(t, 3, g.Remaining())

	_, _ = g.Offer("confirm")
	_, _ = g.Offer("confirm")
	v, plan := g.Offer("confirm")
	assert.Equal(t, VerdictApproved, v)
	assert.Equal(t, other, plan, "approval releases the newest plan")
}

func TestGateTokensAreCaseInsensitive(t *testing.T) {
	g := NewConfirmationGate(1, nil)
	require.NoError(t, g.Open(testPlan()))

	v, plan := g.Offer("  CONFIRM  ")
	assert.Equal(t, VerdictApproved, v)
	assert.NotNil(t, plan)
}

func TestGateRejectsEmptyPlan(t *testing.T) {
	g := NewConfirmationGate(3, nil)
	assert.Error(t, g.Open(nil))
	assert.Equal(t, StateIdle, g.State())
}

func TestGateOfferWhileIdle(t *testing.T) {
	g := NewConfirmationGate(3, nil)
	v, plan := g.Offer("confirm")
	assert.Equal(t, VerdictUnrecognized, v)
	assert.Nil(t, plan)
}

func TestGateConcurrentOffersApproveOnce(t *testing.T) {
	g := NewConfirmationGate(3, nil)
	require.NoError(t, g.Open(testPlan()))

	const workers = 32
	var (
		approvals atomic.Int32
		released  atomic.Int32
		wg        sync.WaitGroup
		start     = make(chan struct{})
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			v, plan := g.Offer("confirm")
			if v == VerdictApproved {
				approvals.Add(1)
			}
			if plan != nil {
				released.Add(1)
			}
			_ = g.Remaining()
			_ = g.State()
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), approvals.Load(), "one session yields exactly one approval")
	assert.Equal(t, int32(1), released.Load(), "the plan is released exactly once")
	assert.Equal(t, StateIdle, g.State())
	assert.Equal(t, 0, g.Remaining())
}

func TestGateMinimumOneConfirmation(t *testing.T) {
	g := NewConfirmationGate(0, nil)
	require.NoError(t, g.Open(testPlan()))
	assert.Equal(t, 1, g.Remaining())

	v, _ := g.Offer("yes")
	assert.Equal(t, VerdictApproved, v)
}
