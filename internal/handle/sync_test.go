// internal/handle/sync_test.go
package handle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/scalpel-dom/internal/driver"
)

func TestSynchronizeRetriesTransientUntilSuccess(t *testing.T) {
	b := &fakeBinding{failKind: driver.KindStaleReference, failRemaining: 3}
	h := newTestHandle(t, b, nil, Options{WaitTimeout: 2 * time.Second})

	require.NoError(t, h.Click(context.Background()))
	assert.Equal(t, 1, b.clicks)
	assert.Equal(t, 4, b.attempts, "three transient failures plus the success")
}

func TestSynchronizeDeadlineSurfacesLastTransient(t *testing.T) {
	b := &fakeBinding{failKind: driver.KindNotReady, failRemaining: -1}
	h := newTestHandle(t, b, nil, Options{
		WaitTimeout:  80 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})

	start := time.Now()
	err := h.Click(context.Background())
	elapsed := time.Since(start)

	var toErr *TimeoutError
	require.ErrorAs(t, err, &toErr)
	assert.Equal(t, driver.OpClick, toErr.Op)
	assert.Equal(t, driver.KindNotReady, driver.KindOf(toErr.Last))
	// errors.Unwrap reaches the final transient failure.
	assert.True(t, driver.IsTransient(errors.Unwrap(err)))
	assert.Less(t, elapsed, time.Second, "retrying must stop once the budget is spent")
	assert.Zero(t, b.clicks)
}

func TestSynchronizeDoesNotRetryNonTransient(t *testing.T) {
	b := &fakeBinding{failKind: driver.KindNotSupported, failRemaining: -1}
	h := newTestHandle(t, b, nil, Options{})

	err := h.Hover(context.Background())

	require.True(t, driver.IsNotSupported(err))
	assert.Equal(t, 1, b.attempts, "operation-level unavailability is not retried")
}

func TestSynchronizeReloadsReloadableHandle(t *testing.T) {
	stale := &fakeBinding{failKind: driver.KindStaleReference, failRemaining: -1}
	fresh := &fakeBinding{}
	scope := &fakeScope{next: fresh}
	h := newTestHandle(t, stale, scope, Options{Reloadable: true})

	require.NoError(t, h.Click(context.Background()))

	assert.Equal(t, 1, fresh.clicks, "retry must run against the re-resolved binding")
	assert.GreaterOrEqual(t, scope.calls, 1)
}

func TestSynchronizeSkipsRecoveryWhenNotReloadable(t *testing.T) {
	b := &fakeBinding{failKind: driver.KindStaleReference, failRemaining: 1}
	scope := &fakeScope{next: &fakeBinding{}}
	h := newTestHandle(t, b, scope, Options{Reloadable: false})

	require.NoError(t, h.Click(context.Background()))
	assert.Zero(t, scope.calls, "non-reloadable handles never swap identity")
	assert.Equal(t, 1, b.clicks)
}

func TestReloadNoopWhenNotReloadable(t *testing.T) {
	scope := &fakeScope{next: &fakeBinding{}}
	h := newTestHandle(t, &fakeBinding{}, scope, Options{})

	require.NoError(t, h.Reload(context.Background()))
	assert.Zero(t, scope.calls)
}

func TestReloadSwapsBinding(t *testing.T) {
	old := &fakeBinding{value: "old"}
	fresh := &fakeBinding{value: "new"}
	scope := &fakeScope{next: fresh}
	h := newTestHandle(t, old, scope, Options{Reloadable: true})

	require.NoError(t, h.Reload(context.Background()))

	v, err := h.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestReloadGoneTargetKeepsBindingAndNeverErrors(t *testing.T) {
	old := &fakeBinding{value: "kept"}
	scope := &fakeScope{err: driver.NewError(driver.KindNotFound, driver.OpFind, "#target", nil)}
	h := newTestHandle(t, old, scope, Options{Reloadable: true})
	ctx := context.Background()

	// Best-effort and idempotent: repeated reloads of a vanished target are
	// silent and leave the previous binding untouched.
	for range 3 {
		require.NoError(t, h.Reload(ctx))
	}
	assert.Equal(t, 3, scope.calls)

	v, err := h.Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kept", v)
}

func TestReloadSwallowsObsoleteLookup(t *testing.T) {
	scope := &fakeScope{err: driver.NewError(driver.KindObsolete, driver.OpFind, "#target", nil)}
	h := newTestHandle(t, &fakeBinding{}, scope, Options{Reloadable: true})

	require.NoError(t, h.Reload(context.Background()))
}

func TestReloadPropagatesUnexpectedErrors(t *testing.T) {
	boom := errors.New("malformed locator")
	scope := &fakeScope{err: boom}
	h := newTestHandle(t, &fakeBinding{}, scope, Options{Reloadable: true})

	err := h.Reload(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestInspectRendersTagAndPath(t *testing.T) {
	b := &fakeBinding{tag: "button", path: "/html/body/button[1]"}
	h := newTestHandle(t, b, nil, Options{})

	assert.Equal(t, "Element{tag=button path=/html/body/button[1]}", h.Inspect(context.Background()))
}

func TestInspectOmitsUnavailablePath(t *testing.T) {
	b := &fakeBinding{
		tag:     "div",
		pathErr: driver.NewError(driver.KindNotSupported, driver.OpPath, "", nil),
	}
	h := newTestHandle(t, b, nil, Options{})

	assert.Equal(t, "Element{tag=div}", h.Inspect(context.Background()))
}

func TestInspectObsoleteMarker(t *testing.T) {
	b := &fakeBinding{
		tagErr: driver.NewError(driver.KindObsolete, driver.OpTagName, "", nil),
	}
	h := newTestHandle(t, b, nil, Options{})

	out := h.Inspect(context.Background())
	assert.Contains(t, out, "obsolete")
	assert.NotContains(t, out, "tag=")
}

func TestSelectOptionWarnsOnDisabledTarget(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := &fakeBinding{disabled: true}
	h := newTestHandle(t, b, nil, Options{Logger: zap.New(core)})

	require.NoError(t, h.SelectOption(context.Background()), "the warning is advisory, not a failure")
	assert.Equal(t, 1, b.selectCalls)

	entries := logs.FilterMessage("selecting a disabled option").All()
	require.Len(t, entries, 1)
}

func TestSelectOptionWarnsOnAlreadySelectedTarget(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := &fakeBinding{selected: true}
	h := newTestHandle(t, b, nil, Options{Logger: zap.New(core)})

	require.NoError(t, h.SelectOption(context.Background()))
	assert.Equal(t, 1, b.selectCalls)

	entries := logs.FilterMessage("option is already selected").All()
	require.Len(t, entries, 1)
}

func TestSelectOptionQuietOnHealthyTarget(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := &fakeBinding{}
	h := newTestHandle(t, b, nil, Options{Logger: zap.New(core)})

	require.NoError(t, h.SelectOption(context.Background()))
	assert.Zero(t, logs.Len())
}
