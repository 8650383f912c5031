// internal/handle/handle_test.go
package handle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/scalpel-dom/api/schemas"
	"github.com/xkilldash9x/scalpel-dom/internal/driver"
)

// fakeBinding is an in-memory driver.Binding that counts every invocation,
// so tests can assert which dispatch path ran and how often.
type fakeBinding struct {
	caps     driver.Capabilities
	capCalls int

	tag      string
	path     string
	tagErr   error
	pathErr  error
	attrs    map[string]string
	value    string
	visible  bool
	checked  bool
	disabled bool
	readOnly bool
	selected bool
	multiple bool

	// failKind, while failRemaining != 0, makes every gated operation
	// return a tagged driver error. failRemaining < 0 means fail forever.
	failKind      driver.Kind
	failRemaining int

	attempts       int
	clicks         int
	clickWithCalls int
	lastClickOpts  schemas.ClickOptions
	rightClicks    int
	doubleClicks   int
	setCalls       int
	setWithCalls   int
	hoverCalls     int
	triggers       []string
	keys           []string
	selectCalls    int
	unselectCalls  int
}

func (f *fakeBinding) gate(op driver.Op) error {
	f.attempts++
	if f.failRemaining == 0 {
		return nil
	}
	if f.failRemaining > 0 {
		f.failRemaining--
	}
	return driver.NewError(f.failKind, op, "fake", nil)
}

func (f *fakeBinding) Capabilities() driver.Capabilities {
	f.capCalls++
	return f.caps
}

func (f *fakeBinding) TagName(context.Context) (string, error) {
	if f.tagErr != nil {
		return "", f.tagErr
	}
	return f.tag, nil
}

func (f *fakeBinding) Attribute(_ context.Context, name string) (string, bool, error) {
	if err := f.gate(driver.OpAttribute); err != nil {
		return "", false, err
	}
	v, ok := f.attrs[name]
	return v, ok, nil
}

func (f *fakeBinding) AllText(context.Context) (string, error) {
	if err := f.gate(driver.OpText); err != nil {
		return "", err
	}
	return f.attrs["text"], nil
}

func (f *fakeBinding) VisibleText(context.Context) (string, error) {
	if err := f.gate(driver.OpText); err != nil {
		return "", err
	}
	return f.attrs["visible_text"], nil
}

func (f *fakeBinding) Value(context.Context) (any, error) {
	if err := f.gate(driver.OpValue); err != nil {
		return nil, err
	}
	return f.value, nil
}

func (f *fakeBinding) Path(context.Context) (string, error) {
	if f.pathErr != nil {
		return "", f.pathErr
	}
	return f.path, nil
}

func (f *fakeBinding) Visible(context.Context) (bool, error)  { return f.visible, nil }
func (f *fakeBinding) Checked(context.Context) (bool, error)  { return f.checked, nil }
func (f *fakeBinding) Disabled(context.Context) (bool, error) { return f.disabled, nil }
func (f *fakeBinding) ReadOnly(context.Context) (bool, error) { return f.readOnly, nil }
func (f *fakeBinding) Selected(context.Context) (bool, error) { return f.selected, nil }
func (f *fakeBinding) Multiple(context.Context) (bool, error) { return f.multiple, nil }

func (f *fakeBinding) SetValue(_ context.Context, value any) error {
	if err := f.gate(driver.OpSet); err != nil {
		return err
	}
	f.setCalls++
	if s, ok := value.(string); ok {
		f.value = s
	}
	return nil
}

func (f *fakeBinding) SetValueWith(_ context.Context, value any, _ schemas.SetOptions) error {
	if err := f.gate(driver.OpSet); err != nil {
		return err
	}
	f.setWithCalls++
	if s, ok := value.(string); ok {
		f.value = s
	}
	return nil
}

func (f *fakeBinding) Click(context.Context) error {
	if err := f.gate(driver.OpClick); err != nil {
		return err
	}
	f.clicks++
	return nil
}

func (f *fakeBinding) RightClick(context.Context) error {
	if err := f.gate(driver.OpRightClick); err != nil {
		return err
	}
	f.rightClicks++
	return nil
}

func (f *fakeBinding) DoubleClick(context.Context) error {
	if err := f.gate(driver.OpDoubleClick); err != nil {
		return err
	}
	f.doubleClicks++
	return nil
}

func (f *fakeBinding) ClickWith(_ context.Context, opts schemas.ClickOptions) error {
	if err := f.gate(driver.OpClick); err != nil {
		return err
	}
	f.clickWithCalls++
	f.lastClickOpts = opts
	return nil
}

func (f *fakeBinding) RightClickWith(_ context.Context, opts schemas.ClickOptions) error {
	if err := f.gate(driver.OpRightClick); err != nil {
		return err
	}
	f.clickWithCalls++
	f.lastClickOpts = opts
	return nil
}

func (f *fakeBinding) DoubleClickWith(_ context.Context, opts schemas.ClickOptions) error {
	if err := f.gate(driver.OpDoubleClick); err != nil {
		return err
	}
	f.clickWithCalls++
	f.lastClickOpts = opts
	return nil
}

func (f *fakeBinding) Hover(context.Context) error {
	if err := f.gate(driver.OpHover); err != nil {
		return err
	}
	f.hoverCalls++
	return nil
}

func (f *fakeBinding) Trigger(_ context.Context, event string) error {
	if err := f.gate(driver.OpTrigger); err != nil {
		return err
	}
	f.triggers = append(f.triggers, event)
	return nil
}

func (f *fakeBinding) SendKeys(_ context.Context, keys string) error {
	if err := f.gate(driver.OpSendKeys); err != nil {
		return err
	}
	f.keys = append(f.keys, keys)
	return nil
}

func (f *fakeBinding) DragTo(_ context.Context, _ driver.Binding) error {
	return f.gate(driver.OpDragTo)
}

func (f *fakeBinding) SelectOption(context.Context) error {
	if err := f.gate(driver.OpSelect); err != nil {
		return err
	}
	f.selectCalls++
	return nil
}

func (f *fakeBinding) UnselectOption(context.Context) error {
	if err := f.gate(driver.OpUnselect); err != nil {
		return err
	}
	f.unselectCalls++
	return nil
}

// fakeScope hands out a predetermined binding (or error) on re-resolution.
type fakeScope struct {
	next  driver.Binding
	err   error
	calls int
}

func (s *fakeScope) ReloadAndFind(context.Context, schemas.Locator) (driver.Binding, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.next, nil
}

var testLocator = schemas.Locator{Kind: schemas.SelectorCSS, Value: "#target"}

func newTestHandle(t *testing.T, b driver.Binding, scope driver.Scope, opts Options) *Handle {
	t.Helper()
	if opts.WaitTimeout == 0 {
		opts.WaitTimeout = 200 * time.Millisecond
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = 5 * time.Millisecond
	}
	h, err := New(b, scope, testLocator, opts)
	require.NoError(t, err)
	return h
}

func TestNewRejectsNilBinding(t *testing.T) {
	_, err := New(nil, nil, testLocator, Options{})
	require.Error(t, err)
}

func TestNewReloadableRequiresScope(t *testing.T) {
	_, err := New(&fakeBinding{}, nil, testLocator, Options{Reloadable: true})
	require.Error(t, err)
}

func TestClickMinimalNeverProbesCapabilities(t *testing.T) {
	b := &fakeBinding{}
	h := newTestHandle(t, b, nil, Options{})

	require.NoError(t, h.Click(context.Background()))

	assert.Equal(t, 1, b.clicks, "minimal click path should be used exactly once")
	assert.Zero(t, b.clickWithCalls)
	assert.Zero(t, b.capCalls, "no-argument click must not consult capabilities")
}

func TestClickExtendedUnsupportedFailsFast(t *testing.T) {
	b := &fakeBinding{caps: driver.Capabilities{ExtendedClick: false}}
	h := newTestHandle(t, b, nil, Options{})

	err := h.Click(context.Background(), WithModifiers(schemas.ModShift), WithOffset(5, 5))

	var capErr *CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, driver.OpClick, capErr.Op)
	assert.Zero(t, b.clicks, "binding must record zero click invocations")
	assert.Zero(t, b.clickWithCalls)
}

func TestClickExtendedSupportedDispatchesOnce(t *testing.T) {
	b := &fakeBinding{caps: driver.Capabilities{ExtendedClick: true}}
	h := newTestHandle(t, b, nil, Options{})

	require.NoError(t, h.Click(context.Background(), WithModifiers(schemas.ModCtrl, schemas.ModShift), WithOffset(3, 7)))

	assert.Equal(t, 1, b.clickWithCalls)
	assert.Zero(t, b.clicks)
	assert.Equal(t, schemas.ModCtrl|schemas.ModShift, b.lastClickOpts.Modifiers)
	require.NotNil(t, b.lastClickOpts.Offset)
	assert.Equal(t, 3.0, b.lastClickOpts.Offset.X)
	assert.Equal(t, 7.0, b.lastClickOpts.Offset.Y)
}

func TestRightAndDoubleClickCapabilityBranch(t *testing.T) {
	b := &fakeBinding{}
	h := newTestHandle(t, b, nil, Options{})
	ctx := context.Background()

	require.NoError(t, h.RightClick(ctx))
	require.NoError(t, h.DoubleClick(ctx))
	assert.Equal(t, 1, b.rightClicks)
	assert.Equal(t, 1, b.doubleClicks)

	var capErr *CapabilityError
	require.ErrorAs(t, h.RightClick(ctx, WithOffset(1, 1)), &capErr)
	require.ErrorAs(t, h.DoubleClick(ctx, WithModifiers(schemas.ModAlt)), &capErr)
	assert.Zero(t, b.clickWithCalls)
}

func TestSetReadOnlyRefusedBeforeDispatch(t *testing.T) {
	b := &fakeBinding{readOnly: true}
	h := newTestHandle(t, b, nil, Options{})

	err := h.Set(context.Background(), "abc")

	var roErr *ReadOnlyError
	require.ErrorAs(t, err, &roErr)
	assert.Zero(t, b.setCalls, "set must not reach the driver on a read-only target")
	assert.Zero(t, b.setWithCalls)
}

func TestSetThenValueRoundTrip(t *testing.T) {
	b := &fakeBinding{}
	h := newTestHandle(t, b, nil, Options{})
	ctx := context.Background()

	require.NoError(t, h.Set(ctx, "abc"))

	v, err := h.Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
	assert.Equal(t, 1, b.setCalls)
}

func TestSetExtendedRequiresCapability(t *testing.T) {
	b := &fakeBinding{}
	h := newTestHandle(t, b, nil, Options{})

	var capErr *CapabilityError
	require.ErrorAs(t, h.Set(context.Background(), "x", WithRapidFill()), &capErr)
	assert.Zero(t, b.setWithCalls)

	b2 := &fakeBinding{caps: driver.Capabilities{ExtendedSet: true}}
	h2 := newTestHandle(t, b2, nil, Options{})
	require.NoError(t, h2.Set(context.Background(), "x", WithRapidFill()))
	assert.Equal(t, 1, b2.setWithCalls)
	assert.Zero(t, b2.setCalls)
}

func TestSimpleActionsDelegate(t *testing.T) {
	b := &fakeBinding{attrs: map[string]string{"text": "hello", "name": "q"}}
	h := newTestHandle(t, b, nil, Options{})
	ctx := context.Background()

	txt, err := h.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", txt)

	v, ok, err := h.Attribute(ctx, "name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "q", v)

	_, ok, err = h.Attribute(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, h.Hover(ctx))
	require.NoError(t, h.Trigger(ctx, "focus"))
	require.NoError(t, h.SendKeys(ctx, "abc"))
	assert.Equal(t, 1, b.hoverCalls)
	assert.Equal(t, []string{"focus"}, b.triggers)
	assert.Equal(t, []string{"abc"}, b.keys)
}

func TestVisibleTextPolicy(t *testing.T) {
	b := &fakeBinding{attrs: map[string]string{"text": "all", "visible_text": "shown"}}
	h := newTestHandle(t, b, nil, Options{VisibleTextOnly: true})

	txt, err := h.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "shown", txt)
}

func TestUnexpectedErrorPropagatesWithoutRetry(t *testing.T) {
	boom := errors.New("boom")
	b := &fakeBinding{tagErr: boom}
	h := newTestHandle(t, b, nil, Options{})

	_, err := h.TagName(context.Background())
	require.ErrorIs(t, err, boom)
}
