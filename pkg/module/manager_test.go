// pkg/module/manager_test.go
package module

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testModule is a scriptable module for orchestration tests: every lifecycle
// hook delegates to an optional closure.
type testModule struct {
	ModuleBase
	onConfigure func(kw Kwargs) error
	onLoad      func() error
	onInit      func() error
	onRun       func(m *testModule) (bool, error)
	onCallback  func(m *testModule, r *Result) error
	onValidate  func(r *Result)
}

func (m *testModule) Configure(kw Kwargs) error {
	if m.onConfigure != nil {
		return m.onConfigure(kw)
	}
	return nil
}

func (m *testModule) Load() error {
	if m.onLoad != nil {
		return m.onLoad()
	}
	return nil
}

func (m *testModule) Init() error {
	if m.onInit != nil {
		return m.onInit()
	}
	return nil
}

func (m *testModule) Run() (bool, error) {
	if m.onRun != nil {
		return m.onRun(m)
	}
	return true, nil
}

func (m *testModule) Callback(r *Result) error {
	if m.onCallback != nil {
		return m.onCallback(m, r)
	}
	return nil
}

func (m *testModule) Validate(r *Result) {
	if m.onValidate != nil {
		m.onValidate(r)
		return
	}
	r.Valid = true
}

// registerFactory adds a module type whose enabling flag matches its name.
func registerFactory(reg *Registry, name string, factory Factory, deps ...Dependency) {
	reg.Register(Descriptor{
		Name:  name,
		Title: name,
		CLI: []Option{{
			Long:        name,
			Kind:        KindNone,
			Kwargs:      map[string]any{"enabled": true},
			Description: "Enable " + name,
		}},
		Depends: deps,
	}, factory)
}

// registerTest is registerFactory for a pre-built instance.
func registerTest(reg *Registry, name string, inst Module, deps ...Dependency) {
	registerFactory(reg, name, func() Module { return inst }, deps...)
}

func newTestMgr(reg *Registry, opts ...ManagerOption) *Manager {
	all := append([]ManagerOption{WithRegistry(reg), WithDiagnostics(io.Discard)}, opts...)
	return NewManager(all...)
}

func TestManagerConstructsSharedDependencyOnce(t *testing.T) {
	reg := NewRegistry()
	alpha := &testModule{}
	built := 0

	// alpha registered last, so both dependents resolve it before its own
	// sweep turn.
	registerTest(reg, "beta", &testModule{}, Dependency{Attr: "alpha", Module: "alpha"})
	registerTest(reg, "gamma", &testModule{}, Dependency{Attr: "alpha", Module: "alpha"})
	registerFactory(reg, "alpha", func() Module { built++; return alpha })

	enabled, err := newTestMgr(reg).Execute("--beta", "--gamma")
	require.NoError(t, err)
	require.Len(t, enabled, 2)

	assert.Equal(t, 1, built)
	assert.True(t, alpha.Base().IsDependency())

	cached, ok := newTestMgr(reg).Instance("alpha")
	assert.False(t, ok, "a fresh manager starts with an empty instance cache")
	assert.Nil(t, cached)
}

func TestManagerDirectConstructionIsNotDependency(t *testing.T) {
	reg := NewRegistry()
	alpha := &testModule{}

	registerTest(reg, "alpha", alpha)
	registerTest(reg, "beta", &testModule{}, Dependency{Attr: "alpha", Module: "alpha"})

	_, err := newTestMgr(reg).Execute("--beta")
	require.NoError(t, err)

	assert.False(t, alpha.Base().IsDependency(), "sweep reached alpha before beta resolved it")
}

func TestManagerDependencyFailurePoisonsDependent(t *testing.T) {
	reg := NewRegistry()
	alpha := &testModule{onLoad: func() error { return errors.New("settings unreadable") }}
	betaBuilt := 0

	registerFactory(reg, "beta", func() Module { betaBuilt++; return &testModule{} },
		Dependency{Attr: "alpha", Module: "alpha"})
	registerTest(reg, "alpha", alpha)

	mgr := newTestMgr(reg)
	enabled, err := mgr.Execute("--beta")

	require.ErrorIs(t, err, ErrDependencyFailed)
	assert.Empty(t, enabled)
	assert.Zero(t, betaBuilt, "a module whose dependency failed is never constructed")

	// The failed dependency itself stays cached with its recorded error.
	inst, ok := mgr.Instance("alpha")
	require.True(t, ok)
	assert.Len(t, inst.Base().Errors(), 1)
}

func TestManagerDependencyCycle(t *testing.T) {
	reg := NewRegistry()
	registerFactory(reg, "ping", func() Module { return &testModule{} }, Dependency{Attr: "pong", Module: "pong"})
	registerFactory(reg, "pong", func() Module { return &testModule{} }, Dependency{Attr: "ping", Module: "ping"})

	_, err := newTestMgr(reg).Run("ping")
	require.ErrorIs(t, err, ErrDependencyCycle)
}

func TestManagerSelfDependencyElided(t *testing.T) {
	reg := NewRegistry()
	loner := &testModule{}
	registerTest(reg, "loner", loner, Dependency{Attr: "self", Module: "loner"})

	_, err := newTestMgr(reg).Run("loner")
	require.NoError(t, err)

	_, ok := loner.Base().Dependency("self")
	assert.False(t, ok)
}

func TestManagerUnregisteredDependencySkipped(t *testing.T) {
	reg := NewRegistry()
	hopeful := &testModule{}
	registerTest(reg, "hopeful", hopeful, Dependency{Attr: "ghost", Module: "ghost"})

	_, err := newTestMgr(reg).Run("hopeful")
	require.NoError(t, err)

	_, ok := hopeful.Base().Dependency("ghost")
	assert.False(t, ok)
}

func TestManagerSweepContinuesAfterModuleFailure(t *testing.T) {
	reg := NewRegistry()
	registerTest(reg, "good", &testModule{})
	reg.Register(Descriptor{
		Name:  "bad",
		Title: "bad",
		CLI: []Option{{
			Long:        "badnum",
			Kind:        KindInt,
			Kwargs:      map[string]any{"n": 0},
			Description: "A number",
		}},
	}, func() Module { return &testModule{} })

	enabled, err := newTestMgr(reg).Execute("--badnum=xyz", "--good")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid integer")
	require.Len(t, enabled, 1)
	assert.Equal(t, "good", enabled[0].Base().Name())
}

func TestManagerCancelledContextAbortsSweep(t *testing.T) {
	reg := NewRegistry()
	registerTest(reg, "alpha", &testModule{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enabled, err := newTestMgr(reg, WithContext(ctx)).Execute("--alpha")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, enabled)
}

func TestManagerMidRunCancellationStopsSweep(t *testing.T) {
	reg := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())

	alpha := &testModule{onRun: func(m *testModule) (bool, error) {
		cancel()
		return false, m.Context().Err()
	}}
	lateBuilt := 0

	registerTest(reg, "alpha", alpha)
	registerFactory(reg, "late", func() Module { lateBuilt++; return &testModule{} })

	mgr := newTestMgr(reg, WithContext(ctx))
	_, err := mgr.Execute("--alpha", "--late")

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, lateBuilt, "cancellation aborts the sweep before later modules load")

	// A cancelled module is not cached; the run is over.
	_, ok := mgr.Instance("alpha")
	assert.False(t, ok)
}

func TestManagerExecuteWithRestoresArguments(t *testing.T) {
	reg := NewRegistry()
	alpha := &testModule{}
	beta := &testModule{}
	registerTest(reg, "alpha", alpha)
	registerTest(reg, "beta", beta)

	mgr := newTestMgr(reg, WithArguments("--alpha"))
	enabled, err := mgr.ExecuteWith(map[string]any{"beta": true})
	require.NoError(t, err)

	require.Len(t, enabled, 1)
	assert.Equal(t, "beta", enabled[0].Base().Name())
	assert.False(t, alpha.Base().Enabled(), "kwargs replace the configured argument set")
	assert.Equal(t, []string{"--alpha"}, mgr.arguments, "the previous argument set is restored")
}

func TestManagerRunUnknownModule(t *testing.T) {
	_, err := newTestMgr(NewRegistry()).Run("ghost")
	require.ErrorIs(t, err, ErrModuleUnknown)
	assert.Contains(t, err.Error(), "ghost")
}

func TestManagerHelpRequestAbortsExecution(t *testing.T) {
	reg := NewRegistry()
	built := 0
	registerFactory(reg, "alpha", func() Module { built++; return &testModule{} })

	enabled, err := newTestMgr(reg).Execute("--alpha", "--help")
	require.ErrorIs(t, err, ErrHelpRequested)
	assert.Nil(t, enabled)
	assert.Zero(t, built)
}

func TestManagerSharesExternalStatus(t *testing.T) {
	reg := NewRegistry()
	st := &Status{}
	var seen *Status

	registerTest(reg, "alpha", &testModule{onRun: func(m *testModule) (bool, error) {
		seen = m.Base().Status()
		seen.Total = 42
		seen.Completed = 21
		return true, nil
	}})

	_, err := newTestMgr(reg, WithStatus(st)).Execute("--alpha")
	require.NoError(t, err)

	require.Same(t, st, seen)
	assert.Zero(t, st.Total, "counters are cleared after each module")
	assert.Zero(t, st.Completed)
}

// recordingBus captures the plugin lifecycle calls made for one module. The
// module name is resolved per call because the factory runs before binding.
type recordingBus struct {
	mod   Module
	calls *[]string
}

func (b *recordingBus) record(event string) {
	*b.calls = append(*b.calls, b.mod.Base().Name()+":"+event)
}

func (b *recordingBus) LoadPlugins()     { b.record("load") }
func (b *recordingBus) PreScan()         { b.record("pre") }
func (b *recordingBus) PostScan()        { b.record("post") }
func (b *recordingBus) OnResult(*Result) { b.record("result") }

func TestManagerPluginBusLifecycle(t *testing.T) {
	reg := NewRegistry()
	registerTest(reg, "quiet", &testModule{})
	registerTest(reg, "loud", &testModule{onRun: func(m *testModule) (bool, error) {
		return true, m.Report(&Result{Valid: true, Offset: 1, Description: "hit"})
	}})

	var calls []string
	factory := func(m Module) PluginBus {
		return &recordingBus{mod: m, calls: &calls}
	}

	_, err := newTestMgr(reg, WithPluginBus(factory)).Execute("--loud")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"quiet:load",
		"loud:load",
		"loud:pre",
		"loud:result",
		"loud:post",
	}, calls)
}
