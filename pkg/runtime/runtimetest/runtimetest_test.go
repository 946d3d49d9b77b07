package runtimetest_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/corvidae/fluxui/pkg/runtime"
	"github.com/corvidae/fluxui/pkg/runtime/runtimetest"
	"github.com/corvidae/fluxui/pkg/state"
)

func TestHarnessTicksAndRendersRegisteredRoot(t *testing.T) {
	rt := runtime.New(runtime.WithMetricsRegisterer(prometheus.NewRegistry()))
	rt.Component("root", `text state.count`,
		func() map[string]state.Value { return map[string]state.Value{"count": state.NewInt(1)} },
		nil,
	)
	rt.SetRoot("root")

	h := runtimetest.New(t, rt)
	assert.Equal(t, "1", h.Frame())

	h.Tick()
	assert.Equal(t, "1", h.Frame())
}

func TestHarnessKeyDispatchesToFocusedElement(t *testing.T) {
	rt := runtime.New(runtime.WithMetricsRegisterer(prometheus.NewRegistry()))
	rt.Component("root", `input state.text`, nil, nil)
	rt.SetRoot("root")

	h := runtimetest.New(t, rt)
	root := h.Runtime().RootNode()
	h.Runtime().Focus(root)

	h.Send(runtime.Event{Kind: runtime.EventFocus})
	h.Key("a")

	assert.NotPanics(t, func() { h.Frame() })
}
