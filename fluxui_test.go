package fluxui_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui"
)

func TestRootPackageTypesAreAccessible(t *testing.T) {
	var _ fluxui.RunOption
	var _ fluxui.ErrorReporter
	var _ *fluxui.Runtime
}

func TestRunOptionConstructorsReturnUsableOptions(t *testing.T) {
	tests := []struct {
		name   string
		option fluxui.RunOption
	}{
		{"WithAltScreen", fluxui.WithAltScreen()},
		{"WithMouseAllMotion", fluxui.WithMouseAllMotion()},
		{"WithFPS", fluxui.WithFPS(24)},
		{"WithErrorTemplate", fluxui.WithErrorTemplate("error")},
		{"WithMetricsRegisterer", fluxui.WithMetricsRegisterer(prometheus.NewRegistry())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.option)
			rt := fluxui.New(tt.option)
			assert.NotNil(t, rt)
		})
	}
}

func TestNewBuildsARunnableRuntime(t *testing.T) {
	rt := fluxui.New(fluxui.WithMetricsRegisterer(prometheus.NewRegistry()))
	require.NotNil(t, rt)

	rt.Template("root", `text "hello"`)
	rt.SetRoot("root")

	require.NoError(t, rt.Mount())
	assert.Contains(t, rt.Paint(), "hello")
}
