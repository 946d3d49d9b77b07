package sentryreport_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui/pkg/runtime"
	"github.com/corvidae/fluxui/pkg/runtime/sentryreport"
)

func TestNewWithEmptyDSNDisablesSending(t *testing.T) {
	reporter, err := sentryreport.New("")
	require.NoError(t, err)
	require.NotNil(t, reporter)

	// Report must not panic or block even with sending disabled.
	reporter.Report("runtime.frame", errors.New("boom"))
	reporter.Flush(0)
}

func TestReporterSatisfiesRuntimeErrorReporter(t *testing.T) {
	var _ runtime.ErrorReporter = (*sentryreport.Reporter)(nil)
}
