package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrolabs/patro/pkg/observability"
)

// runCommand executes a throwaway child command through rootCmd and
// returns the context it observed plus the captured log output.
func runCommand(t *testing.T) (context.Context, string) {
	t.Helper()

	var buf bytes.Buffer
	SetLogger(observability.NewLogger(observability.LogConfig{
		Level:  observability.LogLevelDebug,
		Format: observability.LogFormatJSON,
		Output: &buf,
	}))

	var captured context.Context
	cmd := &cobra.Command{
		Use: "ctxcheck",
		Run: func(cmd *cobra.Command, args []string) {
			captured = cmd.Context()
		},
	}
	AddCommand(cmd)
	t.Cleanup(func() {
		rootCmd.RemoveCommand(cmd)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"ctxcheck"})
	require.NoError(t, rootCmd.Execute())
	require.NotNil(t, captured)

	return captured, buf.String()
}

func TestCommandContextCarriesCorrelationID(t *testing.T) {
	ctx, output := runCommand(t)

	corrID := observability.CorrelationIDFromContext(ctx)
	require.NotEmpty(t, corrID)
	_, err := uuid.Parse(corrID)
	assert.NoError(t, err)

	// The same ID must appear on the command lifecycle records, injected
	// by the handler rather than passed as an explicit attribute.
	assert.Contains(t, output, "command start")
	assert.Contains(t, output, "command end")
	assert.Contains(t, output, corrID)
}

func TestCommandLogsIncludeDuration(t *testing.T) {
	_, output := runCommand(t)

	assert.Contains(t, output, "duration_ms")
	assert.Contains(t, output, "patro ctxcheck")
}
