package alarm

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestServiceDesc_MatchesProto keeps the hand-written descriptor in line with
// the documented contract.
func TestServiceDesc_MatchesProto(t *testing.T) {
	t.Parallel()

	contents, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "api", AlarmClockServiceDesc.Metadata))
	require.NoError(t, err)

	contract := string(contents)

	pkg, service, ok := strings.Cut(ServiceName, ".AlarmClock")
	require.True(t, ok)
	require.Empty(t, service)
	require.Contains(t, contract, "package "+pkg+";")
	require.Contains(t, contract, "service AlarmClock {")

	rpcs := regexp.MustCompile(`rpc (\w+)\(`).FindAllStringSubmatch(contract, -1)
	require.Len(t, rpcs, len(AlarmClockServiceDesc.Methods))

	for i, method := range AlarmClockServiceDesc.Methods {
		require.Equal(t, method.MethodName, rpcs[i][1])
	}
}
