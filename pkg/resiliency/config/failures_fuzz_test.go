package config

import (
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func FuzzParseFailureCase(f *testing.F) {
	testCases := []string{"POWEROFF_NODE", "NODE_NETWORK_DOWN", "UNKNOWN"}
	for _, tc := range testCases {
		f.Add([]byte(tc))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		fuzzConsumer := fuzz.NewConsumer(data)
		identifier, err := fuzzConsumer.GetString()
		if err != nil {
			return
		}
		iteration, err := fuzzConsumer.GetInt()
		if err != nil {
			return
		}

		entry := yaml.MapSlice{{
			Key:   identifier,
			Value: map[interface{}]interface{}{"ITERATION": iteration},
		}}
		failureCase, err := ParseFailureCase(entry)

		if types.ParseFailureMethod(identifier) == types.FailureMethodUnknown {
			require.True(t, cerrors.IsType(err, cerrors.ErrorTypeUnsupportedFailureMethod))
			return
		}
		require.NoError(t, err)
		require.Equal(t, identifier, string(failureCase.Method))
		require.NotNil(t, failureCase.Parameters.Iteration)
		require.Equal(t, iteration, *failureCase.Parameters.Iteration)
	})
}
