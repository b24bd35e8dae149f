package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkipUnlessLive(t *testing.T) {
	skipped := func(setup func(t *testing.T), keys ...string) bool {
		var didSkip bool
		t.Run("inner", func(t *testing.T) {
			setup(t)
			defer func() { didSkip = t.Skipped() }()
			SkipUnlessLive(t, keys...)
		})
		return didSkip
	}

	assert.True(t, skipped(func(t *testing.T) { t.Setenv(EnvLiveTests, "") }))
	assert.True(t, skipped(func(t *testing.T) { t.Setenv(EnvLiveTests, "yes") }))
	assert.False(t, skipped(func(t *testing.T) { t.Setenv(EnvLiveTests, "1") }))
	assert.True(t, skipped(func(t *testing.T) {
		t.Setenv(EnvLiveTests, "1")
		t.Setenv("PURESTREAM_TEST_KEY", "")
	}, "PURESTREAM_TEST_KEY"))
	assert.False(t, skipped(func(t *testing.T) {
		t.Setenv(EnvLiveTests, "1")
		t.Setenv("PURESTREAM_TEST_KEY", "sk-test")
	}, "PURESTREAM_TEST_KEY"))
}
