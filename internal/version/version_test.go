package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	oldVersion, oldCommit, oldTime := Version, Commit, BuildTime
	defer func() { Version, Commit, BuildTime = oldVersion, oldCommit, oldTime }()

	Version, Commit, BuildTime = "v1.2.0", "0123456789abcdef", "2024-05-01T10:00:00Z"
	info := Get()

	assert.Equal(t, "v1.2.0", info.Version)
	assert.Equal(t, "0123456789abcdef", info.Commit)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), info.BuildTime)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestInfo_Short(t *testing.T) {
	assert.Equal(t, "v1.0.0 (0123456)", Info{Version: "v1.0.0", Commit: "0123456789"}.Short())
	assert.Equal(t, "dev", Info{Version: "dev", Commit: "unknown"}.Short())
	assert.Equal(t, "dev (abcdefg) (dirty)", Info{Version: "dev", Commit: "abcdefgh", Dirty: true}.Short())
}
