package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	oldVersion, oldCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = oldVersion, oldCommit })

	Version = "1.2.3"
	GitCommit = "abc1234"
	assert.Equal(t, "colorgrid 1.2.3 (commit abc1234, built unknown)", String())
}
