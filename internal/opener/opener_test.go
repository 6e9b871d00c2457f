package opener

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandPassesPathLast(t *testing.T) {
	name, args := command("/tmp/config dir/config.ini")
	assert.NotEmpty(t, name)
	if assert.NotEmpty(t, args) {
		assert.Equal(t, "/tmp/config dir/config.ini", args[len(args)-1])
	}
}
