package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("divide by zero", From("divide by zero"))
	assert.Equal("line 12 'x'", From("line %d '%v'", 12, "x"))
	assert.Equal("address 0x0000ff00", From("address 0x%08x", 0xff00))
	assert.NotEmpty(Language().String())
}
