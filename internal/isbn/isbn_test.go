package isbn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTo13(t *testing.T) {
	assert.Equal(t, "9780306406157", To13("0306406152"))
	assert.Equal(t, "9780140449112", To13("0-14-044911-6"))
	assert.Equal(t, "9780201616224", To13("020161622X"))
	assert.Equal(t, "", To13(""))
	assert.Equal(t, "", To13("123"))
	assert.Equal(t, "", To13("abcdefghij"))
}

func TestValid13(t *testing.T) {
	assert.True(t, Valid13("9780306406157"))
	assert.True(t, Valid13("978-0-14-044911-2"))
	assert.False(t, Valid13("9780306406158"))
	assert.False(t, Valid13("978030640615"))
	assert.False(t, Valid13("978030640615X"))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "9780306406157", Clean(" 978-0-306 40615-7 "))
}
