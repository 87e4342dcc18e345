package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Line(t *testing.T) {
	assert.Equal(t, 12, Record{FieldLine: "12"}.Line())
	assert.Equal(t, 0, Record{FieldLine: "x"}.Line())
	assert.Equal(t, 0, Record{}.Line())
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(FieldLine))
	assert.False(t, IsTransient(FieldAmount))
}
