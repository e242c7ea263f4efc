package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveDuplicateStrings(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{"B", "C"}, RemoveDuplicateStrings([]string{"A", "B", "", "B", "C"}, []string{"A"}))
	assert.Nil(RemoveDuplicateStrings(nil, nil))
}

func TestOptionalString(t *testing.T) {
	assert := assert.New(t)

	blank := "   "
	padded := " CN010 "

	assert.Nil(OptionalString(nil))
	assert.Nil(OptionalString(&blank))
	assert.Equal("CN010", *OptionalString(&padded))
}

func TestGetEnvironmentVariables(t *testing.T) {
	t.Setenv("RAILLINE_TEST_VALUE", "set=twice")

	assert.Equal(t, "set=twice", GetEnvironmentVariables()["RAILLINE_TEST_VALUE"])
}
