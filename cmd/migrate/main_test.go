package main

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntArg(t *testing.T) {
	n, err := intArg([]string{"down"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = intArg([]string{"down", "3"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = intArg([]string{"down", "0"}, 1)
	assert.Error(t, err)
	_, err = intArg([]string{"down", "x"}, 1)
	assert.Error(t, err)
}

func TestRequiredInt(t *testing.T) {
	n, err := requiredInt([]string{"force", "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = requiredInt([]string{"force"})
	assert.ErrorContains(t, err, "needs a version")
	_, err = requiredInt([]string{"goto", "-1"})
	assert.Error(t, err)
}

func TestIgnoreNoChange(t *testing.T) {
	assert.NoError(t, ignoreNoChange(nil))
	assert.NoError(t, ignoreNoChange(migrate.ErrNoChange))
	boom := errors.New("boom")
	assert.ErrorIs(t, ignoreNoChange(boom), boom)
}

func TestRunWithoutArgs(t *testing.T) {
	assert.ErrorContains(t, run(nil), "usage")
}
