package main

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	assert.True(t, sort.StringsAreSorted(names), "migrations must apply in filename order")

	for _, name := range names {
		assert.True(t, strings.HasSuffix(name, ".sql"), "unexpected migration file %s", name)

		content, err := migrationsFS.ReadFile("migrations/" + name)
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- +goose Up")
		assert.Contains(t, string(content), "-- +goose Down")
	}
}
