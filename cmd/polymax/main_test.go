// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "17"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 17}, ids)

	ids, err = parseIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = parseIDs([]string{"3", "x"})
	assert.ErrorContains(t, err, `invalid id "x"`)
}

func TestLoadConfigDefaultsAndEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("POLYMAX_EXTRACT_WORKERS", "8")
	t.Setenv("POLYMAX_STORE_PATH", "corpus.db")

	initConfig()
	cfg, err := loadConfig()
	require.NoError(t, err)

	def := types.DefaultPipelineConfig()
	assert.Equal(t, 8, cfg.Extract.Workers)
	assert.Equal(t, "corpus.db", cfg.Store.Path)
	assert.Equal(t, def.Extract.Depth, cfg.Extract.Depth)
	assert.Equal(t, def.Discover.MaxMatches, cfg.Discover.MaxMatches)
	assert.Equal(t, def.Analyze.Domains, cfg.Analyze.Domains)
}
