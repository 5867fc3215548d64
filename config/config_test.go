package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettings(t *testing.T) {
	s := NewSettings()
	assert.Equal(t, DefaultDataDir, s.DataDir)
	assert.Equal(t, DefaultSourceCollection, s.SourceCollection)
	assert.Equal(t, DefaultVectorCollection, s.VectorCollection)
	assert.Equal(t, DefaultListenAddr, s.ListenAddr)
	assert.Equal(t, DefaultPageSize, s.PageSize)
	require.NoError(t, s.Validate())
}

func TestSettingsValidate(t *testing.T) {
	t.Run("missing data dir", func(t *testing.T) {
		s := NewSettings()
		s.DataDir = ""
		assert.ErrorIs(t, s.Validate(), ErrDataDirRequired)
	})

	t.Run("missing source collection", func(t *testing.T) {
		s := NewSettings()
		s.SourceCollection = ""
		assert.ErrorIs(t, s.Validate(), ErrCollectionRequired)
	})

	t.Run("missing vector collection", func(t *testing.T) {
		s := NewSettings()
		s.VectorCollection = ""
		assert.ErrorIs(t, s.Validate(), ErrCollectionRequired)
	})

	t.Run("invalid page size", func(t *testing.T) {
		s := NewSettings()
		s.PageSize = 0
		assert.ErrorIs(t, s.Validate(), ErrInvalidPageSize)
	})
}
