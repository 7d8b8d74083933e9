package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/iconsmith/internal/adapters/config"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		in   string
		want config.ByteSize
	}{
		{"1024", 1024},
		{"512MiB", 512 << 20},
		{"2GiB", 2 << 30},
		{" 10KiB ", 10 << 10},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := config.ParseByteSize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := config.ParseByteSize("lots")
	require.Error(t, err)
}

func TestByteSize_String(t *testing.T) {
	assert.Equal(t, "256 MiB", config.ByteSize(256<<20).String())
}

func TestParseDuration(t *testing.T) {
	d, err := config.ParseDuration("2m")
	require.NoError(t, err)
	assert.Equal(t, config.Duration(2*time.Minute), d)

	d, err = config.ParseDuration("1.5")
	require.NoError(t, err)
	assert.Equal(t, config.Duration(1500*time.Millisecond), d)

	_, err = config.ParseDuration("soon")
	require.Error(t, err)
}
