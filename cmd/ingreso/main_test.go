package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootFlags(t *testing.T) {
	require.NoError(t, rootCmd.ParseFlags([]string{"--diagnostico", "42", "-p", "MOT,8", "--vehiculo"}))
	assert.Equal(t, "42", rootOpts.DiagnosticoID)
	assert.Equal(t, []string{"MOT", "8"}, rootOpts.Preselect)
	assert.True(t, rootOpts.PromptVehicle)
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["stub"])
	assert.True(t, names["version"])
}

func TestLoadStubFixturesDefaults(t *testing.T) {
	fx, err := loadStubFixtures("")
	require.NoError(t, err)
	assert.NotEmpty(t, fx.Componentes)
}
