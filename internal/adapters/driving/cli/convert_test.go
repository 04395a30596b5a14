package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertCmd_Use(t *testing.T) {
	assert.Equal(t, "convert <document-id>", convertCmd.Use)
}

func TestConvertCmd_ConvertsDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	fake := convertService.(*fakeOrchestrator)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"convert", "doc-42"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"doc-42"}, fake.converted)
	assert.Contains(t, buf.String(), "Document doc-42 converted")
}

func TestConvertCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	convertService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"convert", "doc-42"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "conversion service not configured")
}

func TestConvertCmd_PropagatesError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	convertService.(*fakeOrchestrator).err = errFakeService

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"convert", "doc-42"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, errFakeService)
}
