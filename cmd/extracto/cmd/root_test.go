package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	globalConfig = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "extracto", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommandHelp(t *testing.T) {
	output, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, output, "Available Commands:")
	assert.Contains(t, output, "batch")
	assert.Contains(t, output, "normalize")
	assert.Contains(t, output, "Usage:")
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "extracto")
}

func TestConfigPathsCommand(t *testing.T) {
	output, err := execute(t, "config", "paths")
	require.NoError(t, err)
	assert.Contains(t, output, "extracto")
}

func TestConfigInitCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	output, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, output, "extracto.yaml")

	data, err := os.ReadFile("extracto.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "ocr:")
}

func TestBatchCommand_NoFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "batch", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no PDF files")
}

func TestNormalizeCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.csv")

	csvData := strings.Join([]string{
		"OPERACION;RUT;DV;NOMBRE",
		"123456;15.657.067-2;;JUAN SOTO",
	}, "\n")
	require.NoError(t, os.WriteFile(input, []byte(csvData), 0o600))

	_, err := execute(t, "normalize", input, "--output", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	// RUT column is split and cleaned during normalization.
	assert.Contains(t, string(data), "123456;15657067;2;JUAN SOTO")
}

func TestNormalizeCommand_BadDelimiter(t *testing.T) {
	_, err := execute(t, "normalize", "whatever.csv", "--delimiter", "ab")
	require.Error(t, err)
}
