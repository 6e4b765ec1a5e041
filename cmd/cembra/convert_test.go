package cembra_test

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"fjacquet/beancount-import/cmd/cembra"
	"fjacquet/beancount-import/cmd/root"
	"fjacquet/beancount-import/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statementXML = `<?xml version="1.0" encoding="UTF-8"?>
<pdf2xml producer="poppler">
<page number="2">
<text>03.01.2024</text>
<text>04.01.2024</text>
<text>SBB CFF FFS</text>
<text>12.00</text>
<text>05.01.2024</text>
<text>06.01.2024</text>
<text>Boreal Coffee</text>
<text>-4.50</text>
</page>
</pdf2xml>
`

const expectedLedger = "2024-01-03 * \"SBB CFF FFS\"\n Expenses:Transport 12.00 CHF\n Liabilities:CreditCard\n\n" +
	"2024-01-05 * \"Boreal Coffee\"\n Liabilities:Unknown -4.50 CHF\n Liabilities:CreditCard\n\n"

func TestMain(m *testing.M) {
	root.Init()
	root.Cmd.AddCommand(cembra.Cmd)
	os.Exit(m.Run())
}

// workspace runs the command from an empty directory whose config.yaml
// points tools.pdftohtml at a shell script. The script records its
// arguments in pdftohtml.args and runs script.
func workspace(t *testing.T, script string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)

	require.NoError(t, os.WriteFile("statement.xml", []byte(statementXML), 0600))
	require.NoError(t, os.WriteFile("statement.pdf", []byte("%PDF-1.7\n%fixture"), 0600))
	require.NoError(t, os.WriteFile("rules.csv", []byte("sbb,Expenses:Transport\n"), 0600))

	tool := filepath.Join(dir, "fake-pdftohtml")
	body := "#!/bin/sh\nprintf '%s\\n' \"$@\" > '" + filepath.Join(dir, "pdftohtml.args") + "'\n" + script + "\n"
	require.NoError(t, os.WriteFile(tool, []byte(body), 0700)) // #nosec G306 -- test executable
	config := "tools:\n  pdftohtml: " + tool + "\nparsers:\n  cembra:\n    extractor: pdftohtml\n"
	require.NoError(t, os.WriteFile("config.yaml", []byte(config), 0600))

	original := root.SharedFlags
	t.Cleanup(func() { root.SharedFlags = original })
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetArgs(args)
	t.Cleanup(func() {
		root.Cmd.SetOut(nil)
		root.Cmd.SetArgs(nil)
	})
	err := root.Cmd.Execute()
	return out.String(), err
}

func TestCembraCommand_Metadata(t *testing.T) {
	assert.Equal(t, "cembra <statement.pdf>", cembra.Cmd.Use)
	assert.Contains(t, cembra.Cmd.Short, "Cembra")
	assert.NotNil(t, cembra.Cmd.RunE)
	assert.NotNil(t, cembra.Cmd.Flags().Lookup("account"))
}

func TestCembraCommand_Stdout(t *testing.T) {
	dir := workspace(t, "cat statement.xml")

	out, err := execute(t, "cembra", "--rules", "rules.csv", "--output", "", "--account", "", "--validate=false", "statement.pdf")
	require.NoError(t, err)
	assert.Equal(t, expectedLedger, out)

	args, err := os.ReadFile(filepath.Join(dir, "pdftohtml.args"))
	require.NoError(t, err)
	assert.Equal(t, "statement.pdf\n-xml\n-f\n2\n-stdout\n", string(args))
}

func TestCembraCommand_OutputFileAndAccount(t *testing.T) {
	dir := workspace(t, "cat statement.xml")
	target := filepath.Join(dir, "ledgers", "cembra.beancount")

	out, err := execute(t, "cembra", "-r", "rules.csv", "-o", target, "--account", "Liabilities:Cembra:Visa", "--validate", "statement.pdf")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), " Expenses:Transport 12.00 CHF\n Liabilities:Cembra:Visa\n")
	assert.NotContains(t, string(data), "Liabilities:CreditCard")
}

func TestCembraCommand_MalformedRendering(t *testing.T) {
	workspace(t, "printf '<pdf2xml><page number=\"2\">stray</page></pdf2xml>'")

	out, err := execute(t, "cembra", "--rules", "rules.csv", "--output", "", "--account", "", "--validate=false", "statement.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, parsererror.ErrMalformedInput))
	assert.Contains(t, err.Error(), "page 2")
	assert.Empty(t, out)
}

func TestCembraCommand_ToolFailure(t *testing.T) {
	workspace(t, "echo 'Syntax Error: Couldn'\\''t find trailer dictionary' >&2\nexit 1")

	out, err := execute(t, "cembra", "--rules", "rules.csv", "--output", "", "--account", "", "--validate=false", "statement.pdf")
	require.Error(t, err)
	var toolErr *parsererror.ExternalToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Contains(t, toolErr.Stderr, "trailer dictionary")
	assert.True(t, errors.Is(err, parsererror.ErrMalformedInput))
	assert.Empty(t, out)
}

func TestCembraCommand_RequiresFile(t *testing.T) {
	workspace(t, "cat statement.xml")

	_, err := execute(t, "cembra")
	assert.Error(t, err)
}
