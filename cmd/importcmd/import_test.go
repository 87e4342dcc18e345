package importcmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/finance-dashboard/cmd/common"
	"fjacquet/finance-dashboard/internal/importer"
	"fjacquet/finance-dashboard/internal/store"
)

const statement = `Type,Product,Started Date,Completed Date,Description,Amount,Fee,Currency,State,Balance
CARD_PAYMENT,Current,2024-01-15 10:30:00,2024-01-16 09:00:00,Coffee Shop,-4.50,0.00,EUR,COMPLETED,995.50
TOPUP,Current,2024-01-14 08:00:00,2024-01-14 08:00:05,Top-Up,1000.00,0.00,EUR,COMPLETED,1000.00
CARD_PAYMENT,Current,2024-01-17 12:00:00
TRANSFER,Savings,2024-01-18 18:00:00,,Rent,-950.00,0.00,EUR,COMPLETED,45.50
`

func writeStatement(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(statement), 0600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	common.ResetFlags(Cmd)
	var out bytes.Buffer
	Cmd.SetArgs(args)
	Cmd.SetIn(strings.NewReader(stdin))
	Cmd.SetOut(&out)
	Cmd.SetErr(&out)
	err := Cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportCommand_AssumeYes(t *testing.T) {
	mem := store.NewMemory()
	t.Cleanup(common.UseStore(mem))
	path := writeStatement(t)

	out, err := execute(t, "", path, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 new transactions (0 duplicates skipped)")
	assert.NotContains(t, out, "[y/N]")

	out, err = execute(t, "", path, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "No new transactions to import (3 duplicates)")

	stored, err := mem.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestImportCommand_PromptAccept(t *testing.T) {
	mem := store.NewMemory()
	t.Cleanup(common.UseStore(mem))

	out, err := execute(t, "y\n", writeStatement(t))
	require.NoError(t, err)
	assert.Contains(t, out, "statement.csv: 3 parsed, 3 new, 0 duplicates, 1 malformed and 0 incomplete rows skipped")
	assert.Contains(t, out, "Import 3 transactions? [y/N]: ")
	assert.Contains(t, out, "Imported 3 new transactions")
}

func TestImportCommand_PromptDecline(t *testing.T) {
	mem := store.NewMemory()
	t.Cleanup(common.UseStore(mem))

	out, err := execute(t, "\n", writeStatement(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Import cancelled; nothing was saved")

	stored, err := mem.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestImportCommand_Errors(t *testing.T) {
	t.Cleanup(common.UseStore(store.NewMemory()))

	_, err := execute(t, "", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error opening statement")

	pdf := filepath.Join(t.TempDir(), "statement.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte(statement), 0600))
	out, err := execute(t, "", pdf, "--yes")
	require.Error(t, err)
	assert.Contains(t, out, "expected a CSV file")

	_, err = execute(t, "")
	assert.Error(t, err)
}

func TestPrompt(t *testing.T) {
	plan := &importer.Plan{FileName: "s.csv", Parsed: 1}

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		ok, err := Prompt(strings.NewReader(tt.input), &out, false).Confirm(context.Background(), plan)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "input %q", tt.input)
		assert.Contains(t, out.String(), "[y/N]")
	}
}
