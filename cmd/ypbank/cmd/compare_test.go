package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareCommand_Identical(t *testing.T) {
	env := newTestEnv(t)
	csvPath := env.writeFile(t, "a.csv", sampleCSV)
	txtPath := env.path("a.txt")

	_, err := env.run(t, nil, "convert", "-i", csvPath, "-f", "csv", "-o", "txt", "--out", txtPath)
	require.NoError(t, err)

	out, err := env.run(t, nil, "compare", "--file1", csvPath, "--format1", "csv", "--file2", txtPath, "--format2", "txt")
	require.NoError(t, err)
	assert.Equal(t, "The transaction records are identical.\n", out)
}

func TestCompareCommand_Differences(t *testing.T) {
	env := newTestEnv(t)
	first := env.writeFile(t, "a.csv", sampleCSV)

	changed := strings.Replace(sampleCSV, "2,TRANSFER,42,7,200,", "2,TRANSFER,42,7,250,", 1)
	changed = strings.Replace(changed, `3,WITHDRAWAL,7,0,300,1633036980000,FAILURE,"Record number 3"`+"\n", "", 1)
	changed += `4,DEPOSIT,0,1,5,1633037040000,SUCCESS,"Record number 4"` + "\n"
	second := env.writeFile(t, "b.csv", changed)

	out, err := env.run(t, nil, "compare", "--file1", first, "--format1", "csv", "--file2", second, "--format2", "csv")
	require.NoError(t, err)

	assert.Contains(t, out, "Transaction 2 differs:\n")
	assert.Contains(t, out, "    AMOUNT: 200 -> 250\n")
	assert.Contains(t, out, "Transaction 3 present in "+first+" but missing in "+second+"\n")
	assert.Contains(t, out, "Transaction 4 present in "+second+" but missing in "+first+"\n")

	t.Run("currency display", func(t *testing.T) {
		out, err := env.run(t, nil, "compare", "--file1", first, "--format1", "csv",
			"--file2", second, "--format2", "csv", "--currency", "USD")
		require.NoError(t, err)
		assert.Contains(t, out, "    AMOUNT: $2.00 -> $2.50\n")
	})
}

func TestCompareCommand_RequiresFormats(t *testing.T) {
	env := newTestEnv(t)
	p := env.writeFile(t, "a.csv", sampleCSV)

	_, err := env.run(t, nil, "compare", "--file1", p, "--file2", p, "--format1", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--format2 is required")
}
