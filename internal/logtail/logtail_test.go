package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	require.NoError(t, os.WriteFile(logPath, []byte(content.String()), 0o644))

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestParse_ZapLine(t *testing.T) {
	e := Parse(`{"level":"warn","ts":"2026-03-01T10:15:30.000Z","logger":"catalog","caller":"catalog/catalog.go:155","msg":"actions unavailable","componente_id":"5","acciones":3}`)

	assert.Equal(t, "WARN", e.Level)
	assert.Equal(t, "catalog", e.Logger)
	assert.Equal(t, "actions unavailable", e.Message)
	assert.False(t, e.Time.IsZero())
	assert.Equal(t, map[string]string{"componente_id": "5", "acciones": "3"}, e.Fields)

	formatted := e.Format()
	assert.True(t, strings.HasSuffix(formatted, "WARN  [catalog] actions unavailable acciones=3 componente_id=5"), formatted)
}

func TestParse_PlainLine(t *testing.T) {
	e := Parse("panic: something odd")
	assert.Equal(t, "panic: something odd", e.Message)
	assert.Equal(t, "panic: something odd", e.Format())
}

func TestParseLines_SkipsBlank(t *testing.T) {
	entries := ParseLines([]string{`{"level":"info","msg":"a"}`, "  ", `{"level":"error","msg":"b"}`})
	require.Len(t, entries, 2)
	assert.Equal(t, "ERROR", entries[1].Level)
	assert.Equal(t, "ERROR b", entries[1].Format())
}
