package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteText(t *testing.T) {
	rows := []Row{
		{Name: "Pale Ale", Price: "¥300", Capacity: "330ml", Description: []string{"Hoppy", "tail"}},
		{Name: "Broken", Price: "取得失敗", Capacity: "取得失敗", HasError: true},
	}

	t.Run("plain output is aligned", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteText(&buf, rows, false))

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[1], "1  Pale Ale"))
		assert.Contains(t, lines[1], "Hoppy")
		assert.NotContains(t, lines[1], "tail")
		assert.True(t, strings.HasPrefix(lines[2], "2  Broken"))
		assert.NotContains(t, buf.String(), "\x1b[")
	})

	t.Run("colored output marks failed rows", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteText(&buf, rows, true))

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "\x1b[1m"))
		assert.False(t, strings.HasPrefix(lines[1], "\x1b["))
		assert.True(t, strings.HasPrefix(lines[2], "\x1b[31m"))
	})

	t.Run("full-width names stay aligned", func(t *testing.T) {
		wide := []Row{
			{Name: "よなよなエール", Price: "¥250", Capacity: "350ml"},
			{Name: "IPA", Price: "¥300", Capacity: "取得失敗"},
		}
		var buf bytes.Buffer
		require.NoError(t, WriteText(&buf, wide, false))

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		require.Len(t, lines, 3)
		priceColumn := func(line string) int {
			idx := strings.Index(line, "¥")
			require.GreaterOrEqual(t, idx, 0, line)
			return runewidth.StringWidth(line[:idx])
		}
		assert.Equal(t, priceColumn(lines[1]), priceColumn(lines[2]))
		assert.Equal(t, runewidth.StringWidth("1  よなよなエール  "), priceColumn(lines[1]))
	})
}
