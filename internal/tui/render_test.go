package tui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestTruncate_ShortStringUntouched(t *testing.T) {
	require.Equal(t, "rent", truncate("rent", 20))
	require.Equal(t, "", truncate("", 20))
}

func TestTruncate_LongStringShortened(t *testing.T) {
	require.Equal(t, "aaaaa...", truncate(strings.Repeat("a", 30), 5))
}

func TestTruncate_MultibyteMemoStaysValidUTF8(t *testing.T) {
	memo := strings.Repeat("за аренду ", 5)

	got := truncate(memo, 20)
	require.True(t, utf8.ValidString(got))
	require.Equal(t, string([]rune(memo)[:20])+"...", got)
}
