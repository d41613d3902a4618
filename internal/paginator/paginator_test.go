package paginator

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reassemble walks text alongside chunks, re-inserting the newline dropped
// after every chunk that ended early.
func reassemble(t *testing.T, text string, chunks []string, limit int) {
	t.Helper()

	rest := []rune(text)
	for i, chunk := range chunks {
		c := []rune(chunk)
		require.LessOrEqual(t, len(c), limit, "chunk %d too long", i)
		require.GreaterOrEqual(t, len(rest), len(c))
		require.Equal(t, chunk, string(rest[:len(c)]), "chunk %d", i)
		rest = rest[len(c):]

		last := i == len(chunks)-1
		if !last && len(c) < limit {
			require.NotEmpty(t, rest)
			require.Equal(t, '\n', rest[0], "chunk %d should end at a newline", i)
			rest = rest[1:]
		}
	}
	assert.Empty(t, string(rest), "text not fully covered")
}

func TestPaginateEmpty(t *testing.T) {
	assert.Empty(t, Paginate("", DefaultLimit))
}

func TestPaginateShortText(t *testing.T) {
	assert.Equal(t, []string{"hello\nworld"}, Paginate("hello\nworld", DefaultLimit))
}

func TestPaginateHardCut(t *testing.T) {
	chunks := Paginate(strings.Repeat("a", 5000), DefaultLimit)

	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 4096)
	assert.Len(t, chunks[1], 904)
}

func TestPaginateBreaksAtLastNewline(t *testing.T) {
	text := "line1\n" + strings.Repeat("x", 4090) + "\nline3"

	chunks := Paginate(text, DefaultLimit)

	require.Len(t, chunks, 2)
	assert.Equal(t, "line1", chunks[0])
	assert.Equal(t, strings.Repeat("x", 4090)+"\nline3", chunks[1])
	reassemble(t, text, chunks, DefaultLimit)
}

func TestPaginateNewlineOnly(t *testing.T) {
	chunks := Paginate("\n\n\n", 1)

	assert.Equal(t, []string{"", "", "\n"}, chunks)
	reassemble(t, "\n\n\n", chunks, 1)
}

func TestPaginateCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 10)

	chunks := Paginate(text, 4)

	require.Equal(t, []string{"éééé", "éééé", "éé"}, chunks)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
	}
}

func TestPaginateNonPositiveLimit(t *testing.T) {
	text := strings.Repeat("b", DefaultLimit+1)

	assert.Equal(t, Paginate(text, DefaultLimit), Paginate(text, 0))
	assert.Equal(t, Paginate(text, DefaultLimit), Paginate(text, -3))
}

func TestPaginateReassembles(t *testing.T) {
	alphabet := []rune("ab c\n\né")
	rnd := rand.New(rand.NewSource(42))

	for n := 0; n < 500; n++ {
		size := rnd.Intn(200)
		limit := 1 + rnd.Intn(20)

		var b strings.Builder
		for i := 0; i < size; i++ {
			b.WriteRune(alphabet[rnd.Intn(len(alphabet))])
		}
		text := b.String()

		chunks := Paginate(text, limit)
		reassemble(t, text, chunks, limit)
		assert.Equal(t, chunks, Paginate(text, limit), "not deterministic for %q", text)
	}
}
