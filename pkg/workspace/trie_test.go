package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrieInsertAndSearch(t *testing.T) {
	trie := NewTrie[string]()
	trie.Insert("cmd/main.go", "cmd/main.go")
	trie.Insert("cmd/util.go", "cmd/util.go")

	got, ok := trie.Search("cmd/main.go")
	require.True(t, ok)
	assert.Equal(t, "cmd/main.go", got)

	// Prefixes of stored keys are not themselves keys.
	_, ok = trie.Search("cmd/")
	assert.False(t, ok)
	_, ok = trie.Search("missing")
	assert.False(t, ok)
}

func TestTrieInsertReplaces(t *testing.T) {
	trie := NewTrie[int]()
	trie.Insert("key", 1)
	trie.Insert("key", 2)

	got, ok := trie.Search("key")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, trie.Len())
}

func TestTrieStartsWith(t *testing.T) {
	trie := NewTrie[string]()
	for _, key := range []string{"pkg/a.go", "pkg/b.go", "pkg/sub/c.go", "cmd/main.go"} {
		trie.Insert(key, key)
	}

	results := trie.StartsWith("pkg/", 0)
	assert.Len(t, results, 3)

	results = trie.StartsWith("pkg/", 2)
	assert.Len(t, results, 2)

	assert.Empty(t, trie.StartsWith("nope/", 0))

	// The empty prefix matches everything.
	assert.Len(t, trie.StartsWith("", 0), 4)
}

func TestTrieDelete(t *testing.T) {
	trie := NewTrie[string]()
	trie.Insert("abc", "abc")
	trie.Insert("abcd", "abcd")

	assert.False(t, trie.Delete("missing"))
	assert.False(t, trie.Delete("ab"))

	assert.True(t, trie.Delete("abcd"))
	_, ok := trie.Search("abcd")
	assert.False(t, ok)

	// The shorter key survives prefix pruning.
	got, ok := trie.Search("abc")
	require.True(t, ok)
	assert.Equal(t, "abc", got)
	assert.Equal(t, 1, trie.Len())

	assert.True(t, trie.Delete("abc"))
	assert.Equal(t, 0, trie.Len())
}
