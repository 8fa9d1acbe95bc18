// Package workspace maintains a searchable index of a project directory:
// a trie-backed file listing with gitignore filtering and live updates
// from filesystem notifications.
package workspace

// Trie is a prefix tree mapping string keys to values of type T.
// It is not safe for concurrent use; the Index serializes access.
type Trie[T any] struct {
	root *trieNode[T]
}

type trieNode[T any] struct {
	children map[byte]*trieNode[T]
	terminal bool
	value    T
}

func newTrieNode[T any]() *trieNode[T] {
	return &trieNode[T]{children: make(map[byte]*trieNode[T])}
}

// NewTrie creates an empty trie.
func NewTrie[T any]() *Trie[T] {
	return &Trie[T]{root: newTrieNode[T]()}
}

// Insert stores value under key, replacing any previous value.
func (t *Trie[T]) Insert(key string, value T) {
	node := t.root
	for i := 0; i < len(key); i++ {
		child, ok := node.children[key[i]]
		if !ok {
			child = newTrieNode[T]()
			node.children[key[i]] = child
		}
		node = child
	}
	node.terminal = true
	node.value = value
}

// Search returns the value stored under key, if any.
func (t *Trie[T]) Search(key string) (T, bool) {
	var zero T
	node := t.root
	for i := 0; i < len(key); i++ {
		child, ok := node.children[key[i]]
		if !ok {
			return zero, false
		}
		node = child
	}
	if !node.terminal {
		return zero, false
	}
	return node.value, true
}

// StartsWith collects the values of every key beginning with prefix, up
// to limit results. limit <= 0 means unlimited.
func (t *Trie[T]) StartsWith(prefix string, limit int) []T {
	node := t.root
	for i := 0; i < len(prefix); i++ {
		child, ok := node.children[prefix[i]]
		if !ok {
			return nil
		}
		node = child
	}
	var out []T
	collect(node, limit, &out)
	return out
}

func collect[T any](node *trieNode[T], limit int, out *[]T) {
	if limit > 0 && len(*out) >= limit {
		return
	}
	if node.terminal {
		*out = append(*out, node.value)
	}
	for _, child := range node.children {
		collect(child, limit, out)
	}
}

// Delete removes key from the trie, pruning nodes that no longer lead to
// any stored key. It reports whether the key was present.
func (t *Trie[T]) Delete(key string) bool {
	return deleteKey(t.root, key, 0)
}

func deleteKey[T any](node *trieNode[T], key string, depth int) bool {
	if depth == len(key) {
		if !node.terminal {
			return false
		}
		node.terminal = false
		var zero T
		node.value = zero
		return true
	}
	child, ok := node.children[key[depth]]
	if !ok {
		return false
	}
	if !deleteKey(child, key, depth+1) {
		return false
	}
	if !child.terminal && len(child.children) == 0 {
		delete(node.children, key[depth])
	}
	return true
}

// Len reports the number of stored keys.
func (t *Trie[T]) Len() int {
	return countKeys(t.root)
}

func countKeys[T any](node *trieNode[T]) int {
	n := 0
	if node.terminal {
		n++
	}
	for _, child := range node.children {
		n += countKeys(child)
	}
	return n
}
