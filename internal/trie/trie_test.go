package trie

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(it *Iterator) []string {
	var out []string
	for {
		b, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, string(b))
	}
	sort.Strings(out)
	return out
}

func Test_Trie_Add_and_Get(t *testing.T) {
	assert := assert.New(t)

	tr := New[string]()
	id := tr.Add("base", []byte("A"), true)

	v := tr.Get(id)
	assert.Equal([]byte("A"), v.Value)
	assert.True(v.CanStop)
	assert.False(v.HasChildren())
}

func Test_Trie_Add_sharesPrefixes(t *testing.T) {
	assert := assert.New(t)

	tr := New[string]()
	tr.Add("word", []byte("cat"), true)
	tr.Add("word", []byte("car"), true)

	root := tr.Root("word")
	cChild, ok := tr.Child(root, 'c')
	if !assert.True(ok) {
		return
	}
	aChild, ok := tr.Child(cChild, 'a')
	if !assert.True(ok) {
		return
	}
	assert.Equal(2, tr.ChildCount(aChild))
}

func Test_Trie_Iter_findsAllTerminalsUnderRoot(t *testing.T) {
	assert := assert.New(t)

	tr := New[string]()
	tr.Add("word", []byte("cat"), true)
	tr.Add("word", []byte("car"), true)
	tr.Add("word", []byte("dog"), true)

	root := tr.Root("word")
	got := collect(tr.Iter(root))
	assert.Equal([]string{"car", "cat", "dog"}, got)
}

func Test_Trie_ExceptLiteral_marksBacktrack(t *testing.T) {
	assert := assert.New(t)

	tr := New[string]()
	tr.Add("any", []byte("\""), false)
	tr.Add("any", []byte("abc"), false)
	tr.ExceptLiteral("any", []byte("\""))

	root := tr.Root("any")
	quote, ok := tr.Child(root, '"')
	if !assert.True(ok) {
		return
	}
	v := tr.Get(quote)
	assert.Equal(1, v.NegativeBytesIndex)

	abcRoot, ok := tr.Child(root, 'a')
	if !assert.True(ok) {
		return
	}
	v2 := tr.Get(abcRoot)
	assert.Equal(0, v2.NegativeBytesIndex)
}

func Test_Trie_RootIfExists(t *testing.T) {
	assert := assert.New(t)

	tr := New[string]()
	_, ok := tr.RootIfExists("missing")
	assert.False(ok)

	tr.Add("present", []byte("x"), true)
	_, ok = tr.RootIfExists("present")
	assert.True(ok)
}
