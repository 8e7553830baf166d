package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func vocabEntries() []Entry {
	return []Entry{
		{ID: 0, Bytes: []byte("A"), Display: "A"},
		{ID: 1, Bytes: []byte("C"), Display: "C"},
		{ID: 2, Bytes: []byte("G"), Display: "G"},
		{ID: 3, Bytes: []byte("T"), Display: "T"},
		{ID: 4, Bytes: []byte("1"), Display: "1"},
		{ID: 8, Bytes: []byte("CAT"), Display: "CAT"},
		{ID: 9, Bytes: []byte("A1"), Display: "A1"},
	}
}

func Test_New_rejectsDuplicateID(t *testing.T) {
	entries := []Entry{
		{ID: 1, Bytes: []byte("a")},
		{ID: 1, Bytes: []byte("b")},
	}
	_, err := New(entries)
	assert.Error(t, err)
	var dup ErrDuplicateID
	assert.ErrorAs(t, err, &dup)
}

func Test_New_rejectsEmptyBytes(t *testing.T) {
	entries := []Entry{
		{ID: 1, Bytes: nil},
	}
	_, err := New(entries)
	assert.ErrorIs(t, err, ErrEmptyBytes)
}

func Test_Vocabulary_Bytes(t *testing.T) {
	assert := assert.New(t)

	v, err := New(vocabEntries())
	if !assert.NoError(err) {
		return
	}

	b, ok := v.Bytes(8)
	assert.True(ok)
	assert.Equal([]byte("CAT"), b)

	_, ok = v.Bytes(99)
	assert.False(ok)
}

func Test_Vocabulary_IterWithPrefix(t *testing.T) {
	assert := assert.New(t)

	v, err := New(vocabEntries())
	if !assert.NoError(err) {
		return
	}

	it := v.IterWithPrefix([]byte("C"))
	found := map[ID][]byte{}
	for {
		b, id, ok := it.Next()
		if !ok {
			break
		}
		found[id] = append([]byte{}, b...)
	}

	assert.Equal(map[ID][]byte{
		1: []byte("C"),
		8: []byte("CAT"),
	}, found)
}

func Test_Vocabulary_IterWithPrefix_noMatch(t *testing.T) {
	assert := assert.New(t)

	v, err := New(vocabEntries())
	if !assert.NoError(err) {
		return
	}

	it := v.IterWithPrefix([]byte("Z"))
	_, _, ok := it.Next()
	assert.False(ok)
}

func Test_Vocabulary_AllIDs_sorted(t *testing.T) {
	assert := assert.New(t)

	v, err := New(vocabEntries())
	if !assert.NoError(err) {
		return
	}

	ids := v.AllIDs()
	assert.Equal([]ID{0, 1, 2, 3, 4, 8, 9}, ids)
}
