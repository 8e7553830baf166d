package arenastack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Store_Allocate_respectsCapacity(t *testing.T) {
	assert := assert.New(t)

	s := New[int](4)

	st1, err := s.Allocate(2)
	if !assert.NoError(err) {
		return
	}
	st1.Push(1)
	st1.Push(2)

	st2, err := s.Allocate(2)
	if !assert.NoError(err) {
		return
	}
	st2.Push(3)

	assert.Equal([]int{1, 2}, st1.Raw())
	assert.Equal([]int{3}, st2.Raw())
}

func Test_Store_Allocate_exhausted(t *testing.T) {
	assert := assert.New(t)

	s := New[int](2)

	_, err := s.Allocate(2)
	assert.NoError(err)

	_, err = s.Allocate(1)
	assert.ErrorIs(err, ErrStackArenaExhausted)
}

func Test_Store_Clear_rewindsWatermark(t *testing.T) {
	assert := assert.New(t)

	s := New[int](2)

	_, err := s.Allocate(2)
	assert.NoError(err)

	_, err = s.Allocate(1)
	assert.ErrorIs(err, ErrStackArenaExhausted)

	s.Clear()

	_, err = s.Allocate(2)
	assert.NoError(err)
}

func Test_Stack_PushPopLast(t *testing.T) {
	assert := assert.New(t)

	s := New[string](4)
	st, err := s.Allocate(4)
	if !assert.NoError(err) {
		return
	}

	assert.True(st.Empty())

	st.Push("a")
	st.Push("b")
	st.Push("c")

	assert.Equal(3, st.Len())
	assert.Equal("c", st.Last())

	popped := st.Pop()
	assert.Equal("c", popped)
	assert.Equal(2, st.Len())
	assert.Equal("b", st.Last())
}

func Test_Stack_Index(t *testing.T) {
	assert := assert.New(t)

	s := New[int](3)
	st, err := s.Allocate(3)
	if !assert.NoError(err) {
		return
	}

	st.Push(10)
	st.Push(20)
	st.Push(30)

	assert.Equal(10, st.Index(0))
	assert.Equal(20, st.Index(1))
	assert.Equal(30, st.Index(2))
}

func Test_Stack_CopyFrom(t *testing.T) {
	assert := assert.New(t)

	s := New[int](5)
	st, err := s.Allocate(5)
	if !assert.NoError(err) {
		return
	}

	st.CopyFrom([]int{1, 2, 3})
	assert.Equal(3, st.Len())
	assert.Equal([]int{1, 2, 3}, st.Raw())

	st.Push(4)
	assert.Equal([]int{1, 2, 3, 4}, st.Raw())
}

func Test_Stack_Pop_emptyPanics(t *testing.T) {
	s := New[int](1)
	st, err := s.Allocate(1)
	if err != nil {
		t.Fatal(err)
	}

	assert.Panics(t, func() {
		st.Pop()
	})
}
