package escape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Decode(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []byte
	}{
		{name: "plain text", input: "abc", expect: []byte("abc")},
		{name: "tab", input: `a\tb`, expect: []byte("a\tb")},
		{name: "newline", input: `a\nb`, expect: []byte("a\nb")},
		{name: "carriage return", input: `a\rb`, expect: []byte("a\rb")},
		{name: "hex byte", input: `\x41`, expect: []byte("A")},
		{name: "unicode", input: `é`, expect: []byte("é")},
		{name: "escaped quote", input: `\'`, expect: []byte("'")},
		{name: "escaped backslash", input: `\\`, expect: []byte(`\`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := Decode(tc.input)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Decode_errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "dangling backslash", input: `abc\`},
		{name: "incomplete hex", input: `\x4`},
		{name: "bad hex digit", input: `\xZZ`},
		{name: "incomplete unicode", input: `\u12`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := Decode(tc.input)
			assert.Error(err)
		})
	}
}
