package gunnyscript_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KimNorgaard/go-gunnyscript"
)

func TestUnmarshal_TypeMismatchErrors(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		target      func() any // Use a function to get a fresh pointer for each test
		expectedErr string
	}{
		{
			name:        "Object into String",
			input:       `{ key "value" }`,
			target:      func() any { return new(string) },
			expectedErr: "gunnyscript: cannot unmarshal object into Go value of type string at line 1, column 1",
		},
		{
			name:        "Object into Slice",
			input:       `{ key "value" }`,
			target:      func() any { return new([]string) },
			expectedErr: "gunnyscript: cannot unmarshal object into Go value of type []string at line 1, column 1",
		},
		{
			name:        "Array into Int",
			input:       `[1, 2, 3]`,
			target:      func() any { return new(int) },
			expectedErr: "gunnyscript: cannot unmarshal array into Go value of type int at line 1, column 1",
		},
		{
			name:        "Array into Map",
			input:       `[1, 2, 3]`,
			target:      func() any { return new(map[string]int) },
			expectedErr: "gunnyscript: cannot unmarshal array into Go value of type map[string]int at line 1, column 1",
		},
		{
			name:        "String into Int",
			input:       `"hello"`,
			target:      func() any { return new(int) },
			expectedErr: "gunnyscript: cannot unmarshal string into Go value of type int at line 1, column 1",
		},
		{
			name:        "Number into String",
			input:       `123`,
			target:      func() any { return new(string) },
			expectedErr: "gunnyscript: cannot unmarshal number 123 into Go value of type string at line 1, column 1",
		},
		{
			name:        "Fraction into Int",
			input:       `123.45`,
			target:      func() any { return new(int) },
			expectedErr: "gunnyscript: cannot unmarshal number 123.45 into Go value of type int at line 1, column 1",
		},
		{
			name:        "Negative into Uint",
			input:       `-1`,
			target:      func() any { return new(uint) },
			expectedErr: "gunnyscript: cannot unmarshal number -1 into Go value of type uint at line 1, column 1",
		},
		{
			name:        "Overflow",
			input:       `300`,
			target:      func() any { return new(int8) },
			expectedErr: "gunnyscript: cannot unmarshal number 300 into Go value of type int8 at line 1, column 1",
		},
		{
			name:        "Boolean into Int",
			input:       `true`,
			target:      func() any { return new(int) },
			expectedErr: "gunnyscript: cannot unmarshal boolean into Go value of type int at line 1, column 1",
		},
		{
			name:        "Date into Int",
			input:       `2020-01-02`,
			target:      func() any { return new(int) },
			expectedErr: "gunnyscript: cannot unmarshal date 2020-01-02 into Go value of type int at line 1, column 1",
		},
		{
			name:        "Nested element",
			input:       "{\n  a [1, \"x\"]\n}",
			target:      func() any { return new(struct{ A []int `gunny:"a"` }) },
			expectedErr: "gunnyscript: cannot unmarshal string into Go value of type int at line 2, column 9",
		},
		{
			name:        "Interface with methods",
			input:       `1`,
			target:      func() any { return new(fmt.Stringer) },
			expectedErr: "gunnyscript: cannot unmarshal number 1 into Go value of type fmt.Stringer at line 1, column 1",
		},
		{
			name:        "Array length mismatch",
			input:       `[1, 2]`,
			target:      func() any { return new([3]int) },
			expectedErr: "gunnyscript: cannot unmarshal array of length 2 into Go array of length 3",
		},
		{
			name:        "Non-string map key",
			input:       `{ a "x" }`,
			target:      func() any { return new(map[int]string) },
			expectedErr: "gunnyscript: cannot unmarshal object into map with non-string key type int",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := gunnyscript.Unmarshal([]byte(tc.input), tc.target())
			require.EqualError(t, err, tc.expectedErr)
		})
	}
}

func TestUnmarshal_InvalidTarget(t *testing.T) {
	var i int
	require.EqualError(t, gunnyscript.Unmarshal([]byte("1"), i), "gunnyscript: Unmarshal(non-pointer int or nil)")
	require.EqualError(t, gunnyscript.Unmarshal([]byte("1"), nil), "gunnyscript: Unmarshal(non-pointer <nil> or nil)")

	var p *int
	require.Error(t, gunnyscript.Unmarshal([]byte("1"), p))
}
