package mask

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	got, err := Keywords([]string{"pragma", "#error", " line ", "pragma"})

	require.NoError(t, err)
	assert.Equal(t, []string{"#pragma", "#error", "#line"}, got)
}

func TestKeywords_RejectsEmpty(t *testing.T) {
	for _, name := range []string{"", "  ", "#", "# "} {
		_, err := Keywords([]string{name})
		assert.ErrorIs(t, err, ErrEmptyKeyword, "name %q", name)
	}
}

func TestMask_OnlyLineInitial(t *testing.T) {
	src := "#foo bar\nx = #foo\n"

	got, n := MaskCount([]byte(src), []string{"#foo"})

	assert.Equal(t, 1, n)
	assert.Equal(t, Sentinel+"#foo bar\nx = #foo\n", string(got))
}

func TestMask_LeadingWhitespace(t *testing.T) {
	src := "void f() {\n\t  #pragma unroll\n}\n"

	got := Mask([]byte(src), []string{"#pragma"})

	assert.Equal(t, "void f() {\n\t  "+Sentinel+"#pragma unroll\n}\n", string(got))
}

func TestMask_EveryOccurrence(t *testing.T) {
	src := "#pragma a\n#pragma b\n  #pragma c\n// #pragma d\n"

	got, n := MaskCount([]byte(src), []string{"#pragma"})

	assert.Equal(t, 3, n)
	assert.Equal(t, 3, strings.Count(string(got), Sentinel))
	assert.Contains(t, string(got), "// #pragma d")
}

func TestMask_KeywordsAreIndependent(t *testing.T) {
	src := "#error stop\n#pragma once\n#define X 1\n"

	got, n := MaskCount([]byte(src), []string{"#pragma", "#error"})

	assert.Equal(t, 2, n)
	assert.Equal(t, Sentinel+"#error stop\n"+Sentinel+"#pragma once\n#define X 1\n", string(got))
}

func TestMask_PrefixKeywordMatchesLongerDirective(t *testing.T) {
	src := "#ifdef A\n#if B\n"

	got, n := MaskCount([]byte(src), []string{"#if", "#ifdef"})

	assert.Equal(t, 2, n)
	assert.Equal(t, Sentinel+"#ifdef A\n"+Sentinel+"#if B\n", string(got))
}

func TestMask_NoKeywords(t *testing.T) {
	got, n := MaskCount([]byte("#pragma x\n"), nil)

	assert.Equal(t, 0, n)
	assert.Equal(t, "#pragma x\n", string(got))
}

func TestUnmask(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "none", in: "float x;", want: "float x;"},
		{name: "one", in: Sentinel + "#pragma once\n", want: "#pragma once\n"},
		{name: "many", in: Sentinel + "#a\n  " + Sentinel + "#b\n", want: "#a\n  #b\n"},
		{name: "nested", in: "//##c!m!" + Sentinel + "t##x", want: "x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, string(Unmask([]byte(tc.in))))
		})
	}
}

func TestMaskUnmask_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"#pragma once\n#include \"a.h\"\n",
		"x = #error;\n\t#error here\n#errorless\n",
		"#line 10\r\n  #line 20\r\n",
		"no directives at all",
		"#if A\n#ifdef B\n#endif\n#endif\n",
	}
	keywordSets := [][]string{
		nil,
		{"#pragma"},
		{"#error", "#line"},
		{"#if", "#ifdef", "#endif", "#include"},
		{"#"},
	}

	for _, in := range inputs {
		for _, keywords := range keywordSets {
			masked := Mask([]byte(in), keywords)
			assert.Equal(t, in, string(Unmask(masked)), "input %q keywords %q", in, keywords)
		}
	}
}
