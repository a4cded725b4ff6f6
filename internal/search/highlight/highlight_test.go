package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlight_BlankQueryIsIdentity(t *testing.T) {
	for _, text := range []string{"", "plain", "<b>x</b>", "졸업식"} {
		assert.Equal(t, text, Highlight(text, ""))
		assert.Equal(t, text, Highlight(text, "  "))
	}
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  string
	}{
		{"keeps original casing", "Class Reunion", "reunion", "Class <mark>Reunion</mark>"},
		{"all occurrences", "go Go GO", "go", "<mark>go</mark> <mark>Go</mark> <mark>GO</mark>"},
		{"korean", "2010 졸업식", "졸업", "2010 <mark>졸업</mark>식"},
		{"metacharacters are literal", "cost (a+b)*2 vs ab", "(a+b)*", "cost <mark>(a+b)*</mark>2 vs ab"},
		{"dot is not a wildcard", "a.c abc", ".", "a<mark>.</mark>c abc"},
		{"no match", "nothing here", "zzz", "nothing here"},
		{"non overlapping", "aaaa", "aa", "<mark>aa</mark><mark>aa</mark>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.text, tt.query))
		})
	}
}

func TestHighlight_SingleOccurrenceWrapsOnce(t *testing.T) {
	got := Highlight("Memories of Seoul", "SEOUL")

	assert.Equal(t, 1, strings.Count(got, OpenTag))
	assert.Equal(t, 1, strings.Count(got, CloseTag))
	assert.Contains(t, got, OpenTag+"Seoul"+CloseTag)
}

func TestSanitizer(t *testing.T) {
	s := NewSanitizer()

	assert.Equal(t, "<mark>a</mark> b", s.Sanitize(`<script>alert(1)</script><mark>a</mark> <b>b</b>`))
	assert.Equal(t, "hello &lt;i onclick=&#34;x()&#34;&gt;<mark>world</mark>&lt;/i&gt;", s.Safe(`hello <i onclick="x()">world</i>`, "world"))
}

func TestSanitizer_SafeKeepsTextAroundAngleBrackets(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name  string
		text  string
		query string
		want  string
	}{
		{"less than before match", "a<b and c", "c", "a&lt;b and <mark>c</mark>"},
		{"markup is text", "<b>bold</b> day", "b", "&lt;<mark>b</mark>&gt;<mark>b</mark>old&lt;/<mark>b</mark>&gt; day"},
		{"match contains bracket", "x <3 y", "<3", "x <mark>&lt;3</mark> y"},
		{"blank query escapes", "1 < 2 & 3", "", "1 &lt; 2 &amp; 3"},
		{"script never survives", "<script>alert(1)</script>", "alert", "&lt;script&gt;<mark>alert</mark>(1)&lt;/script&gt;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Safe(tt.text, tt.query)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.Count(got, OpenTag), strings.Count(got, CloseTag))
		})
	}
}
