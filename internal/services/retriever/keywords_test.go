package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"latin words lowercased", "Hello World", []string{"hello", "world"}},
		{"digits kept as runs", "error 404 page", []string{"error", "page", "404"}},
		{"cjk per character", "学习笔记", []string{"学", "习", "笔", "记"}},
		{"mixed", "用Go写代码", []string{"用", "写", "代", "码", "go"}},
		{"punctuation ignored", "a, b. c!", []string{"a", "b", "c"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.input))
		})
	}
}

func TestQueryKeywords(t *testing.T) {
	keywords := queryKeywords("go go go concurrency", 10)
	assert.Len(t, keywords, 2)
	assert.Equal(t, 1.0, keywords["go"])
	assert.InDelta(t, 1.0/3.0, keywords["concurrency"], 1e-9)
}

func TestQueryKeywordsCap(t *testing.T) {
	keywords := queryKeywords("alpha alpha beta gamma delta epsilon", 2)
	assert.Len(t, keywords, 2)
	// Highest-frequency term always survives the cap
	assert.Contains(t, keywords, "alpha")
}

func TestQueryKeywordsEmpty(t *testing.T) {
	assert.Nil(t, queryKeywords("!!! ...", 5))
}

func TestKeywordScore(t *testing.T) {
	keywords := queryKeywords("react hooks", 10)

	full := keywordScore("Using React hooks: hooks let components keep state.", keywords)
	partial := keywordScore("React is a view library.", keywords)
	none := keywordScore("Completely unrelated text.", keywords)

	assert.Greater(t, full, partial)
	assert.Greater(t, partial, 0.0)
	assert.Equal(t, 0.0, none)
}

func TestKeywordScoreSaturates(t *testing.T) {
	keywords := queryKeywords("cache", 10)

	once := keywordScore("cache", keywords)
	many := keywordScore("cache cache cache cache cache cache cache cache", keywords)

	assert.Greater(t, many, once)
	// The term-frequency factor is bounded below 2x the single-occurrence score
	assert.Less(t, many, 2*once)
}

func TestKeywordScoreEmptyKeywords(t *testing.T) {
	assert.Equal(t, 0.0, keywordScore("anything", nil))
}
