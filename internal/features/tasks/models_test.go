package tasks

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractChannelRef(t *testing.T) {
	cases := map[string]string{
		"https://t.me/mega_news":          "mega_news",
		"http://t.me/mega_news":           "mega_news",
		"t.me/mega_news":                  "mega_news",
		"https://t.me/mega_news?start=1":  "mega_news",
		"https://t.me/@mega_news":         "mega_news",
		"https://example.com/page":        "",
		"https://twitter.com/mega_mining": "",
	}
	for link, want := range cases {
		require.Equal(t, want, ExtractChannelRef(link), "link=%s", link)
	}
}
