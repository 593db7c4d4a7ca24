package crawler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("http://www.j-archive.com/")
	require.NoError(t, err)

	tests := []struct {
		name    string
		base    *url.URL
		href    string
		want    string
		wantErr bool
	}{
		{
			name: "relative episode link",
			base: base,
			href: "showgame.php?game_id=4990",
			want: "http://www.j-archive.com/showgame.php?game_id=4990",
		},
		{
			name: "relative season link",
			base: base,
			href: "showseason.php?season=31",
			want: "http://www.j-archive.com/showseason.php?season=31",
		},
		{
			name: "absolute link passes through",
			base: base,
			href: "https://elsewhere.test/page",
			want: "https://elsewhere.test/page",
		},
		{
			name: "nil base keeps reference as-is",
			base: nil,
			href: "showgame.php?game_id=1",
			want: "showgame.php?game_id=1",
		},
		{
			name:    "empty href",
			base:    base,
			href:    "",
			wantErr: true,
		},
		{
			name:    "unparseable href",
			base:    base,
			href:    "http://bad host/",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ResolveURL(tc.base, tc.href)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
