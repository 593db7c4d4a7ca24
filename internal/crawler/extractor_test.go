package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

// episodePageHTML mirrors the archive's game-page markup closely enough to
// exercise every extraction path: a normal single-round clue, a double-round
// clue, a Triple Stumper, an empty board position, and a malformed cell.
const episodePageHTML = `<html><body><div id="content">
<table>
<tr>
  <td class="category_name">SCIENCE</td>
  <td class="category_name">HISTORY</td>
  <td class="category_name">OPERA</td>
  <td class="category_name">RHYME TIME</td>
  <td class="category_name">POTPOURRI</td>
  <td class="category_name">WORD ORIGINS</td>
</tr>
<tr>
<td class="clue">
  <table>
    <tr>
      <td class="clue_value">$200</td>
      <td class="clue_order_number"><a href="#">1</a></td>
    </tr>
    <tr><td class="clue_text" id="clue_J_1_1">This force keeps planets in orbit</td></tr>
    <tr><td class="clue_text" id="clue_J_1_1_r">
      <em class="correct_response">gravity</em>
      <table><tr><td class="right">Ken</td></tr></table>
    </td></tr>
  </table>
  <span id="clue_J_1_1_stuck" class="clue_unstuck"></span>
</td>
<td class="clue">
  <table>
    <tr>
      <td class="clue_value">$400</td>
      <td class="clue_order_number"><a href="#">14</a></td>
    </tr>
    <tr><td class="clue_text" id="clue_J_2_2">This wall fell in 1989</td></tr>
    <tr><td class="clue_text" id="clue_J_2_2_r">
      <em class="correct_response">the Berlin Wall</em>
      <table><tr><td class="wrong">Ann</td><td class="wrong">Triple Stumper</td></tr></table>
    </td></tr>
  </table>
  <span id="clue_J_2_2_stuck" class="clue_unstuck"></span>
</td>
</tr>
</table>
<table>
<tr>
  <td class="category_name">DJ SCIENCE</td>
  <td class="category_name">DJ HISTORY</td>
  <td class="category_name">DJ OPERA</td>
  <td class="category_name">DJ RHYME TIME</td>
  <td class="category_name">DJ POTPOURRI</td>
  <td class="category_name">DJ WORD ORIGINS</td>
</tr>
<tr>
<td class="clue">
  <table>
    <tr>
      <td class="clue_value_daily_double">DD: $2,000</td>
      <td class="clue_order_number"><a href="#">31</a></td>
    </tr>
    <tr><td class="clue_text" id="clue_DJ_3_4">An aria from this Puccini opera</td></tr>
    <tr><td class="clue_text" id="clue_DJ_3_4_r">
      <em class="correct_response">Tosca</em>
      <table><tr><td class="right">Brad</td></tr></table>
    </td></tr>
  </table>
  <span id="clue_DJ_3_4_stuck" class="clue_unstuck"></span>
</td>
<td class="clue"></td>
<td class="clue">
  <table>
    <tr><td class="clue_text" id="clue_DJ_6_1">Cell without value or order</td></tr>
  </table>
  <span id="clue_DJ_6_1_stuck" class="clue_unstuck"></span>
</td>
<td class="clue">
  <span id="clue" class="clue_unstuck"></span>
</td>
</tr>
</table>
</div></body></html>`

func TestExtract(t *testing.T) {
	t.Parallel()

	extractor := NewGoqueryExtractor(zap.NewNop())
	clues, err := extractor.Extract("http://www.j-archive.com/showgame.php?game_id=4990", []byte(episodePageHTML))
	require.NoError(t, err)

	// Four structurally sound clues; the empty position and the malformed
	// anchor are dropped.
	require.Len(t, clues, 4)

	science := clues[0]
	assert.Equal(t, "SCIENCE", science.Category)
	assert.Equal(t, "gravity", science.Answer)
	assert.Equal(t, "This force keeps planets in orbit", science.Text)
	assert.Equal(t, "$200", science.DollarValue)
	assert.Equal(t, "1", science.OrderNumber)
	assert.Equal(t, "1", science.Row)
	assert.False(t, science.DoubleRound)
	assert.False(t, science.TripleStumper)
	assert.Equal(t, "Ken", science.Contestant)

	stumper := clues[1]
	assert.Equal(t, "HISTORY", stumper.Category)
	assert.True(t, stumper.TripleStumper)
	assert.Equal(t, "Triple Stumper", stumper.Contestant)
	assert.Equal(t, "the Berlin Wall", stumper.Answer)

	double := clues[2]
	assert.Equal(t, "DJ OPERA", double.Category)
	assert.True(t, double.DoubleRound)
	assert.Equal(t, "DD: $2,000", double.DollarValue)
	assert.Equal(t, "31", double.OrderNumber)
	assert.Equal(t, "4", double.Row)
	assert.Equal(t, "Brad", double.Contestant)

	bare := clues[3]
	assert.Equal(t, "DJ WORD ORIGINS", bare.Category)
	assert.Equal(t, "0", bare.DollarValue)
	assert.Equal(t, "0", bare.OrderNumber)
	assert.Equal(t, "Unknown", bare.Answer)
	assert.Equal(t, "None", bare.Contestant)
	assert.Equal(t, "Cell without value or order", bare.Text)
}

func TestExtractEmptyDocument(t *testing.T) {
	t.Parallel()

	extractor := NewGoqueryExtractor(zap.NewNop())
	clues, err := extractor.Extract("http://example.test/empty", []byte("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, clues)
}

func TestExtractCategoryIndexOutOfRange(t *testing.T) {
	t.Parallel()

	// A double-round clue on a page that lists only the single round's
	// categories falls back to the Unknown sentinel.
	page := `<html><body><table>
<tr><td class="category_name">ONLY ONE</td></tr>
<tr><td class="clue">
  <span id="clue_DJ_1_1_stuck" class="clue_unstuck"></span>
</td></tr>
</table></body></html>`

	extractor := NewGoqueryExtractor(zap.NewNop())
	clues, err := extractor.Extract("http://example.test/partial", []byte(page))
	require.NoError(t, err)
	require.Len(t, clues, 1)
	assert.Equal(t, "Unknown", clues[0].Category)
}

func TestParseClueID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		id         string
		wantRound  string
		wantColumn int
		wantRow    string
		wantErr    bool
	}{
		{name: "single round", id: "clue_J_3_2", wantRound: "J", wantColumn: 3, wantRow: "2"},
		{name: "double round with suffix", id: "clue_DJ_1_5_stuck", wantRound: "DJ", wantColumn: 1, wantRow: "5"},
		{name: "final round", id: "clue_FJ_1_1", wantRound: "FJ", wantColumn: 1, wantRow: "1"},
		{name: "too few segments", id: "clue_J_3", wantErr: true},
		{name: "non-numeric column", id: "clue_J_x_2", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			round, column, row, err := parseClueID(tc.id)
			if tc.wantErr {
				var parseErr *ParseError
				require.ErrorAs(t, err, &parseErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantRound, round)
			assert.Equal(t, tc.wantColumn, column)
			assert.Equal(t, tc.wantRow, row)
		})
	}
}
