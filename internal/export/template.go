package export

import (
	"bytes"
	"fmt"
	"html/template"
)

const defaultSiteTitle = "J! Archive Explorer"

// indexTemplate is the static landing page. It carries no data of its own;
// the embedded script fetches the JSON artifacts from ./data at view time.
const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body { font-family: Georgia, serif; margin: 0; background: #060ce9; color: #fff; }
  header { padding: 1.5rem 2rem; border-bottom: 4px solid #ffcc00; }
  h1 { margin: 0; font-size: 1.8rem; text-transform: uppercase; letter-spacing: 0.1em; }
  main { padding: 1.5rem 2rem; }
  select { font-size: 1rem; padding: 0.3rem; margin-bottom: 1rem; }
  table { border-collapse: collapse; width: 100%; background: #0a1172; }
  th, td { border: 1px solid #283593; padding: 0.5rem; text-align: left; vertical-align: top; }
  th { background: #283593; text-transform: uppercase; font-size: 0.8rem; }
  td.answer { color: #ffcc00; cursor: pointer; }
  td.answer span { visibility: hidden; }
  td.answer.revealed span { visibility: visible; }
  .stumper { color: #ff8a80; font-size: 0.8rem; }
  #status { margin: 1rem 0; font-style: italic; }
</style>
</head>
<body>
<header><h1>{{.Title}}</h1></header>
<main>
  <label for="season-select">Season:</label>
  <select id="season-select"></select>
  <div id="status">Loading seasons&hellip;</div>
  <table id="clue-table" hidden>
    <thead>
      <tr>
        <th>Air Date</th><th>Episode</th><th>Category</th><th>Value</th>
        <th>Clue</th><th>Correct Response</th><th>Contestant</th>
      </tr>
    </thead>
    <tbody></tbody>
  </table>
</main>
<script>
(function () {
  "use strict";
  var select = document.getElementById("season-select");
  var status = document.getElementById("status");
  var table = document.getElementById("clue-table");
  var tbody = table.querySelector("tbody");

  function cell(text, className) {
    var td = document.createElement("td");
    if (className) { td.className = className; }
    td.textContent = text;
    return td;
  }

  function answerCell(clue) {
    var td = document.createElement("td");
    td.className = "answer";
    var span = document.createElement("span");
    span.textContent = clue.answer;
    td.appendChild(span);
    if (clue.triple_stumper) {
      var note = document.createElement("div");
      note.className = "stumper";
      note.textContent = "Triple Stumper";
      td.appendChild(note);
    }
    td.addEventListener("click", function () { td.classList.toggle("revealed"); });
    return td;
  }

  function renderSeason(season) {
    status.textContent = "Loading season " + season + "…";
    table.hidden = true;
    fetch("data/season_" + season + ".json")
      .then(function (resp) {
        if (!resp.ok) { throw new Error("HTTP " + resp.status); }
        return resp.json();
      })
      .then(function (data) {
        tbody.textContent = "";
        data.clues.forEach(function (clue) {
          var tr = document.createElement("tr");
          tr.appendChild(cell(clue.formatted_date));
          tr.appendChild(cell(clue.episode));
          tr.appendChild(cell(clue.category + (clue.dj ? " (DJ)" : "")));
          tr.appendChild(cell(clue.dollar_value));
          tr.appendChild(cell(clue.text));
          tr.appendChild(answerCell(clue));
          tr.appendChild(cell(clue.contestant));
          tbody.appendChild(tr);
        });
        status.textContent = data.episodes.length + " episodes, " +
          data.clues.length + " clues. Click a response to reveal it.";
        table.hidden = false;
      })
      .catch(function (err) {
        status.textContent = "Could not load season " + season + ": " + err.message;
      });
  }

  fetch("data/seasons.json")
    .then(function (resp) {
      if (!resp.ok) { throw new Error("HTTP " + resp.status); }
      return resp.json();
    })
    .then(function (seasons) {
      if (!seasons.length) {
        status.textContent = "No seasons have been scraped yet.";
        return;
      }
      seasons.forEach(function (entry) {
        var opt = document.createElement("option");
        opt.value = entry.season;
        opt.textContent = "Season " + entry.season;
        select.appendChild(opt);
      });
      select.addEventListener("change", function () { renderSeason(select.value); });
      renderSeason(seasons[0].season);
    })
    .catch(function (err) {
      status.textContent = "Could not load seasons: " + err.message;
    });
})();
</script>
</body>
</html>
`

type indexData struct {
	Title string
}

// renderIndex produces the landing page bytes. The output depends only on the
// template, so repeated exports are byte-identical.
func renderIndex() ([]byte, error) {
	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, indexData{Title: defaultSiteTitle}); err != nil {
		return nil, fmt.Errorf("render index template: %w", err)
	}
	return buf.Bytes(), nil
}
