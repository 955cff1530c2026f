package web

import (
	"bytes"
	"html/template"

	"github.com/jaminalder/codex-connect-four/internal/app"
	"github.com/jaminalder/codex-connect-four/internal/domain"
)

type templates struct {
	base  *template.Template
	game  *template.Template
	board *template.Template
	index *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Connect Four</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
table{border-collapse:collapse}
td{width:50px;height:50px;border:1px solid #333;text-align:center}
#column-top td{border:none}
.piece{width:40px;height:40px;margin:auto;border-radius:50%}
.p1{background:red}.p2{background:gold}
.win{outline:4px solid #111}
.c1 button{color:red}.c2 button{color:goldenrod}
.alert{color:#b00}
</style>
</head><body>{{template "content" .}}</body></html>`))
	// Define the board template within the same set so game can include it
	template.Must(base.New("board").Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Connect Four</h1><form action="/game" method="post"><button>New game</button></form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<h1>Connect Four</h1>
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div id="board-slot" sse-swap="board">{{template "board" .}}</div>
</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const boardTemplate = `
<div id="board">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <p id="status">{{.Status}}</p>
  <table>
    <tr id="column-top" class="c{{.Current}}">
      {{range .Columns}}
      <td>
        <form hx-post="/game/{{$.ID}}/drop" hx-target="#board" hx-swap="outerHTML" method="post">
          <input type="hidden" name="col" value="{{.}}">
          <button type="submit"{{if $.Over}} disabled{{end}}>&#9660;</button>
        </form>
      </td>
      {{end}}
    </tr>
    {{range $r, $row := .Rows}}
    <tr>
      {{range $c, $cell := $row}}
      <td id="{{$r}}-{{$c}}">{{if $cell.Player}}<div class="piece p{{$cell.Player}}{{if $cell.Win}} win{{end}}"></div>{{end}}</td>
      {{end}}
    </tr>
    {{end}}
  </table>
  <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post">
    <button type="submit">New round</button>
  </form>
</div>
`

// cellView is one board cell as seen by the browser and the socket feed.
type cellView struct {
	Player int  `json:"p"`
	Win    bool `json:"win,omitempty"`
}

// boardView is the presentation model shared by the HTML fragments and the
// websocket feed.
type boardView struct {
	ID      string       `json:"id"`
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Rows    [][]cellView `json:"rows"`
	Columns []int        `json:"-"`
	Current int          `json:"current"`
	Phase   string       `json:"phase"`
	Winner  int          `json:"winner,omitempty"`
	Over    bool         `json:"over"`
	Moves   int          `json:"moves"`
	Status  string       `json:"status"`
	Error   string       `json:"error,omitempty"`
}

func newBoardView(gs app.GameState, errMsg string) boardView {
	g := gs.Game
	v := boardView{
		ID:      gs.ID,
		Width:   g.Width(),
		Height:  g.Height(),
		Current: int(g.Current()),
		Phase:   g.Phase().String(),
		Over:    g.Over(),
		Moves:   g.Moves(),
		Status:  gs.Status(),
		Error:   errMsg,
	}
	if w, ok := g.Winner(); ok {
		v.Winner = int(w)
	}
	win := make(map[domain.Point]bool)
	for _, p := range g.WinningLine() {
		win[p] = true
	}
	v.Columns = make([]int, g.Width())
	for c := range v.Columns {
		v.Columns[c] = c
	}
	v.Rows = make([][]cellView, g.Height())
	for r := range v.Rows {
		v.Rows[r] = make([]cellView, g.Width())
		for c := range v.Rows[r] {
			if p, ok := g.CellAt(r, c).Occupant(); ok {
				v.Rows[r][c] = cellView{Player: int(p), Win: win[domain.Point{Row: r, Col: c}]}
			}
		}
	}
	return v
}
