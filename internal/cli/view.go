package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/collapse"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/overview"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/pipeline"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/render/connector"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/search"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/viewport"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/visibility"
)

// Terminal geometry. The camera works in screen pixels; one terminal cell
// covers cellWidth×cellHeight of them.
const (
	cellWidth     = 10.0
	cellHeight    = 20.0
	statusRows    = 2
	frameInterval = time.Second / 60
	panStep       = 80.0
	zoomStep      = 1.2
	fitPadding    = 40.0
	miniCols      = 32
	miniRows      = 10
)

// viewCommand creates the interactive viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view [tree.json]",
		Short: "Explore a family tree in the terminal",
		Long: `Explore a family tree in the terminal.

  arrows / hjkl   pan              tab / shift+tab  select next / previous
  + / -           zoom             enter / space    collapse or expand selected
  f               fit tree         /                search by name or title
  0               reset zoom       m                pin or auto-hide the minimap
  mouse           drag to pan, release to fling, wheel to zoom, click to select
  drag selected   move that person r                put it back
  q               quit

Collapse changes are saved to the configured store as you make them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runView(ctx context.Context, input string) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	t, err := family.ReadFile(input)
	if err != nil {
		return err
	}

	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	treeID := family.Identity(t)
	ids, err := collapse.Load(ctx, store, treeID)
	if err != nil {
		c.Logger.Warn("collapse state unavailable", "tree", treeID, "err", err)
	}

	// Background save failures surface after the alt screen closes.
	writeErrs := make(chan error, 1)
	writer := collapse.NewWriter(store, treeID, ids, collapse.DefaultWriteDelay, func(err error) {
		select {
		case writeErrs <- err:
		default:
		}
	})

	opts := c.pipelineOptions(input)
	m := newViewModel(t, opts, writer, cfg.ViewportOptions(), cfg.Overview)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, runErr := p.Run()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := writer.Close(closeCtx); err != nil {
		return fmt.Errorf("save collapse state: %w", err)
	}
	select {
	case err := <-writeErrs:
		c.Logger.Warn("a background collapse save failed", "err", err)
	default:
	}

	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return runErr
}

// =============================================================================
// viewModel - bubbletea model driving the viewport controller
// =============================================================================

type frameMsg time.Time

type viewModel struct {
	tree    *family.Tree
	persons map[string]family.Person
	opts    pipeline.Options
	filter  *visibility.Filter
	layout  *layout.Layout
	// overrides holds persons dragged by hand; merged after every relayout.
	overrides layout.Overrides

	vc     *viewport.Controller
	mini   *overview.Minimap
	writer *collapse.Writer
	vel    viewport.VelocityTracker

	width, height int
	fitted        bool
	selected      string
	searching     bool
	prompt        textinput.Model
	message       string

	dragging     bool
	moving       string
	dragX, dragY int
	overMini     bool
	lastFrame    time.Time
	now          func() time.Time
}

func newViewModel(t *family.Tree, opts pipeline.Options, w *collapse.Writer, vopts []viewport.Option, size overview.Size) *viewModel {
	m := &viewModel{
		tree:      t,
		persons:   make(map[string]family.Person, len(t.Persons)),
		opts:      opts,
		overrides: layout.Overrides{},
		writer:    w,
		vc:        viewport.New(viewport.Transform{Scale: 1}, vopts...),
		now:       time.Now,
	}
	for _, p := range t.Persons {
		m.persons[p.ID] = p
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "name or title"
	ti.CharLimit = 64
	m.prompt = ti

	m.mini = overview.New(size, m.vc)
	m.relayout()
	return m
}

// relayout recomputes visibility and positions for the writer's collapse
// set. A selection that became hidden is dropped.
func (m *viewModel) relayout() {
	m.opts.Collapsed = m.writer.IDs()
	m.opts.Overrides = m.overrides
	m.filter, m.layout = pipeline.GenerateLayout(m.tree, m.opts)
	m.mini.SetLayout(m.layout)
	if m.selected != "" && m.filter.IsHidden(m.selected) {
		m.selected = ""
	}
}

func (m *viewModel) container() (float64, float64) {
	return float64(m.width) * cellWidth, float64(max(m.height-statusRows, 1)) * cellHeight
}

func (m *viewModel) frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *viewModel) Init() tea.Cmd {
	return m.frame()
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cw, ch := m.container()
		m.mini.SetContainer(cw, ch)
		if !m.fitted {
			m.vc.FitTo(m.layout.Bounds, cw, ch, fitPadding, true)
			m.fitted = true
		}
	case frameMsg:
		now := time.Time(msg)
		if !m.lastFrame.IsZero() {
			m.vc.Step(now.Sub(m.lastFrame))
		}
		m.lastFrame = now
		m.mini.Flush(now)
		return m, m.frame()
	case tea.KeyMsg:
		if m.searching {
			return m, m.searchKey(msg)
		}
		return m, m.key(msg)
	case tea.MouseMsg:
		m.mouse(msg)
	default:
		// Cursor blinks.
		if m.searching {
			var cmd tea.Cmd
			m.prompt, cmd = m.prompt.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *viewModel) key(msg tea.KeyMsg) tea.Cmd {
	cw, ch := m.container()
	m.message = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "left", "h":
		m.vc.PanBy(panStep, 0, false)
	case "right", "l":
		m.vc.PanBy(-panStep, 0, false)
	case "up", "k":
		m.vc.PanBy(0, panStep, false)
	case "down", "j":
		m.vc.PanBy(0, -panStep, false)
	case "+", "=":
		m.vc.ZoomAt(cw/2, ch/2, zoomStep)
	case "-", "_":
		m.vc.ZoomAt(cw/2, ch/2, 1/zoomStep)
	case "0":
		m.vc.SetScale(1)
	case "f":
		m.vc.FitTo(m.layout.Bounds, cw, ch, fitPadding, false)
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "enter", " ":
		m.toggleSelected()
	case "esc":
		m.selected = ""
	case "/":
		m.searching = true
		m.prompt.Reset()
		return m.prompt.Focus()
	case "m":
		m.message = "minimap " + string(m.mini.AutoHide().Toggle())
	case "r":
		m.resetSelected()
	}
	return nil
}

// resetSelected returns a hand-placed selected person to its computed
// position.
func (m *viewModel) resetSelected() {
	if m.selected == "" {
		m.message = "select a person first (tab)"
		return
	}
	name := displayName(m.persons[m.selected])
	if _, moved := m.overrides[m.selected]; !moved {
		m.message = name + " has not been moved"
		return
	}
	m.overrides.Clear(m.selected)
	m.relayout()
	m.message = "put " + name + " back"
}

func (m *viewModel) searchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.prompt.Blur()
		return nil
	case tea.KeyEnter:
		m.searching = false
		m.prompt.Blur()
		m.jumpTo(m.prompt.Value())
		return nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

// jumpTo selects the first search hit and moves the camera to it.
func (m *viewModel) jumpTo(query string) {
	p, ok := search.First(m.tree.Persons, query)
	if !ok {
		m.message = fmt.Sprintf("no match for %q", strings.TrimSpace(query))
		return
	}
	cw, ch := m.container()
	if !search.Jump(m.vc, m.layout, p.ID, cw, ch) {
		m.message = displayName(p) + " is inside a collapsed branch"
		return
	}
	m.selected = p.ID
}

// cycle moves the selection through the visible persons in layout order.
func (m *viewModel) cycle(dir int) {
	order := m.layout.Order
	if len(order) == 0 {
		return
	}
	i := -1
	for j, id := range order {
		if id == m.selected {
			i = j
			break
		}
	}
	switch {
	case i < 0 && dir > 0:
		i = 0
	case i < 0:
		i = len(order) - 1
	default:
		i = (i + dir + len(order)) % len(order)
	}
	m.selectPerson(order[i])
}

func (m *viewModel) selectPerson(id string) {
	pos, ok := m.layout.Position(id)
	if !ok {
		return
	}
	m.selected = id
	cw, ch := m.container()
	m.vc.FocusPerson(pos, cw, ch, viewport.FocusSelection)
}

// toggleSelected collapses or expands the selected person. Persons without
// children have nothing to collapse.
func (m *viewModel) toggleSelected() {
	if m.selected == "" {
		m.message = "select a person first (tab)"
		return
	}
	if !m.filter.HasChildren(m.selected) && !m.filter.IsCollapsed(m.selected) {
		m.message = displayName(m.persons[m.selected]) + " has no descendants"
		return
	}
	m.writer.Toggle(m.selected)
	m.relayout()
	if m.filter.IsCollapsed(m.selected) {
		m.message = fmt.Sprintf("collapsed %s (%d hidden)", displayName(m.persons[m.selected]), m.filter.DescendantCount(m.selected))
	} else {
		m.message = "expanded " + displayName(m.persons[m.selected])
	}
}

// =============================================================================
// Mouse
// =============================================================================

// miniOrigin returns the top-left cell of the minimap frame.
func (m *viewModel) miniOrigin() (int, int) {
	return m.width - miniCols - 1, 0
}

func (m *viewModel) inMini(x, y int) bool {
	if !m.mini.AutoHide().Expanded(m.now()) && !m.overMini {
		x0, _ := m.miniOrigin()
		return x >= x0+miniCols-3 && y == 0
	}
	x0, y0 := m.miniOrigin()
	return x >= x0 && x < x0+miniCols && y >= y0 && y < y0+miniRows
}

// toMini converts a terminal cell inside the minimap frame to minimap
// pixels.
func (m *viewModel) toMini(x, y int) (float64, float64) {
	x0, y0 := m.miniOrigin()
	size := m.mini.Size()
	mx := (float64(x-x0-1) + 0.5) * size.Width / float64(miniCols-2)
	my := (float64(y-y0-1) + 0.5) * size.Height / float64(miniRows-2)
	return mx, my
}

func (m *viewModel) mouse(msg tea.MouseMsg) {
	now := m.now()
	px := (float64(msg.X) + 0.5) * cellWidth
	py := (float64(msg.Y) + 0.5) * cellHeight

	inMini := m.inMini(msg.X, msg.Y)
	if inMini && !m.overMini {
		m.mini.AutoHide().Enter()
	} else if !inMini && m.overMini {
		m.mini.AutoHide().Leave(now, m.mini.Dragging())
	}
	m.overMini = inMini

	if m.mini.Dragging() || (inMini && !m.dragging && m.moving == "") {
		m.miniMouse(msg, now)
		return
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.vc.ZoomAt(px, py, zoomStep)
	case msg.Button == tea.MouseButtonWheelDown:
		m.vc.ZoomAt(px, py, 1/zoomStep)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.vc.StopFling()
		if id, ok := m.personAt(px, py); ok {
			if id == m.selected {
				m.moving = id
				m.dragX, m.dragY = msg.X, msg.Y
				return
			}
			m.selectPerson(id)
			return
		}
		m.dragging = true
		m.dragX, m.dragY = msg.X, msg.Y
		m.vel.Reset()
		m.vel.Add(px, py, now)
	case msg.Action == tea.MouseActionMotion && m.moving != "":
		m.moveBy(msg.X-m.dragX, msg.Y-m.dragY)
		m.dragX, m.dragY = msg.X, msg.Y
	case msg.Action == tea.MouseActionRelease && m.moving != "":
		m.message = "moved " + displayName(m.persons[m.moving]) + " (r puts it back)"
		m.moving = ""
	case msg.Action == tea.MouseActionMotion && m.dragging:
		dx := float64(msg.X-m.dragX) * cellWidth
		dy := float64(msg.Y-m.dragY) * cellHeight
		m.vc.PanBy(dx, dy, true)
		m.dragX, m.dragY = msg.X, msg.Y
		m.vel.Add(px, py, now)
	case msg.Action == tea.MouseActionRelease && m.dragging:
		m.dragging = false
		m.vc.StartFling(m.vel.Velocity())
		m.vel.Reset()
	}
}

// moveBy drags the person being moved by a cell delta.
func (m *viewModel) moveBy(cols, rows int) {
	if cols == 0 && rows == 0 {
		return
	}
	pos, ok := m.layout.Position(m.moving)
	if !ok {
		m.moving = ""
		return
	}
	s := m.vc.Current().Scale
	m.overrides.Set(m.moving, pos.X+float64(cols)*cellWidth/s, pos.Y+float64(rows)*cellHeight/s)
	m.relayout()
}

func (m *viewModel) miniMouse(msg tea.MouseMsg, now time.Time) {
	mx, my := m.toMini(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if !m.mini.PointerDown(mx, my) {
			m.mini.Click(mx, my, now)
		}
	case tea.MouseActionMotion:
		m.mini.PointerMove(mx, my)
	case tea.MouseActionRelease:
		m.mini.PointerUp()
	}
}

// personAt returns the visible person whose card covers screen pixel
// (px, py).
func (m *viewModel) personAt(px, py float64) (string, bool) {
	wx, wy := m.vc.Current().ToWorld(px, py)
	for _, id := range m.layout.Order {
		p := m.layout.Positions[id]
		if wx >= p.X && wx <= p.X+m.layout.NodeWidth && wy >= p.Y && wy <= p.Y+m.layout.NodeHeight {
			return id, true
		}
	}
	return "", false
}

// =============================================================================
// View
// =============================================================================

func (m *viewModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}
	cv := newCanvas(m.width, max(m.height-statusRows, 1))
	t := m.vc.Current()

	for _, prim := range connector.Build(m.layout, nil, m.selected, connector.WithoutSpecialRelations()) {
		m.drawPrimitive(cv, t, prim)
	}
	for _, id := range m.layout.Order {
		m.drawPerson(cv, t, id)
	}
	if m.mini.AutoHide().Expanded(m.now()) || m.overMini {
		m.drawMini(cv)
	} else {
		x0, _ := m.miniOrigin()
		cv.text(x0+miniCols-3, 0, "[m]", 3, classMiniFrame)
	}

	return cv.String() + "\n" + m.status(t)
}

func toCell(t viewport.Transform, wx, wy float64) (int, int) {
	sx, sy := t.ToScreen(wx, wy)
	return int(math.Floor(sx / cellWidth)), int(math.Floor(sy / cellHeight))
}

func (m *viewModel) drawPrimitive(cv *canvas, t viewport.Transform, p connector.Primitive) {
	x0, y0 := toCell(t, p.X1, p.Y1)
	x1, y1 := toCell(t, p.X2, p.Y2)
	switch {
	case p.Shape == connector.ShapeRect:
		cx, cy := toCell(t, (p.X1+p.X2)/2, (p.Y1+p.Y2)/2)
		cv.set(cx, cy, '◆', classMarker)
	case y0 == y1:
		cv.hline(x0, x1, y0, classLine)
	case x0 == x1:
		cv.vline(x0, y0, y1, classLine)
	}
}

func (m *viewModel) drawPerson(cv *canvas, t viewport.Transform, id string) {
	pos := m.layout.Positions[id]
	p := m.persons[id]
	x0, y0 := toCell(t, pos.X, pos.Y)
	x1, y1 := toCell(t, pos.X+m.layout.NodeWidth, pos.Y+m.layout.NodeHeight)
	x1--
	y1--

	cl := classPerson
	switch {
	case id == m.selected:
		cl = classSelected
	case m.filter.IsCollapsed(id) && m.filter.DescendantCount(id) > 0:
		cl = classCollapsed
	case p.IsUnknown:
		cl = classUnknown
	}

	label := displayName(p)
	badge := ""
	if m.filter.IsCollapsed(id) {
		if n := m.filter.DescendantCount(id); n > 0 {
			badge = fmt.Sprintf("+%d", n)
		}
	}

	w, h := x1-x0+1, y1-y0+1
	if w >= 4 && h >= 3 {
		cv.fill(x0, y0, x1, y1)
		cv.box(x0, y0, x1, y1, cl)
		cv.text(x0+1, y0+1, label, w-2, cl)
		if badge != "" {
			by := min(y0+2, y1-1)
			if by == y0+1 {
				by = y1
			}
			cv.text(x1-textWidth(badge), by, badge, textWidth(badge), classCollapsed)
		}
		return
	}

	if badge != "" {
		label += badge
	}
	n := max(w, 1)
	cx := x0 + w/2 - min(textWidth(label), n)/2
	cv.text(cx, y0+h/2, label, n, cl)
}

func (m *viewModel) drawMini(cv *canvas) {
	x0, y0 := m.miniOrigin()
	x1, y1 := x0+miniCols-1, y0+miniRows-1
	cv.fill(x0, y0, x1, y1)
	cv.box(x0, y0, x1, y1, classMiniFrame)

	proj, ok := m.mini.Projection()
	if !ok {
		return
	}
	size := m.mini.Size()
	cell := func(mx, my float64) (int, int) {
		return x0 + 1 + int(math.Floor(mx/size.Width*float64(miniCols-2))),
			y0 + 1 + int(math.Floor(my/size.Height*float64(miniRows-2)))
	}
	inside := func(x, y int) bool { return x > x0 && x < x1 && y > y0 && y < y1 }

	for _, id := range m.layout.Order {
		pos := m.layout.Positions[id]
		x, y := cell(proj.ToMinimap(pos.CenterX, pos.CenterY))
		if !inside(x, y) {
			continue
		}
		switch {
		case id == m.selected:
			cv.set(x, y, '●', classSelected)
		case m.filter.IsCollapsed(id) && m.filter.DescendantCount(id) > 0:
			cv.set(x, y, '◎', classCollapsed)
		default:
			cv.set(x, y, '•', classMiniPerson)
		}
	}

	if r, ok := m.mini.ViewportRect(); ok {
		rx0, ry0 := cell(r.X, r.Y)
		rx1, ry1 := cell(r.X+r.W, r.Y+r.H)
		for x := max(rx0, x0+1); x <= min(rx1, x1-1); x++ {
			if inside(x, ry0) {
				cv.set(x, ry0, '┄', classMiniView)
			}
			if inside(x, ry1) {
				cv.set(x, ry1, '┄', classMiniView)
			}
		}
		for y := max(ry0, y0+1); y <= min(ry1, y1-1); y++ {
			if inside(rx0, y) {
				cv.set(rx0, y, '┆', classMiniView)
			}
			if inside(rx1, y) {
				cv.set(rx1, y, '┆', classMiniView)
			}
		}
	}

	for _, p := range m.mini.Pings() {
		if x, y := cell(p.X, p.Y); inside(x, y) {
			cv.set(x, y, '✦', classPing)
		}
	}
}

func (m *viewModel) status(t viewport.Transform) string {
	parts := []string{
		StyleTitle.Render(m.tree.HouseName),
		fmt.Sprintf("%d/%d persons", len(m.layout.Order), len(m.tree.Persons)),
		fmt.Sprintf("%d%%", int(math.Round(t.Scale*100))),
	}
	if n := len(m.opts.Collapsed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d collapsed", n))
	}
	if m.selected != "" {
		p := m.persons[m.selected]
		sel := displayName(p)
		if p.Title != "" {
			sel += ", " + p.Title
		}
		parts = append(parts, StyleHighlight.Render(sel))
	}
	line1 := strings.Join(parts, StyleDim.Render(" · "))

	var line2 string
	switch {
	case m.searching:
		line2 = m.prompt.View()
		if hits := search.Find(m.tree.Persons, m.prompt.Value(), search.DefaultLimit); len(hits) > 0 {
			names := make([]string, len(hits))
			for i, h := range hits {
				names[i] = displayName(h)
			}
			line2 += "  " + StyleDim.Render(strings.Join(names, ", "))
		}
	case m.message != "":
		line2 = StyleWarning.Render(m.message)
	default:
		line2 = StyleDim.Render("arrows pan · +/- zoom · tab select · enter collapse · drag selected to move · / search · f fit · m minimap · q quit")
	}
	return line1 + "\n" + line2
}

func displayName(p family.Person) string {
	switch {
	case p.IsUnknown:
		return "?"
	case p.Name != "":
		return p.Name
	default:
		return p.ID
	}
}
