// Package tui is the interactive dashboard: assemble a run configuration
// (beam, distribution, lattice) and export it as a runnable driver script.
package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/EZoni/impactx/internal/beam"
	"github.com/EZoni/impactx/internal/config"
	"github.com/EZoni/impactx/internal/export"
	"github.com/EZoni/impactx/internal/lattice"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

type state int

const (
	stateMenu state = iota
	stateBeam
	stateDistKind
	stateDistParams
	stateLattice
	stateElemKind
	stateElemParams
	stateExport
)

var menuEntries = []struct {
	label string
	desc  string
}{
	{"beam", "reference particle and bunch"},
	{"distribution", "initial phase-space distribution"},
	{"lattice", "beamline element sequence"},
	{"export", "preview and save the driver script"},
}

// field is one editable parameter: the raw text as entered plus the error
// messages its validation produced. An empty error list marks it valid.
type field struct {
	name     string
	input    string
	errs     []string
	isString bool
	required bool
}

func (f *field) validate() {
	f.errs = nil
	if strings.TrimSpace(f.input) == "" {
		// Empty means unset; optional fields are simply left out of the
		// export, required ones are flagged.
		if f.required {
			f.errs = append(f.errs, "required")
		}
		return
	}
	if f.isString {
		return
	}
	if _, err := beam.ParseFloat(f.input); err != nil {
		f.errs = append(f.errs, "must be a float")
	}
}

// element is a lattice entry under construction. The name and nslice
// rows live in fields alongside the physical parameters so the shared
// field editor covers them too.
type element struct {
	kind   lattice.Kind
	fields []field
}

func (e element) fieldValue(name string) string {
	for _, f := range e.fields {
		if f.name == name {
			return f.input
		}
	}
	return ""
}

type model struct {
	state  state
	cursor int

	beamFields []field

	distKind  beam.Kind
	distTwiss bool
	distParms []field

	elements   []element
	elemCursor int

	editing bool
	editBuf string

	script     string
	exportErr  error
	savedTo    string
	exportPath string

	width  int
	height int
}

// NewDashboard seeds the dashboard from a config (a preset or a loaded
// file), so the interactive flow starts from a runnable baseline.
func NewDashboard(cfg *config.Config, exportPath string) *model {
	m := &model{
		state:      stateMenu,
		exportPath: exportPath,
	}
	m.beamFields = []field{
		{name: "charge_qe", input: beam.FormatFloat(cfg.Beam.ChargeQe), required: true},
		{name: "mass_MeV", input: beam.FormatFloat(cfg.Beam.MassMeV), required: true},
		{name: "kin_energy_MeV", input: beam.FormatFloat(cfg.Beam.KinEnergyMeV), required: true},
		{name: "bunch_charge_C", input: beam.FormatFloat(cfg.Beam.BunchChargeC), required: true},
		{name: "npart", input: strconv.Itoa(cfg.Beam.NPart), required: true},
	}

	m.distKind = beam.Kind(cfg.Distribution.Kind)
	if m.distKind == "" {
		m.distKind = beam.Waterbag
	}
	m.distTwiss = cfg.Distribution.Style == string(beam.StyleTwiss)
	m.rebuildDistParams(cfg.Distribution.Parameters)

	for _, ec := range cfg.Lattice {
		m.elements = append(m.elements, elementFromConfig(ec))
	}
	return m
}

func elementFromConfig(ec config.ElementConfig) element {
	e := element{kind: lattice.Kind(ec.Kind)}

	nameField := field{
		name:     "name",
		input:    ec.Name,
		isString: true,
		required: e.kind == lattice.BeamMonitor,
	}
	nameField.validate()
	e.fields = append(e.fields, nameField)

	known, _ := lattice.KnownParams(e.kind)
	given := map[string]string{}
	for _, p := range ec.Parameters {
		given[p.Name] = p.Value
	}
	for _, name := range known {
		f := field{name: name, isString: isStringParam(e.kind, name)}
		if v, ok := given[name]; ok {
			f.input = v
		} else if !f.isString {
			f.input = "0.0"
		}
		f.validate()
		e.fields = append(e.fields, f)
	}

	if lattice.Thick(e.kind) {
		f := field{name: "nslice"}
		if ec.NSlice > 0 {
			f.input = strconv.Itoa(ec.NSlice)
		}
		f.validate()
		e.fields = append(e.fields, f)
	}
	return e
}

func isStringParam(kind lattice.Kind, name string) bool {
	switch kind {
	case lattice.Aperture:
		return name == "shape"
	case lattice.BeamMonitor:
		return name == "backend" || name == "encoding"
	}
	return false
}

func (m *model) rebuildDistParams(seed []config.Param) {
	style := beam.StyleQuadraticForm
	if m.distTwiss {
		style = beam.StyleTwiss
	}
	names, err := beam.RequiredParams(m.distKind, style)
	if err != nil {
		names = nil
	}
	given := map[string]string{}
	for _, p := range seed {
		given[p.Name] = p.Value
	}
	m.distParms = m.distParms[:0]
	for _, name := range names {
		f := field{name: name, input: "0.0", required: true}
		if v, ok := given[name]; ok {
			f.input = v
		}
		f.validate()
		m.distParms = append(m.distParms, f)
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.editKey(msg), nil
	}

	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateBeam:
		m2 := m.fieldListKey(msg, m.beamFields, stateMenu)
		return m2, nil
	case stateDistKind:
		return m.distKindKey(msg), nil
	case stateDistParams:
		m2 := m.fieldListKey(msg, m.distParms, stateDistKind)
		return m2, nil
	case stateLattice:
		return m.latticeKey(msg), nil
	case stateElemKind:
		return m.elemKindKey(msg), nil
	case stateElemParams:
		return m.elemParamsKey(msg), nil
	case stateExport:
		return m.exportKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuEntries)-1 {
			m.cursor++
		}
	case "enter", " ":
		switch menuEntries[m.cursor].label {
		case "beam":
			m.state = stateBeam
		case "distribution":
			m.state = stateDistKind
		case "lattice":
			m.state = stateLattice
			m.elemCursor = 0
		case "export":
			m.renderScript()
			m.state = stateExport
		}
		m.cursor = 0
	}
	return m, nil
}

// fieldListKey is the shared editor for a flat field list (beam settings,
// distribution parameters). The fields slice is aliased by the caller, so
// edits land in the right place.
func (m model) fieldListKey(msg tea.KeyMsg, fields []field, back state) model {
	switch msg.String() {
	case "q", "escape":
		m.state = back
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(fields)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(fields) > 0 {
			m.editing = true
			m.editBuf = fields[m.cursor].input
		}
	}
	return m
}

func (m model) editKey(msg tea.KeyMsg) model {
	target := m.editTarget()
	if target == nil {
		m.editing = false
		return m
	}
	switch msg.String() {
	case "enter":
		target.input = m.editBuf
		target.validate()
		m.editing = false
		m.editBuf = ""
	case "escape":
		m.editing = false
		m.editBuf = ""
	case "backspace":
		if len(m.editBuf) > 0 {
			m.editBuf = m.editBuf[:len(m.editBuf)-1]
		}
	default:
		s := msg.String()
		if len(s) == 1 {
			m.editBuf += s
		}
	}
	return m
}

func (m *model) editTarget() *field {
	switch m.state {
	case stateBeam:
		if m.cursor < len(m.beamFields) {
			return &m.beamFields[m.cursor]
		}
	case stateDistParams:
		if m.cursor < len(m.distParms) {
			return &m.distParms[m.cursor]
		}
	case stateElemParams:
		if m.elemCursor < len(m.elements) {
			e := &m.elements[m.elemCursor]
			if m.cursor < len(e.fields) {
				return &e.fields[m.cursor]
			}
		}
	}
	return nil
}

func (m model) distKindKey(msg tea.KeyMsg) model {
	kinds := beam.Kinds()
	switch msg.String() {
	case "q", "escape":
		m.state = stateMenu
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(kinds)-1 {
			m.cursor++
		}
	case "t":
		m.distTwiss = !m.distTwiss
		m.rebuildDistParams(nil)
	case "enter", " ":
		m.distKind = kinds[m.cursor]
		m.rebuildDistParams(nil)
		m.state = stateDistParams
		m.cursor = 0
	}
	return m
}

func (m model) latticeKey(msg tea.KeyMsg) model {
	switch msg.String() {
	case "q", "escape":
		m.state = stateMenu
		m.cursor = 0
	case "up", "k":
		if m.elemCursor > 0 {
			m.elemCursor--
		}
	case "down", "j":
		if m.elemCursor < len(m.elements)-1 {
			m.elemCursor++
		}
	case "K":
		if m.elemCursor > 0 {
			i := m.elemCursor
			m.elements[i-1], m.elements[i] = m.elements[i], m.elements[i-1]
			m.elemCursor--
		}
	case "J":
		if m.elemCursor < len(m.elements)-1 {
			i := m.elemCursor
			m.elements[i], m.elements[i+1] = m.elements[i+1], m.elements[i]
			m.elemCursor++
		}
	case "a":
		m.state = stateElemKind
		m.cursor = 0
	case "d":
		if len(m.elements) > 0 {
			m.elements = append(m.elements[:m.elemCursor], m.elements[m.elemCursor+1:]...)
			if m.elemCursor >= len(m.elements) && m.elemCursor > 0 {
				m.elemCursor--
			}
		}
	case "enter", " ":
		if len(m.elements) > 0 {
			m.state = stateElemParams
			m.cursor = 0
		}
	}
	return m
}

func (m model) elemKindKey(msg tea.KeyMsg) model {
	kinds := lattice.Kinds()
	switch msg.String() {
	case "q", "escape":
		m.state = stateLattice
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(kinds)-1 {
			m.cursor++
		}
	case "enter", " ":
		kind := kinds[m.cursor]
		ec := config.ElementConfig{Kind: string(kind)}
		if kind == lattice.BeamMonitor {
			ec.Name = "monitor"
			ec.Parameters = []config.Param{{Name: "backend", Value: "h5"}}
		}
		m.elements = append(m.elements, elementFromConfig(ec))
		m.elemCursor = len(m.elements) - 1
		m.state = stateElemParams
		m.cursor = 0
	}
	return m
}

func (m model) elemParamsKey(msg tea.KeyMsg) model {
	if m.elemCursor >= len(m.elements) {
		m.state = stateLattice
		return m
	}
	e := &m.elements[m.elemCursor]
	switch msg.String() {
	case "q", "escape":
		m.state = stateLattice
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(e.fields)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(e.fields) > 0 {
			m.editing = true
			m.editBuf = e.fields[m.cursor].input
		}
	}
	return m
}

func (m model) exportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "escape":
		m.state = stateMenu
		m.cursor = 0
		m.savedTo = ""
	case "s":
		if m.exportErr == nil && m.script != "" {
			if err := os.WriteFile(m.exportPath, []byte(m.script), 0644); err != nil {
				m.exportErr = err
			} else {
				m.savedTo = m.exportPath
			}
		}
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// Snapshot assembles the immutable config the exporter reads. Invalid
// distribution parameters are dropped, matching the record filter.
func (m *model) Snapshot() (*config.Config, error) {
	cfg := config.DefaultConfig()

	get := func(fields []field, name string) (float64, error) {
		for _, f := range fields {
			if f.name == name {
				v, err := beam.ParseFloat(f.input)
				if err != nil {
					return 0, fmt.Errorf("%s: %w", name, err)
				}
				return v.Float(), nil
			}
		}
		return 0, fmt.Errorf("%s: missing", name)
	}

	var err error
	if cfg.Beam.ChargeQe, err = get(m.beamFields, "charge_qe"); err != nil {
		return nil, err
	}
	if cfg.Beam.MassMeV, err = get(m.beamFields, "mass_MeV"); err != nil {
		return nil, err
	}
	if cfg.Beam.KinEnergyMeV, err = get(m.beamFields, "kin_energy_MeV"); err != nil {
		return nil, err
	}
	if cfg.Beam.BunchChargeC, err = get(m.beamFields, "bunch_charge_C"); err != nil {
		return nil, err
	}
	npart, err := get(m.beamFields, "npart")
	if err != nil {
		return nil, err
	}
	cfg.Beam.NPart = int(npart)

	records := make([]beam.Record, len(m.distParms))
	for i, f := range m.distParms {
		records[i] = beam.Record{Name: f.name, DefaultValue: f.input, ErrorMessages: f.errs}
	}
	params, err := beam.ConvertRecords(records)
	if err != nil {
		return nil, err
	}
	cfg.Distribution = config.DistributionConfig{Kind: string(m.distKind)}
	if m.distTwiss {
		cfg.Distribution.Style = string(beam.StyleTwiss)
	}
	for _, p := range params {
		cfg.Distribution.Parameters = append(cfg.Distribution.Parameters,
			config.Param{Name: p.Name, Value: p.Value.Raw()})
	}

	for _, e := range m.elements {
		ec := config.ElementConfig{Kind: string(e.kind)}
		for _, f := range e.fields {
			if len(f.errs) > 0 || strings.TrimSpace(f.input) == "" {
				continue
			}
			switch f.name {
			case "name":
				ec.Name = f.input
			case "nslice":
				if n, err := strconv.Atoi(f.input); err == nil {
					ec.NSlice = n
				}
			default:
				ec.Parameters = append(ec.Parameters, config.Param{Name: f.name, Value: f.input})
			}
		}
		cfg.Lattice = append(cfg.Lattice, ec)
	}

	return cfg, nil
}

func (m *model) renderScript() {
	m.savedTo = ""
	cfg, err := m.Snapshot()
	if err != nil {
		m.exportErr = err
		m.script = ""
		return
	}
	script, err := export.Script(cfg)
	m.script = script
	m.exportErr = err
}

// fieldErrors collects every invalid field across the dashboard, so the
// export view can show the complete list rather than the first problem.
func (m *model) fieldErrors() []string {
	var out []string
	add := func(scope string, fields []field) {
		for _, f := range fields {
			for _, e := range f.errs {
				out = append(out, fmt.Sprintf("%s.%s: %s", scope, f.name, e))
			}
		}
	}
	add("beam", m.beamFields)
	add("distribution", m.distParms)
	for i, e := range m.elements {
		add(fmt.Sprintf("lattice[%d]", i), e.fields)
	}
	return out
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateBeam:
		return m.viewFields("beam", m.beamFields, "↑↓ select  enter edit  esc back")
	case stateDistKind:
		return m.viewDistKind()
	case stateDistParams:
		title := fmt.Sprintf("%s parameters", m.distKind)
		if m.distTwiss {
			title += "  (twiss)"
		}
		return m.viewFields(title, m.distParms, "↑↓ select  enter edit  esc back")
	case stateLattice:
		return m.viewLattice()
	case stateElemKind:
		return m.viewElemKind()
	case stateElemParams:
		return m.viewElemParams()
	case stateExport:
		return m.viewExport()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("i m p a c t x") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, entry := range menuEntries {
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-14s", entry.label)) + dim.Render(entry.desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-14s", entry.label)) + dimmer.Render(entry.desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter open   q quit") + "\n")

	return b.String()
}

func (m model) viewFields(title string, fields []field, help string) string {
	var b strings.Builder

	b.WriteString("\n      " + cyan.Render(title) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 34)) + "\n\n")

	for i, f := range fields {
		val := fmt.Sprintf("%16s", f.input)
		if m.editing && i == m.cursor {
			val = fmt.Sprintf("%16s", m.editBuf+"▋")
		}
		mark := "  "
		if len(f.errs) > 0 {
			mark = red.Render("! ")
		}
		if i == m.cursor {
			b.WriteString("    " + mark + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-16s", f.name)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("    " + mark + "  " + dim.Render(fmt.Sprintf("%-16s", f.name)) + dim.Render(val) + "\n")
		}
		if len(f.errs) > 0 && i == m.cursor {
			b.WriteString("          " + red.Render(strings.Join(f.errs, "; ")) + "\n")
		}
	}

	b.WriteString("\n" + dim.Render("      "+help) + "\n")
	return b.String()
}

func (m model) viewDistKind() string {
	var b strings.Builder

	style := "quadratic form"
	if m.distTwiss {
		style = "twiss"
	}
	b.WriteString("\n      " + cyan.Render("distribution") + "  " + dim.Render("input: "+style) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 34)) + "\n\n")

	for i, kind := range beam.Kinds() {
		marker := "  "
		if kind == m.distKind {
			marker = green.Render("● ")
		}
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + marker + white.Render(string(kind)) + "\n")
		} else {
			b.WriteString("        " + marker + dim.Render(string(kind)) + "\n")
		}
	}

	b.WriteString("\n" + dim.Render("      ↑↓ select  enter choose  t toggle twiss  esc back") + "\n")
	return b.String()
}

func (m model) viewLattice() string {
	var b strings.Builder

	b.WriteString("\n      " + cyan.Render("lattice") + "  " + dim.Render(fmt.Sprintf("%d elements", len(m.elements))) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 34)) + "\n\n")

	if len(m.elements) == 0 {
		b.WriteString("        " + dim.Render("empty - press a to add an element") + "\n")
	}
	for i, e := range m.elements {
		label := string(e.kind)
		if name := e.fieldValue("name"); name != "" {
			label += " " + dim.Render("("+name+")")
		}
		if i == m.elemCursor {
			b.WriteString(fmt.Sprintf("      %s%2d  %s\n", cyan.Render("▸ "), i+1, white.Render(label)))
		} else {
			b.WriteString(fmt.Sprintf("        %2d  %s\n", i+1, dim.Render(label)))
		}
	}

	b.WriteString("\n" + dim.Render("      ↑↓ select  a add  d delete  J/K move  enter edit  esc back") + "\n")
	return b.String()
}

func (m model) viewElemKind() string {
	var b strings.Builder

	b.WriteString("\n      " + cyan.Render("add element") + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 34)) + "\n\n")

	for i, kind := range lattice.Kinds() {
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(string(kind)) + "\n")
		} else {
			b.WriteString("        " + dim.Render(string(kind)) + "\n")
		}
	}

	b.WriteString("\n" + dim.Render("      ↑↓ select  enter add  esc back") + "\n")
	return b.String()
}

func (m model) viewElemParams() string {
	if m.elemCursor >= len(m.elements) {
		return ""
	}
	e := m.elements[m.elemCursor]
	title := fmt.Sprintf("%s parameters", e.kind)
	return m.viewFields(title, e.fields, "↑↓ select  enter edit  esc back")
}

func (m model) viewExport() string {
	var b strings.Builder

	b.WriteString("\n      " + cyan.Render("export") + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 34)) + "\n\n")

	if errs := m.fieldErrors(); len(errs) > 0 {
		b.WriteString("      " + red.Render(fmt.Sprintf("%d invalid fields (dropped from export):", len(errs))) + "\n")
		for _, e := range errs {
			b.WriteString("        " + red.Render(e) + "\n")
		}
		b.WriteString("\n")
	}

	if m.exportErr != nil {
		b.WriteString("      " + red.Render(m.exportErr.Error()) + "\n")
	} else {
		for _, line := range strings.Split(m.script, "\n") {
			b.WriteString("      " + dim.Render(line) + "\n")
		}
	}

	if m.savedTo != "" {
		b.WriteString("\n      " + green.Render("saved to "+m.savedTo) + "\n")
	}

	b.WriteString("\n" + dim.Render("      s save  esc back") + "\n")
	return b.String()
}

// Run launches the dashboard.
func Run(cfg *config.Config, exportPath string) error {
	p := tea.NewProgram(NewDashboard(cfg, exportPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
