package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttrow/pkg/chart"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command, an interactive row viewer.
func (c *CLI) browseCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "browse [chart]",
		Short: "Browse the rows and pills of a chart interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, _, err := c.loadLayout(cmd.Context(), args[0], &flags)
			if err != nil {
				return err
			}
			if len(l.Rows) == 0 {
				printInfo("Chart has no rows")
				return nil
			}
			p := tea.NewProgram(NewRowListModel(l), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// =============================================================================
// RowListModel - Interactive row browser
// =============================================================================

// RowListModel is the bubbletea model for browsing the rows of a layout.
// Enter opens the pills of the selected row; esc goes back.
type RowListModel struct {
	Layout chart.Layout
	Cursor int
	Height int
	Offset int
	Detail bool
}

// NewRowListModel creates a new row list model.
func NewRowListModel(l chart.Layout) RowListModel {
	return RowListModel{Layout: l, Height: 15}
}

func (m RowListModel) Init() tea.Cmd {
	return nil
}

func (m RowListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "backspace":
			if !m.Detail {
				return m, tea.Quit
			}
			m.Detail = false
		case "up", "k":
			if !m.Detail && m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if !m.Detail && m.Cursor < len(m.Layout.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Layout.Rows) > 0 {
				m.Detail = true
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m RowListModel) View() string {
	if m.Detail {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(layoutTitle(m.Layout)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ pills  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Layout.Rows) {
		end = len(m.Layout.Rows)
	}

	var rows [][]string
	for i := m.Offset; i < end; i++ {
		r := m.Layout.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strings.Repeat("  ", r.Depth) + r.Name,
			fmt.Sprint(r.Level),
			fmt.Sprint(len(r.Pills)),
			occupancy(r),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(listDimStyle).
		Headers("", "Row", "Levels", "Pills", "Slots").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if m.Offset+row == m.Cursor && col < 2 {
				return listSelectedStyle
			}
			if col == 2 || col == 3 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Layout.Rows))))
	return b.String()
}

func (m RowListModel) detailView() string {
	r := m.Layout.Rows[m.Cursor]

	var b strings.Builder
	b.WriteString(StyleTitle.Render(r.Name))
	if r.Grouped {
		b.WriteString(" " + listDimStyle.Render("(group)"))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	if len(r.Pills) == 0 {
		b.WriteString(listDimStyle.Render("  no pills in window"))
		b.WriteString("\n")
		return b.String()
	}

	for _, p := range r.Pills {
		b.WriteString(pillLine(p))
		b.WriteString("\n")
	}
	return b.String()
}

func pillLine(p chart.PillLayout) string {
	name := p.Name
	if p.Count > 1 {
		name = fmt.Sprintf("%d records", p.Count)
	}
	line := fmt.Sprintf("  L%d %-24s %s → %s  %s",
		p.Level, name, formatStamp(p.Start), formatStamp(p.Stop),
		listDimStyle.Render(fmt.Sprintf("%.1f%% +%.1f%%", p.LeftMarginPct, p.WidthPct)))
	if c := p.Consolidation; c != nil {
		value := fmt.Sprintf("%g/%g", c.Value, c.MaxValue)
		if c.Exceeded {
			value = StyleDanger.Render(value)
		} else {
			value = StyleSuccess.Render(value)
		}
		line += "  " + value
	}
	return line
}
