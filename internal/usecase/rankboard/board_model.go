package rankboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"techrank/internal/bootstrap/logging"
	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/usecase/performance"
)

const maxActionLines = 6

// Service is the part of the engine the board drives.
type Service interface {
	GetCandidates(ctx context.Context, query performance.CandidateQuery) ([]domain.Candidate, error)
	NotifyAssigned(ctx context.Context, notice performance.AssignmentNotice) (domain.Notification, bool)
}

type Options struct {
	CompanyID       string
	BranchID        string
	CategoryID      string
	SortBy          string
	AvailableOnly   bool
	ServiceID       string
	RefreshInterval time.Duration
}

var sortCycle = []domain.SortStrategy{domain.SortByWorkload, domain.SortByRating, domain.SortByPoints}

type boardModel struct {
	ctx             context.Context
	service         Service
	companyID       string
	branchID        string
	categoryID      string
	serviceID       string
	sortBy          domain.SortStrategy
	availableOnly   bool
	refreshInterval time.Duration

	candidates    []domain.Candidate
	selectedIndex int
	loadedAt      time.Time
	status        string
	actions       []string
}

type candidatesLoadedMsg struct {
	sortBy     domain.SortStrategy
	candidates []domain.Candidate
	err        error
}

type notifiedMsg struct {
	userID string
	ok     bool
}

type tickMsg struct{}

func NewBoardModel(ctx context.Context, service Service, options Options) (tea.Model, error) {
	sortBy, err := domain.ParseSortStrategy(options.SortBy)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(options.CompanyID) == "" || strings.TrimSpace(options.BranchID) == "" {
		return nil, errs.Validationf("company and branch are required")
	}
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &boardModel{
		ctx:             logging.WithComponent(ctx, "rankboard"),
		service:         service,
		companyID:       strings.TrimSpace(options.CompanyID),
		branchID:        strings.TrimSpace(options.BranchID),
		categoryID:      strings.TrimSpace(options.CategoryID),
		serviceID:       strings.TrimSpace(options.ServiceID),
		sortBy:          sortBy,
		availableOnly:   options.AvailableOnly,
		refreshInterval: interval,
		status:          "loading",
	}, nil
}

func (m *boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCandidatesCmd(), m.tickCmd())
}

func (m *boardModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadCandidatesCmd(), m.tickCmd())
	case candidatesLoadedMsg:
		if msg.sortBy != m.sortBy {
			// A reload for the previous strategy finished late.
			return m, nil
		}
		if msg.err != nil {
			m.status = describeLoadError(msg.err)
			return m, nil
		}
		selected, hadSelection := m.selected()
		m.candidates = msg.candidates
		m.loadedAt = time.Now()
		m.selectedIndex = 0
		if hadSelection {
			for i, c := range m.candidates {
				if c.Profile.UserID == selected.Profile.UserID {
					m.selectedIndex = i
					break
				}
			}
		}
		if len(m.candidates) == 0 {
			m.status = "no technicians match"
		} else {
			m.status = fmt.Sprintf("%d technicians ranked by %s", len(m.candidates), m.sortBy)
		}
		return m, nil
	case notifiedMsg:
		result := "notified"
		if !msg.ok {
			result = "notification failed"
		}
		m.status = fmt.Sprintf("%s: %s", msg.userID, result)
		m.appendAction(fmt.Sprintf("%s assign %s -> %s: %s", time.Now().Format("15:04:05"), m.serviceID, msg.userID, result))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadCandidatesCmd()
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.candidates)-1 {
				m.selectedIndex++
			}
			return m, nil
		case "s":
			m.sortBy = nextStrategy(m.sortBy)
			m.status = "sorting by " + string(m.sortBy)
			return m, m.loadCandidatesCmd()
		case "a":
			m.availableOnly = !m.availableOnly
			return m, m.loadCandidatesCmd()
		case "enter":
			return m, m.assignCmd()
		}
	}
	return m, nil
}

func (m *boardModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))
	fullStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Technician Ranking"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"company=%s branch=%s category=%s sort=%s available_only=%t refresh=%s",
		m.companyID,
		m.branchID,
		firstNonEmpty(m.categoryID, "any"),
		m.sortBy,
		m.availableOnly,
		m.refreshInterval,
	)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Candidates"))
	builder.WriteString("\n")
	if len(m.candidates) == 0 {
		builder.WriteString(dimStyle.Render("- none"))
		builder.WriteString("\n")
	}
	for index, c := range m.candidates {
		line := fmt.Sprintf(
			"%2d. %-14s %-10s jobs=%d/%d load=%3d%% rating=%s points=%d",
			index+1,
			c.Profile.UserID,
			levelCode(c.Level),
			c.OpenJobs,
			c.Profile.MaxConcurrentJobs,
			c.WorkloadPercent,
			formatRating(c.Profile.AverageRating),
			c.Profile.TotalPoints,
		)
		switch {
		case index == m.selectedIndex:
			builder.WriteString(selectedStyle.Render("> " + line))
		case !c.CanAcceptMore:
			builder.WriteString(fullStyle.Render("  " + line))
		default:
			builder.WriteString("  " + line)
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	builder.WriteString(sectionStyle.Render("Skills"))
	builder.WriteString("\n")
	if selected, ok := m.selected(); ok && len(selected.Skills) > 0 {
		for _, skill := range selected.Skills {
			verified := ""
			if skill.IsVerified {
				verified = " (verified)"
			}
			builder.WriteString(fmt.Sprintf("- %s %s%s\n", skill.ServiceCategoryID, skill.Proficiency, verified))
		}
	} else {
		builder.WriteString(dimStyle.Render("- none"))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n")
	for _, line := range m.actions {
		builder.WriteString("- " + line + "\n")
	}
	builder.WriteString("\n")

	keys := "Keys: up/k down/j move  s sort  a available  g refresh  q quit"
	if m.serviceID != "" {
		keys += "  enter assign " + m.serviceID
	}
	builder.WriteString(dimStyle.Render(keys))
	return builder.String()
}

func (m *boardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *boardModel) loadCandidatesCmd() tea.Cmd {
	query := performance.CandidateQuery{
		CompanyID:     m.companyID,
		BranchID:      m.branchID,
		CategoryID:    m.categoryID,
		AvailableOnly: m.availableOnly,
		SortBy:        string(m.sortBy),
	}
	sortBy := m.sortBy
	return func() tea.Msg {
		candidates, err := m.service.GetCandidates(m.ctx, query)
		return candidatesLoadedMsg{sortBy: sortBy, candidates: candidates, err: err}
	}
}

func (m *boardModel) assignCmd() tea.Cmd {
	selected, ok := m.selected()
	if !ok {
		return nil
	}
	if m.serviceID == "" {
		m.status = "start the board with --service to assign"
		return nil
	}
	userID := selected.Profile.UserID
	notice := performance.AssignmentNotice{
		UserID:    userID,
		CompanyID: m.companyID,
		ServiceID: m.serviceID,
		Data:      map[string]any{"source": "rankboard", "sortBy": string(m.sortBy)},
	}
	return func() tea.Msg {
		_, ok := m.service.NotifyAssigned(m.ctx, notice)
		if !ok {
			logging.Warn(m.ctx, "assignment notification not stored", slog.String("user_id", userID))
		}
		return notifiedMsg{userID: userID, ok: ok}
	}
}

func (m *boardModel) selected() (domain.Candidate, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.candidates) {
		return domain.Candidate{}, false
	}
	return m.candidates[m.selectedIndex], true
}

func (m *boardModel) appendAction(line string) {
	m.actions = append(m.actions, line)
	if len(m.actions) > maxActionLines {
		m.actions = m.actions[len(m.actions)-maxActionLines:]
	}
}

func nextStrategy(current domain.SortStrategy) domain.SortStrategy {
	for i, s := range sortCycle {
		if s == current {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return sortCycle[0]
}

func describeLoadError(err error) string {
	switch errs.KindOf(err) {
	case errs.KindDependencyTimeout:
		return "job registry unavailable, ranking withheld: " + err.Error()
	case errs.KindNotFound:
		return "branch not found: " + err.Error()
	default:
		return "refresh failed: " + err.Error()
	}
}

func levelCode(level *domain.Level) string {
	if level == nil {
		return "-"
	}
	return level.Code
}

func formatRating(rating *float64) string {
	if rating == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *rating)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if normalized := strings.TrimSpace(value); normalized != "" {
			return normalized
		}
	}
	return ""
}
