package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errTokenSetupCancelled = errors.New("token setup cancelled")

type tokenWizardStep int

const (
	tokenWizardIntro tokenWizardStep = iota
	tokenWizardInput
)

type tokenWizardModel struct {
	svc       tokenService
	step      tokenWizardStep
	token     string
	input     textinput.Model
	message   string
	err       error
	cancelled bool

	openURL func(string) error
}

func newTokenWizardModel(svc tokenService) tokenWizardModel {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = svc.Placeholder
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.CharLimit = 512

	return tokenWizardModel{
		svc:     svc,
		step:    tokenWizardIntro,
		input:   input,
		openURL: openBrowserURL,
	}
}

func runTokenWizard(svc tokenService) (string, error) {
	program := tea.NewProgram(newTokenWizardModel(svc))

	finalModel, err := program.Run()
	if err != nil {
		return "", err
	}

	wizard, ok := finalModel.(tokenWizardModel)
	if !ok {
		return "", fmt.Errorf("unexpected wizard model type %T", finalModel)
	}
	if wizard.cancelled {
		return "", errTokenSetupCancelled
	}
	if strings.TrimSpace(wizard.token) == "" {
		return "", fmt.Errorf("%s token is required", svc.Name)
	}

	return wizard.token, nil
}

func (m tokenWizardModel) Init() tea.Cmd {
	return nil
}

func (m tokenWizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.step {
	case tokenWizardIntro:
		switch key.String() {
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "o":
			if err := m.openURL(m.svc.DocsURL); err != nil {
				m.err = err
			} else {
				m.message = "Opened token page in your browser."
				m.err = nil
			}
			return m, nil
		case "enter":
			m.step = tokenWizardInput
			m.err = nil
			m.message = ""
			m.input.Focus()
			return m, nil
		}
	case tokenWizardInput:
		switch key.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "esc":
			m.step = tokenWizardIntro
			m.err = nil
			m.message = ""
			m.input.Blur()
			return m, nil
		case "enter":
			token := strings.TrimSpace(m.input.Value())
			if token == "" {
				m.err = fmt.Errorf("token cannot be empty")
				return m, nil
			}
			m.token = token
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m tokenWizardModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.svc.Title))
	b.WriteString("\n\n")

	switch m.step {
	case tokenWizardIntro:
		for _, line := range m.svc.Intro {
			b.WriteString(line + "\n")
		}
		b.WriteString("Open: " + m.svc.DocsURL + "\n\n")
		b.WriteString("Enter: continue    o: open in browser    q/esc: cancel\n")
	case tokenWizardInput:
		b.WriteString(fmt.Sprintf("Paste your %s token:\n", m.svc.Name))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(m.svc.Expected + "\n")
		b.WriteString("Enter: save    esc: back    ctrl+c: cancel\n")
	}

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(m.message))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("Error: " + m.err.Error()))
	}

	return b.String()
}
