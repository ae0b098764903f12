package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nconklindev/bronze/internal/types"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

type state int

const (
	stateProcessing state = iota
	stateComplete
	stateError
)

// RunFunc performs the batch conversion, reporting progress on the channel.
type RunFunc func(ctx context.Context, progressChan chan<- float64) (*types.BatchResult, error)

type Model struct {
	state        state
	inputDir     string
	outputDir    string
	run          RunFunc
	ctx          context.Context
	cancel       context.CancelFunc
	result       *types.BatchResult
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan conversionResultMsg
}

type conversionResultMsg struct {
	result *types.BatchResult
	err    error
}

type conversionCompleteMsg struct {
	result *types.BatchResult
	err    error
}

type progressMsg float64

type waitForProgressMsg struct{}

func InitialModel(inputDir, outputDir string, run RunFunc) Model {
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:        stateProcessing,
		inputDir:     inputDir,
		outputDir:    outputDir,
		run:          run,
		ctx:          ctx,
		cancel:       cancel,
		progress:     progress.New(progress.WithGradient("#FF8C42", "#FF9F5A")),
		progressChan: make(chan float64, 100),
		resultChan:   make(chan conversionResultMsg, 1),
	}
}

// Result returns the finished batch and its error once the program exits.
func (m Model) Result() (*types.BatchResult, error) {
	return m.result, m.err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startConversion(), m.progress.Init())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		width := msg.Width - 10
		if width < 20 {
			width = 20
		}
		m.progress.Width = width

		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateProcessing:
			switch msg.String() {
			case "ctrl+c", "q":
				m.cancel()
				return m, nil
			}

		case stateComplete, stateError:
			return m, tea.Quit
		}

	case conversionCompleteMsg:
		m.cancel()
		m.result = msg.result
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	return m, nil
}

func (m Model) startConversion() tea.Cmd {
	// Capture channels for the goroutine
	progressChan := m.progressChan
	resultChan := m.resultChan
	run := m.run
	ctx := m.ctx

	return func() tea.Msg {
		go func() {
			result, err := run(ctx, progressChan)

			// Send result
			resultChan <- conversionResultMsg{result: result, err: err}

			// Close channels
			close(progressChan)
			close(resultChan)
		}()

		return waitForProgressMsg{}
	}
}

func waitForProgress(progressChan chan float64, resultChan chan conversionResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			// Progress channel closed, check result
			res, ok := <-resultChan
			if ok {
				return conversionCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Converting workbooks..."))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s → %s", m.inputDir, m.outputDir)))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to stop after the current file"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Conversion Complete!"))
	s.WriteString("\n\n")

	if m.result == nil || len(m.result.Results)+len(m.result.Skipped) == 0 {
		s.WriteString(SubtitleStyle.Render(fmt.Sprintf("No .xlsx files found in %s", m.inputDir)))
		s.WriteString("\n")
	} else {
		for _, r := range m.result.Results {
			line := fmt.Sprintf("%s → %s  (%d rows, from %d)",
				filepath.Base(r.InputFile), truncatePath(r.OutputFile, m.width), r.RowsProcessed, r.StartYear)
			s.WriteString(SuccessStyle.Render(line))
			s.WriteString("\n")
			if r.TotalMismatches > 0 {
				s.WriteString(WarningStyle.Render(fmt.Sprintf("  %d yearly totals disagree with their months", r.TotalMismatches)))
				s.WriteString("\n")
			}
		}
		for _, skipped := range m.result.Skipped {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("✗ skipped %s", filepath.Base(skipped))))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}

// truncatePath shortens long paths from the left so they fit the terminal.
func truncatePath(path string, width int) string {
	maxPathLen := width - 40 // Leave room for the input name and counts
	if maxPathLen < 30 {
		maxPathLen = 30
	}
	if len(path) > maxPathLen {
		return "..." + path[len(path)-maxPathLen+3:]
	}
	return path
}
