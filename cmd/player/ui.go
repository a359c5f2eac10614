package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/quizforge/scorm-engine/internal/attempt"
	"github.com/quizforge/scorm-engine/internal/grading"
	"github.com/quizforge/scorm-engine/internal/models"
	"github.com/quizforge/scorm-engine/internal/results"
	"github.com/quizforge/scorm-engine/internal/variant"
)

// terminalUI renders attempt state to a terminal and translates typed
// commands into session events. All selections are 1-based display positions
// on the command line; the UI resolves them through the shuffle mapping
// before posting, so the machine only ever sees original indices.
type terminalUI struct {
	out     io.Writer
	session *attempt.Session

	mu   sync.Mutex
	view viewState
}

// viewState is the snapshot Render captures on the session goroutine so
// command parsing never touches the machine directly.
type viewState struct {
	phase     attempt.Phase
	question  *variant.DrawnQuestion
	index     int
	total     int
	confirmed bool
	submitted bool
	remaining time.Duration
	report    *results.Report
	rendered  bool
}

func newTerminalUI(out io.Writer, session *attempt.Session) *terminalUI {
	return &terminalUI{out: out, session: session}
}

func (ui *terminalUI) ShowWelcome(test *models.Test) {
	fmt.Fprintf(ui.out, "=== %s ===\n", test.Title)
	if test.StartPageContent != "" {
		fmt.Fprintln(ui.out, test.StartPageContent)
	} else if test.Description != "" {
		fmt.Fprintln(ui.out, test.Description)
	}
	if test.TimeLimitMinutes > 0 {
		fmt.Fprintf(ui.out, "Time limit: %d minutes\n", test.TimeLimitMinutes)
	}
	if test.MaxAttempts > 0 {
		fmt.Fprintf(ui.out, "Attempts allowed: %d\n", test.MaxAttempts)
	}
	fmt.Fprintln(ui.out, "Type 'start' to begin, 'help' for commands.")
}

func (ui *terminalUI) ShowNotice(err error) {
	fmt.Fprintf(ui.out, "! %s\n", err)
}

// Render runs on the session goroutine after every applied event.
func (ui *terminalUI) Render(m *attempt.Machine) {
	ui.mu.Lock()
	defer ui.mu.Unlock()

	prev := ui.view
	next := viewState{
		phase:     m.Phase(),
		total:     m.Len(),
		submitted: m.Submitted(),
		remaining: m.TimeRemaining(time.Now()),
		rendered:  true,
	}
	if cur, err := m.Current(); err == nil {
		next.question = cur
		next.index = m.Index()
		next.confirmed = m.Confirmed()
	}
	if report, err := m.Report(); err == nil {
		next.report = report
	}
	ui.view = next

	// Ticks arrive every second; repaint only on a state change.
	changed := !prev.rendered ||
		prev.phase != next.phase ||
		prev.index != next.index ||
		prev.confirmed != next.confirmed
	if !changed {
		return
	}

	if next.phase == attempt.PhaseQuestion && next.confirmed && !prev.confirmed {
		ui.renderReveal(m, next)
		return
	}

	switch next.phase {
	case attempt.PhaseQuestion:
		ui.renderQuestion(next)
	case attempt.PhaseResults:
		if next.report != nil {
			ui.renderReport(next.report)
		}
	case attempt.PhaseStart:
		fmt.Fprintln(ui.out, "Ready. Type 'start' to begin.")
	}
}

func (ui *terminalUI) renderQuestion(view viewState) {
	q := view.question.Question
	fmt.Fprintf(ui.out, "\n[%d/%d] %s (%d pt)\n", view.index+1, view.total, q.Prompt, q.Points)
	if q.MediaURL != "" {
		fmt.Fprintf(ui.out, "  media: %s\n", q.MediaURL)
	}

	switch q.Type {
	case models.SingleChoice:
		for pos, orig := range view.question.Shuffle.Options {
			fmt.Fprintf(ui.out, "  %d. %s\n", pos+1, q.Single.Options[orig])
		}
		fmt.Fprintln(ui.out, "Answer with: answer <option>")
	case models.MultipleChoice:
		for pos, orig := range view.question.Shuffle.Options {
			fmt.Fprintf(ui.out, "  %d. %s\n", pos+1, q.Multiple.Options[orig])
		}
		fmt.Fprintln(ui.out, "Answer with: answer <option,option,...>")
	case models.Matching:
		for pos, orig := range view.question.Shuffle.Left {
			fmt.Fprintf(ui.out, "  L%d. %s\n", pos+1, q.Matching.LeftItems[orig])
		}
		for pos, orig := range view.question.Shuffle.Right {
			fmt.Fprintf(ui.out, "  R%d. %s\n", pos+1, q.Matching.RightItems[orig])
		}
		fmt.Fprintln(ui.out, "Answer with: answer <left=right,left=right,...>")
	case models.Ranking:
		for pos, orig := range view.question.Shuffle.Options {
			fmt.Fprintf(ui.out, "  %d. %s\n", pos+1, q.Ranking.Items[orig])
		}
		fmt.Fprintln(ui.out, "Reorder with: answer <position,position,...>")
	}

	if view.remaining > 0 {
		fmt.Fprintf(ui.out, "Time remaining: %s\n", view.remaining.Round(time.Second))
	}
}

// renderReveal shows correctness and feedback once the learner confirms,
// before they move on.
func (ui *terminalUI) renderReveal(m *attempt.Machine, view viewState) {
	q := view.question.Question
	ratio := grading.Ratio(q, m.AnswerFor(q.ID))

	switch {
	case ratio == 1:
		fmt.Fprintln(ui.out, "Correct.")
	case ratio == 0:
		fmt.Fprintln(ui.out, "Incorrect.")
	default:
		fmt.Fprintf(ui.out, "Partially correct (%.0f%%).\n", ratio*100)
	}

	if fb := q.Feedback; fb != nil {
		switch fb.Mode {
		case models.FeedbackConditional:
			if ratio == 1 && fb.CorrectText != "" {
				fmt.Fprintln(ui.out, fb.CorrectText)
			} else if ratio < 1 && fb.IncorrectText != "" {
				fmt.Fprintln(ui.out, fb.IncorrectText)
			}
		default:
			if fb.Text != "" {
				fmt.Fprintln(ui.out, fb.Text)
			}
		}
	}
	fmt.Fprintln(ui.out, "Type 'next' to continue or 'submit' on the last question.")
}

func (ui *terminalUI) renderReport(report *results.Report) {
	fmt.Fprintf(ui.out, "\n=== Results: %s ===\n", report.Title)
	fmt.Fprintf(ui.out, "Score: %.1f / %d (%.1f%%)\n",
		report.EarnedPoints, report.PossiblePoints, report.Percent)
	fmt.Fprintf(ui.out, "Fully correct: %d\n", report.FullyCorrect)
	if report.TimeExpired {
		fmt.Fprintln(ui.out, "Time limit reached: attempt was submitted automatically.")
	}
	for _, topic := range report.Topics {
		status := ""
		if topic.Passed != nil {
			if *topic.Passed {
				status = " [passed]"
			} else {
				status = " [failed]"
			}
		}
		fmt.Fprintf(ui.out, "  %s: %.1f%%%s\n", topic.Name, topic.Percent, status)
		if topic.Passed != nil && !*topic.Passed {
			if topic.Feedback != "" {
				fmt.Fprintf(ui.out, "    %s\n", topic.Feedback)
			}
			for _, course := range topic.Courses {
				fmt.Fprintf(ui.out, "    recommended: %s (%s)\n", course.Title, course.URL)
			}
		}
	}
	if report.Passed {
		fmt.Fprintln(ui.out, "Result: PASSED")
	} else {
		fmt.Fprintln(ui.out, "Result: FAILED")
	}
	fmt.Fprintln(ui.out, "Type 'restart' to return to the start page or 'quit' to exit.")
}

// HandleCommand parses one input line. Returns true when the player should
// exit.
func (ui *terminalUI) HandleCommand(line string) bool {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return false
	}
	command := strings.ToLower(fields[0])

	switch command {
	case "quit", "exit", "q":
		return true
	case "help", "h":
		ui.printHelp()
	case "start":
		ui.session.Post(attempt.StartEvent{})
	case "confirm", "c":
		ui.session.Post(attempt.ConfirmEvent{})
	case "next", "n":
		ui.session.Post(attempt.NextEvent{})
	case "submit", "s":
		ui.session.Post(attempt.SubmitEvent{})
	case "restart":
		ui.session.Post(attempt.RestartEvent{})
	case "time", "t":
		ui.mu.Lock()
		remaining := ui.view.remaining
		ui.mu.Unlock()
		if remaining > 0 {
			fmt.Fprintf(ui.out, "Time remaining: %s\n", remaining.Round(time.Second))
		} else {
			fmt.Fprintln(ui.out, "No time limit.")
		}
	case "answer", "a":
		ui.handleAnswer(strings.Join(fields[1:], ""))
	default:
		fmt.Fprintf(ui.out, "Unknown command %q. Type 'help' for commands.\n", command)
	}
	return false
}

func (ui *terminalUI) handleAnswer(arg string) {
	ui.mu.Lock()
	question := ui.view.question
	phase := ui.view.phase
	ui.mu.Unlock()

	if phase != attempt.PhaseQuestion || question == nil {
		fmt.Fprintln(ui.out, "No question on display.")
		return
	}

	answer, err := parseAnswer(question, arg)
	if err != nil {
		fmt.Fprintf(ui.out, "! %s\n", err)
		return
	}
	ui.session.Post(attempt.AnswerEvent{Answer: *answer})
}

func (ui *terminalUI) printHelp() {
	fmt.Fprintln(ui.out, "Commands:")
	fmt.Fprintln(ui.out, "  start            begin a new attempt")
	fmt.Fprintln(ui.out, "  answer <input>   answer the current question")
	fmt.Fprintln(ui.out, "  confirm          lock the answer and reveal correctness")
	fmt.Fprintln(ui.out, "  next             advance to the next question")
	fmt.Fprintln(ui.out, "  submit           finish the attempt from the last question")
	fmt.Fprintln(ui.out, "  restart          return to the start page after results")
	fmt.Fprintln(ui.out, "  time             show remaining time")
	fmt.Fprintln(ui.out, "  quit             exit the player")
}

// parseAnswer converts a 1-based display-space input into an original-space
// answer using the question's shuffle mapping.
func parseAnswer(drawn *variant.DrawnQuestion, arg string) (*models.Answer, error) {
	q := drawn.Question
	switch q.Type {
	case models.SingleChoice:
		orig, err := resolveDisplay(arg, drawn.Shuffle.Options)
		if err != nil {
			return nil, err
		}
		return &models.Answer{Selected: &orig}, nil

	case models.MultipleChoice:
		parts := splitArg(arg)
		if len(parts) == 0 {
			return nil, fmt.Errorf("select at least one option")
		}
		selections := make([]int, 0, len(parts))
		for _, part := range parts {
			orig, err := resolveDisplay(part, drawn.Shuffle.Options)
			if err != nil {
				return nil, err
			}
			selections = append(selections, orig)
		}
		return &models.Answer{Selections: selections}, nil

	case models.Matching:
		parts := splitArg(arg)
		if len(parts) == 0 {
			return nil, fmt.Errorf("provide pairs as left=right")
		}
		matches := make(map[int]int, len(parts))
		for _, part := range parts {
			leftRaw, rightRaw, found := strings.Cut(part, "=")
			if !found {
				return nil, fmt.Errorf("invalid pair %q, expected left=right", part)
			}
			left, err := resolveDisplay(strings.TrimPrefix(strings.ToUpper(leftRaw), "L"), drawn.Shuffle.Left)
			if err != nil {
				return nil, err
			}
			right, err := resolveDisplay(strings.TrimPrefix(strings.ToUpper(rightRaw), "R"), drawn.Shuffle.Right)
			if err != nil {
				return nil, err
			}
			matches[left] = right
		}
		return &models.Answer{Matches: matches}, nil

	case models.Ranking:
		parts := splitArg(arg)
		if len(parts) != len(q.Ranking.Items) {
			return nil, fmt.Errorf("rank all %d items", len(q.Ranking.Items))
		}
		order := make([]int, 0, len(parts))
		seen := make(map[int]bool, len(parts))
		for _, part := range parts {
			orig, err := resolveDisplay(part, drawn.Shuffle.Options)
			if err != nil {
				return nil, err
			}
			if seen[orig] {
				return nil, fmt.Errorf("position %s listed twice", part)
			}
			seen[orig] = true
			order = append(order, orig)
		}
		return &models.Answer{Order: order}, nil
	}
	return nil, fmt.Errorf("unsupported question type %s", q.Type)
}

func splitArg(arg string) []string {
	if arg == "" {
		return nil
	}
	parts := strings.Split(arg, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// resolveDisplay maps a 1-based display position to its original index.
func resolveDisplay(raw string, mapping []int) (int, error) {
	pos, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid position %q", raw)
	}
	if pos < 1 || pos > len(mapping) {
		return 0, fmt.Errorf("position %d out of range 1..%d", pos, len(mapping))
	}
	return mapping[pos-1], nil
}
