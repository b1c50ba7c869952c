package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tomato/internal/model"
)

const (
	fieldWork = iota
	fieldShortBreak
	fieldLongBreak
	fieldCycle
	fieldSound
	fieldSoundEnabled
	fieldAutoBreaks
	fieldAutoWork
	fieldCount
)

var fieldPrompts = [fieldCount]string{
	"Work (min): ",
	"Short break (min): ",
	"Long break (min): ",
	"Sessions until long break: ",
	fmt.Sprintf("Sound (1-%d): ", model.SoundCount),
	"Sound on (y/n): ",
	"Auto-start breaks (y/n): ",
	"Auto-start work (y/n): ",
}

// settingsForm edits a copy of the settings; nothing is applied until the
// form parses and validates.
type settingsForm struct {
	inputs []textinput.Model
	index  int
	err    string
}

func newSettingsForm(s model.Settings) settingsForm {
	values := [fieldCount]string{
		strconv.Itoa(s.WorkDuration),
		strconv.Itoa(s.ShortBreakDuration),
		strconv.Itoa(s.LongBreakDuration),
		strconv.Itoa(s.SessionsUntilLongBreak),
		strings.TrimPrefix(s.SelectedSound, "sound"),
		yesNo(s.SoundEnabled),
		yesNo(s.AutoStartBreaks),
		yesNo(s.AutoStartWork),
	}
	f := settingsForm{inputs: make([]textinput.Model, fieldCount)}
	for i := range f.inputs {
		input := textinput.New()
		input.Prompt = fieldPrompts[i]
		input.CharLimit = 6
		input.SetValue(values[i])
		f.inputs[i] = input
	}
	return f
}

func (f *settingsForm) setWidth(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(6, width-len(f.inputs[i].Prompt)-2)
	}
}

func (f *settingsForm) focus(idx int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	if idx < 0 {
		idx = len(f.inputs) - 1
	}
	if idx >= len(f.inputs) {
		idx = 0
	}
	f.index = idx
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == idx {
			cmd = f.inputs[i].Focus()
			continue
		}
		f.inputs[i].Blur()
	}
	return cmd
}

func (f *settingsForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.index], cmd = f.inputs[f.index].Update(msg)
	return cmd
}

// parse reads the inputs on top of base. The result is not validated.
func (f settingsForm) parse(base model.Settings) (model.Settings, error) {
	out := base
	ints := []struct {
		field  int
		label  string
		target *int
	}{
		{fieldWork, "work duration", &out.WorkDuration},
		{fieldShortBreak, "short break duration", &out.ShortBreakDuration},
		{fieldLongBreak, "long break duration", &out.LongBreakDuration},
		{fieldCycle, "sessions until long break", &out.SessionsUntilLongBreak},
	}
	for _, in := range ints {
		raw := strings.TrimSpace(f.inputs[in.field].Value())
		v, err := strconv.Atoi(raw)
		if err != nil {
			return base, fmt.Errorf("%s must be a whole number", in.label)
		}
		*in.target = v
	}

	sound := strings.TrimPrefix(strings.TrimSpace(f.inputs[fieldSound].Value()), "sound")
	n, err := strconv.Atoi(sound)
	if err != nil {
		return base, fmt.Errorf("sound must be a number from 1 to %d", model.SoundCount)
	}
	out.SelectedSound = model.SoundID(n)

	bools := []struct {
		field  int
		label  string
		target *bool
	}{
		{fieldSoundEnabled, "sound on", &out.SoundEnabled},
		{fieldAutoBreaks, "auto-start breaks", &out.AutoStartBreaks},
		{fieldAutoWork, "auto-start work", &out.AutoStartWork},
	}
	for _, in := range bools {
		v, ok := parseYesNo(f.inputs[in.field].Value())
		if !ok {
			return base, fmt.Errorf("%s must be y or n", in.label)
		}
		*in.target = v
	}
	return out, nil
}

func (f settingsForm) view() string {
	lines := []string{titleStyle.Render("Settings"), mutedStyle.Render("enter: save  esc: cancel  tab: next field"), ""}
	for _, input := range f.inputs {
		lines = append(lines, input.View())
	}
	if f.err != "" {
		lines = append(lines, "", errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

// validationMessage returns the user-facing text of a settings error.
func validationMessage(err error) string {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

func yesNo(v bool) string {
	if v {
		return "y"
	}
	return "n"
}

func parseYesNo(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "on", "1":
		return true, true
	case "n", "no", "false", "off", "0":
		return false, true
	default:
		return false, false
	}
}
