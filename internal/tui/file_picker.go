package tui

import (
	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gongahkia/dueday/internal/importer"
)

// importableTypes are the extensions the importer reads.
var importableTypes = []string{".txt", ".md", ".csv", ".ics", ".ical"}

// FilePickerMsg is sent when an importable file is chosen.
type FilePickerMsg struct {
	Path   string
	Format importer.Format
}

// FilePickerModel wraps the bubbles filepicker, limited to importable files.
type FilePickerModel struct {
	picker filepicker.Model
	note   string
}

// NewFilePickerModel starts in dir, or the working directory when dir is empty.
func NewFilePickerModel(dir string) FilePickerModel {
	if dir == "" {
		dir = "."
	}
	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.AllowedTypes = importableTypes
	fp.ShowHidden = false
	return FilePickerModel{picker: fp}
}

func (f FilePickerModel) Init() tea.Cmd {
	return f.picker.Init()
}

func (f FilePickerModel) Update(msg tea.Msg) (FilePickerModel, tea.Cmd) {
	var cmd tea.Cmd
	f.picker, cmd = f.picker.Update(msg)

	if ok, path := f.picker.DidSelectFile(msg); ok {
		f.note = ""
		format := importer.DetectFormat(path)
		return f, func() tea.Msg { return FilePickerMsg{Path: path, Format: format} }
	}
	if ok, path := f.picker.DidSelectDisabledFile(msg); ok {
		f.note = path + " is not a text, CSV or iCalendar file"
	}
	return f, cmd
}

func (f FilePickerModel) View() string {
	v := SubtitleStyle.Render("Select a task file (.txt, .csv, .ics):") + "\n" + f.picker.View()
	if f.note != "" {
		v += "\n" + WarningStyle.Render(f.note)
	}
	return v
}
