// Package importer turns plain-text and CSV task lists into parsed tasks.
package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gongahkia/dueday/internal/dates"
	duerr "github.com/gongahkia/dueday/internal/errors"
	"github.com/gongahkia/dueday/internal/ics"
	"github.com/gongahkia/dueday/internal/model"
	"github.com/gongahkia/dueday/internal/nlp"
)

type Format string

const (
	FormatLines Format = "lines"
	FormatCSV   Format = "csv"
	FormatICS   Format = "ics"
)

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".ics", ".ical", ".ifb":
		return FormatICS
	}
	return FormatLines
}

// Entry is one imported task: the parse of its title plus the columns a CSV
// row may add.
type Entry struct {
	Parsed   model.ParsedTask
	Notes    string
	Category model.Category
	Line     int
}

// Task converts e into an unsaved task.
func (e Entry) Task() model.Task {
	return model.Task{
		Text:     e.Parsed.CleanedTitle,
		Notes:    e.Notes,
		Category: e.Category,
		DueDate:  e.Parsed.DueDate,
		Priority: e.Parsed.Priority,
		Rule:     e.Parsed.RecurrenceRule,
	}
}

type Importer struct {
	Parser *nlp.Parser
	Dates  *dates.AmbiguousDateParser
	Loc    *time.Location
	Ref    time.Time
	// Progress, when set, is called once per row read.
	Progress func()
}

func New(parser *nlp.Parser, locale string, loc *time.Location, ref time.Time) *Importer {
	if loc == nil {
		loc = time.UTC
	}
	return &Importer{Parser: parser, Dates: dates.NewAmbiguousDateParser(locale), Loc: loc, Ref: ref}
}

// File opens path and imports it as lines or CSV by extension.
func (im *Importer) File(ctx context.Context, path string) (*duerr.PartialResult[Entry], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch DetectFormat(path) {
	case FormatCSV:
		return im.CSV(ctx, f)
	case FormatICS:
		return nil, fmt.Errorf("%s is iCalendar; read it with the ics parser", path)
	}
	return im.Lines(ctx, f)
}

// Tasks reads any supported file into unsaved tasks. iCalendar files keep
// their own dates; lines and CSV rows go through the parser.
func (im *Importer) Tasks(ctx context.Context, path string) (*duerr.PartialResult[model.Task], error) {
	if DetectFormat(path) == FormatICS {
		result, err := ics.NewParser().ParseFile(ctx, path, im.Loc)
		if err != nil {
			return nil, err
		}
		for range result.Total {
			im.tick()
		}
		return result, nil
	}

	entries, err := im.File(ctx, path)
	if err != nil {
		return nil, err
	}
	return duerr.MapItems(entries, Entry.Task), nil
}

// Lines reads one free-text task per non-empty line. Lines starting with #
// are comments.
func (im *Importer) Lines(ctx context.Context, r io.Reader) (*duerr.PartialResult[Entry], error) {
	tr, enc, err := duerr.TranscodeToUTF8(r)
	if err != nil {
		return nil, fmt.Errorf("charset detection failed: %w", err)
	}
	result := duerr.NewPartialResult[Entry]()
	if enc != duerr.EncodingUTF8 {
		result.AddWarning("input transcoded from %s", enc)
	}

	scanner := bufio.NewScanner(tr)
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		im.tick()
		text = strings.TrimLeft(text, "-*• ")
		result.Add(Entry{Parsed: im.Parser.Parse(text, im.Loc, im.Ref), Line: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, &duerr.ParseError{File: "lines", Line: line + 1, Message: "read failed", Err: err}
	}
	return result, nil
}

// csvAliases maps the column names other task apps export to ours.
var csvAliases = map[string][]string{
	"title":    {"task", "name", "summary", "content"},
	"notes":    {"description", "note"},
	"category": {"list", "project"},
	"due":      {"due date", "due_date", "deadline"},
}

// CSV reads a header row with a title column and optional notes, category,
// priority and due columns. An explicit due or priority column overrides
// what the parser read from the title.
func (im *Importer) CSV(ctx context.Context, r io.Reader) (*duerr.PartialResult[Entry], error) {
	tr, enc, err := duerr.TranscodeToUTF8(r)
	if err != nil {
		return nil, fmt.Errorf("charset detection failed: %w", err)
	}
	parser, err := duerr.NewStreamingCSVParser(tr)
	if err != nil {
		return nil, err
	}
	for canonical, names := range csvAliases {
		parser.Alias(canonical, names...)
	}
	if !parser.HasColumn("title") {
		return nil, &duerr.ParseError{File: "csv", Line: 1, Message: "missing required column 'title'"}
	}

	result := duerr.NewPartialResult[Entry]()
	if enc != duerr.EncodingUTF8 {
		result.AddWarning("input transcoded from %s", enc)
	}
	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, line, err := parser.Next()
		if err == io.EOF {
			break
		}
		index++
		im.tick()
		if err != nil {
			result.AddError(index, fmt.Sprintf("line %d", line), "malformed row", err)
			continue
		}
		entry, err := im.csvEntry(row, line)
		if err != nil {
			result.AddError(index, fmt.Sprintf("line %d", line), err.Error(), err)
			continue
		}
		if dates.IsAmbiguous(row["due"]) {
			result.AddWarning("line %d: read ambiguous date %q as %s", line, row["due"], im.Dates.PreferredFormat)
		}
		result.Add(entry)
	}
	return result, nil
}

func (im *Importer) csvEntry(row map[string]string, line int) (Entry, error) {
	title := row["title"]
	if title == "" {
		return Entry{}, &duerr.ValidationError{Field: "title", Message: "must not be empty"}
	}
	e := Entry{Parsed: im.Parser.Parse(title, im.Loc, im.Ref), Notes: row["notes"], Line: line}

	category, err := model.ParseCategory(row["category"])
	if err != nil {
		return Entry{}, err
	}
	e.Category = category

	if v := row["priority"]; v != "" {
		p, err := model.ParsePriority(v)
		if err != nil {
			return Entry{}, err
		}
		e.Parsed.Priority = p
	}

	if v := row["due"]; v != "" {
		due, err := im.Dates.Parse(v, im.Loc)
		if err != nil {
			return Entry{}, &duerr.ValidationError{Field: "due", Message: fmt.Sprintf("unreadable date %q", v), Err: err}
		}
		e.Parsed.DueDate = &due
	}
	return e, nil
}

func (im *Importer) tick() {
	if im.Progress != nil {
		im.Progress()
	}
}
