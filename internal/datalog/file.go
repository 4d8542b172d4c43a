package datalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sweeney/grow-controller/internal/logic"
)

// DefaultPath is the reading log file name.
const DefaultPath = "log_file.csv"

// Header is the first row of the reading log.
var Header = []string{"date/time", "Temperature", "Relative humidity"}

// File is a tab-delimited reading log. It is truncated when opened.
type File struct {
	f *os.File
	w *csv.Writer
}

// OpenFile truncates path and writes the header row.
func OpenFile(path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	w := csv.NewWriter(f)
	w.Comma = '\t'

	lf := &File{f: f, w: w}
	if err := lf.write(Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return lf, nil
}

// Write appends one row for a READING event.
func (l *File) Write(_ context.Context, ev logic.Event) error {
	if ev.Type != logic.EventReading || ev.Reading == nil {
		return nil
	}
	return l.write([]string{
		ev.Timestamp.Format(TimestampLayout),
		formatFloat(ev.Reading.Temperature),
		formatFloat(ev.Reading.Humidity),
	})
}

func (l *File) write(row []string) error {
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

// Close flushes and closes the file.
func (l *File) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
