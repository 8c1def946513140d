package main

import (
	"fmt"
	"io"
	"strings"

	"docdb-dashboard/internal/dashboard/domain/model"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var levelColors = map[string]*color.Color{
	"debug":   color.New(color.FgHiBlack),
	"info":    color.New(color.FgCyan),
	"success": color.New(color.FgGreen),
	"warning": color.New(color.FgYellow),
	"error":   color.New(color.FgRed, color.Bold),
}

// notifyMsg prints one coloured status line.
func notifyMsg(w io.Writer, level, msg string) {
	c, ok := levelColors[level]
	if !ok {
		c = levelColors["info"]
	}
	c.Fprintf(w, "[%s] ", strings.ToUpper(level))
	fmt.Fprintln(w, msg)
}

// startBar adds a counter bar to p.
func startBar(p *mpb.Progress, name string, total int64) *mpb.Bar {
	return p.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1}),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(), "done"),
		),
	)
}

// renderCollections writes the listing as a table.
func renderCollections(w io.Writer, collections []model.CollectionDescriptor) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Collection", "Documents", "Size (MB)"})

	var docs int64
	var size float64
	for _, c := range collections {
		t.AppendRow(table.Row{c.Name, c.DocumentCount, fmt.Sprintf("%.2f", c.SizeInMB)})
		docs += c.DocumentCount
		size += c.SizeInMB
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{fmt.Sprintf("%d collections", len(collections)), docs, fmt.Sprintf("%.2f", size)})

	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}
