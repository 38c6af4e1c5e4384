package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"kanban_board/internal/board"
	"kanban_board/internal/domain"
)

// Header prints the identity line shown above every screen.
func Header(w io.Writer, name, initials string, isAdmin bool) {
	role := ""
	if isAdmin {
		role = "  [admin]"
	}
	fmt.Fprintf(w, "(%s) %s%s\n", initials, name, role)
}

// Board prints the four lanes in order. loc controls how creation times are shown.
func Board(w io.Writer, lanes []board.Lane, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, lane := range lanes {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s (%d)\n", lane.Label, len(lane.Tasks))
		if len(lane.Tasks) == 0 {
			fmt.Fprintln(tw, "  -")
			continue
		}
		for _, t := range lane.Tasks {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", ShortID(t.ID), oneLine(t.Title), Timestamp(t.CreatedAt.In(loc)))
		}
	}
	return tw.Flush()
}

// Task prints a single task card.
func Task(w io.Writer, t domain.Task, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	fmt.Fprintf(w, "%s  [%s]  %s  %s\n", ShortID(t.ID), t.Status.Label(), oneLine(t.Title), Timestamp(t.CreatedAt.In(loc)))
}

// oneLine keeps multi-line titles from breaking the columns.
func oneLine(title string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(title)
}
