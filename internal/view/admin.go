package view

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"kanban_board/internal/domain"
)

// Users prints the admin user table.
func Users(w io.Writer, users []domain.Profile, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tJOINED")
	for _, u := range users {
		role := "User"
		if u.IsAdmin {
			role = "Admin"
		}
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ShortID(u.ID), name, u.Email, role, Timestamp(u.CreatedAt.In(loc)))
	}
	return tw.Flush()
}

// Audit prints audit entries, newest first as received.
func Audit(w io.Writer, logs []domain.AuditLog, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tUSER\tACTION\tDETAILS")
	for _, l := range logs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", Timestamp(l.CreatedAt.In(loc)), ShortID(l.UserID), l.Action, details(l.Details))
	}
	return tw.Flush()
}

func details(d map[string]any) string {
	if len(d) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, d[k])
	}
	return strings.Join(parts, " ")
}
