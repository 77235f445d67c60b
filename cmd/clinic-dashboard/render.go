package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/clinica/dashboard/internal/platform/auth"
	"github.com/clinica/dashboard/internal/platform/db"
	"github.com/clinica/dashboard/internal/resource"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// cell renders a field value for display; dates read dd/MM/yyyy.
func cell(d resource.Descriptor, field string, rec resource.Record) string {
	v := rec.String(field)
	if f, ok := d.Field(field); ok && f.Kind == resource.Date {
		v = resource.FormatDate(v)
	}
	return sanitizeCell(v)
}

func sanitizeCell(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}

func renderTable(w io.Writer, d resource.Descriptor, records []resource.Record) {
	fmt.Fprintln(w, d.Title)
	if len(records) == 0 {
		fmt.Fprintln(w, "(sin registros)")
		return
	}
	tw := newTabWriter(w)
	headers := []string{"ID"}
	for _, c := range d.Columns {
		headers = append(headers, c.Header)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, rec := range records {
		row := []string{sanitizeCell(rec.ID())}
		for _, c := range d.Columns {
			row = append(row, cell(d, c.Field, rec))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// renderRecord prints every field of rec as "Label: value". List fields
// print one indented line per entry.
func renderRecord(w io.Writer, d resource.Descriptor, rec resource.Record) {
	tw := newTabWriter(w)
	fmt.Fprintf(tw, "ID:\t%s\n", sanitizeCell(rec.ID()))
	for _, f := range d.Fields {
		if f.Kind == resource.Reference && f.Companion != "" {
			continue
		}
		if f.Kind == resource.Items {
			fmt.Fprintf(tw, "%s:\t\n", f.Label)
			for _, item := range rec.Items(f.Name) {
				fmt.Fprintf(tw, "  -\t%s\n", itemLine(f, item))
			}
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", f.Label, cell(d, f.Name, rec))
	}
	tw.Flush()
}

func itemLine(f resource.Field, item resource.Record) string {
	var parts []string
	for _, sub := range f.ItemFields {
		if sub.Kind == resource.Reference && sub.Companion != "" {
			continue
		}
		if v := item.String(sub.Name); v != "" {
			parts = append(parts, sub.Label+": "+sanitizeCell(v))
		}
	}
	return strings.Join(parts, ", ")
}

func renderMenu(w io.Writer, items []resource.MenuItem) {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "SECCIÓN\tDESCRIPCIÓN\tRECURSOS")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.Title, it.Description, strings.Join(it.Resources, ", "))
	}
	tw.Flush()
}

func renderClaims(w io.Writer, c *auth.Claims) {
	tw := newTabWriter(w)
	fmt.Fprintf(tw, "Usuario:\t%s\n", displayName(c))
	fmt.Fprintf(tw, "Sujeto:\t%s\n", c.Subject)
	if len(c.Roles) > 0 {
		fmt.Fprintf(tw, "Roles:\t%s\n", strings.Join(c.Roles, ", "))
	}
	if c.Issuer != "" {
		fmt.Fprintf(tw, "Emisor:\t%s\n", c.Issuer)
	}
	fmt.Fprintf(tw, "Vence:\t%s\n", expiry(c, time.Now()))
	tw.Flush()
}

func renderMigrations(w io.Writer, statuses []db.MigrationStatus) {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	for _, s := range statuses {
		status, appliedAt := "pending", ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Version, s.Name, status, appliedAt)
	}
	tw.Flush()
}
