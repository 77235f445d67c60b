package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/clinica/dashboard/internal/controller"
	"github.com/clinica/dashboard/internal/page"
	"github.com/clinica/dashboard/internal/platform/apiclient"
	"github.com/clinica/dashboard/internal/resource"
)

var errorColor = color.New(color.FgRed, color.Bold)

// assignment is one --set name=value pair.
type assignment struct {
	Name  string
	Value string
}

func parseAssignments(raw []string) ([]assignment, error) {
	out := make([]assignment, 0, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("--set %q: expected name=value", kv)
		}
		out = append(out, assignment{Name: name, Value: value})
	}
	return out, nil
}

func (a *app) redirect(path string) {
	fmt.Fprintf(a.stderr, "Sesión no iniciada. Redirigiendo a %s (use \"clinic-dashboard login\")\n", path)
}

func (a *app) showError(msg string) {
	if msg != "" {
		errorColor.Fprintln(a.stderr, msg)
	}
}

// withPage mounts the page of the named resource and hands it to fn. The
// page's error slot is printed afterwards; an error from fn exits non-zero.
func (a *app) withPage(ctx context.Context, name string, fn func(p *page.Page) error) error {
	desc, ok := resource.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown resource %q (one of %s)", name, strings.Join(resource.Names(), ", "))
	}

	store, err := a.openSession()
	if err != nil {
		return err
	}
	defer store.Close()

	client := apiclient.New(a.cfg.APIURL, store,
		apiclient.WithLogger(a.logger),
		apiclient.WithTimeout(a.cfg.RequestTimeout))
	p := page.New(desc, client,
		page.WithLogger(a.logger),
		page.WithLoginPath(a.cfg.LoginPath),
		page.WithNavigator(controller.NavigatorFunc(a.redirect)))

	if err := p.Mount(ctx); err != nil {
		if !errors.Is(err, controller.ErrUnauthenticated) {
			a.showError(p.Error())
		}
		return errReported
	}

	opErr := fn(p)
	a.showError(p.Error())
	switch {
	case opErr == nil:
		return nil
	case errors.Is(opErr, controller.ErrUnsupported):
		return fmt.Errorf("%s: operation not offered by this page", name)
	case p.Controller.Err() != "":
		return errReported
	default:
		return opErr
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <resource>",
		Short: "List the records of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPage(cmd.Context(), args[0], func(p *page.Page) error {
				renderTable(a.stdout, p.Desc, p.Controller.Snapshot().Records)
				return nil
			})
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <resource> <id>",
		Short: "Show one record in detail",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPage(cmd.Context(), args[0], func(p *page.Page) error {
				if err := p.Controller.ViewDetails(cmd.Context(), args[1]); err != nil {
					return err
				}
				renderRecord(a.stdout, p.Desc, p.Controller.Snapshot().Dialog.Record)
				return nil
			})
		},
	}
}

func (a *app) createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <resource>",
		Short: "Create a record from --set name=value pairs",
		Long: "Create a record from --set name=value pairs. List fields take\n" +
			"name.index.key, e.g. --set medicamentos.0.id=<id> --set medicamentos.0.dosis=500mg.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sets, _ := cmd.Flags().GetStringArray("set")
			assignments, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			return a.withPage(cmd.Context(), args[0], func(p *page.Page) error {
				if err := p.Controller.StartCreate(); err != nil {
					return err
				}
				return a.submit(cmd.Context(), p, assignments)
			})
		},
	}
	cmd.Flags().StringArray("set", nil, "Field assignment name=value (repeatable)")
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <resource> <id>",
		Short: "Update a record with --set name=value pairs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sets, _ := cmd.Flags().GetStringArray("set")
			assignments, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			return a.withPage(cmd.Context(), args[0], func(p *page.Page) error {
				rec, ok := findRecord(p.Controller.Snapshot().Records, args[1])
				if !ok {
					return fmt.Errorf("%s: no record with id %s", args[0], args[1])
				}
				if err := p.Controller.StartEdit(rec); err != nil {
					return err
				}
				return a.submit(cmd.Context(), p, assignments)
			})
		},
	}
	cmd.Flags().StringArray("set", nil, "Field assignment name=value (repeatable)")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPage(cmd.Context(), args[0], func(p *page.Page) error {
				if err := p.Controller.Remove(cmd.Context(), args[1]); err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, "Registro eliminado")
				renderTable(a.stdout, p.Desc, p.Controller.Snapshot().Records)
				return nil
			})
		},
	}
}

// submit applies the assignments to the open draft, saves it and renders the
// refreshed list.
func (a *app) submit(ctx context.Context, p *page.Page, assignments []assignment) error {
	for _, as := range assignments {
		if err := p.SetInput(as.Name, as.Value); err != nil {
			return err
		}
	}
	if err := p.Controller.Submit(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Registro guardado")
	renderTable(a.stdout, p.Desc, p.Controller.Snapshot().Records)
	return nil
}

func findRecord(records []resource.Record, id string) (resource.Record, bool) {
	for _, r := range records {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

func (a *app) menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Show the dashboard sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderMenu(a.stdout, resource.Menu())
			return nil
		},
	}
}
