package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rowbench/rowbench/internal/config"
	"github.com/rowbench/rowbench/internal/history"
	"github.com/rowbench/rowbench/internal/table"
)

const doctorTimeout = 10 * time.Second

// HealthCheck is a single doctor check result.
type HealthCheck struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	JSON bool
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration and warehouse end to end",
		Long: `Run the full chain a serve would need: configuration, warehouse
connection, table schema, id allocation, and the local write log. Each
check reports pass or fail; the command fails if any check does.`,
		Example: `  rowbench doctor

  # Machine-readable
  rowbench doctor --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")

	return cmd
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())

	ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
	defer cancel()

	checks := []HealthCheck{checkConfig(cfg)}

	// The downstream checks only make sense on a valid configuration.
	if checks[0].OK {
		svc := table.New(table.Config{
			Target:   cfg.Target,
			Table:    cfg.Table,
			IDColumn: cfg.IDColumn,
		}, logger)
		defer func() { _ = svc.Close() }()

		checks = append(checks,
			checkConnection(ctx, svc),
			checkSchema(ctx, svc),
			checkAllocation(ctx, svc),
		)
	}
	checks = append(checks, checkWriteLog(cfg))

	if opts.JSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(checks); err != nil {
			return err
		}
	} else {
		for _, c := range checks {
			status := "ok"
			if !c.OK {
				status = "FAIL"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-4s %-18s %s\n", status, c.Name, c.Detail)
		}
	}

	for _, c := range checks {
		if !c.OK {
			return fmt.Errorf("%d of %d checks failed", countFailed(checks), len(checks))
		}
	}
	return nil
}

func checkConfig(cfg *config.Config) HealthCheck {
	if err := cfg.Validate(); err != nil {
		return HealthCheck{Name: "configuration", Detail: err.Error()}
	}
	return HealthCheck{
		Name:   "configuration",
		OK:     true,
		Detail: fmt.Sprintf("%s table %q, id column %q", cfg.Target.Type, cfg.Table, cfg.IDColumn),
	}
}

func checkConnection(ctx context.Context, svc *table.Service) HealthCheck {
	a, err := svc.EnsureConnected(ctx)
	if err != nil {
		return HealthCheck{Name: "connection", Detail: err.Error()}
	}
	return HealthCheck{Name: "connection", OK: true, Detail: a.DialectName()}
}

func checkSchema(ctx context.Context, svc *table.Service) HealthCheck {
	schema, err := svc.Schema(ctx)
	if err != nil {
		return HealthCheck{Name: "schema", Detail: err.Error()}
	}
	hasID := false
	for _, c := range schema {
		if c.Name == svc.IDColumn() {
			hasID = true
			break
		}
	}
	if !hasID {
		return HealthCheck{
			Name:   "schema",
			Detail: fmt.Sprintf("table has no %q column", svc.IDColumn()),
		}
	}
	if len(schema) < 2 {
		return HealthCheck{Name: "schema", Detail: "table has no columns besides the id"}
	}
	return HealthCheck{
		Name:   "schema",
		OK:     true,
		Detail: fmt.Sprintf("%d columns", len(schema)),
	}
}

func checkAllocation(ctx context.Context, svc *table.Service) HealthCheck {
	id, err := svc.NextID(ctx)
	if err != nil {
		return HealthCheck{Name: "id allocation", Detail: err.Error()}
	}
	return HealthCheck{Name: "id allocation", OK: true, Detail: fmt.Sprintf("next id %d", id)}
}

func checkWriteLog(cfg *config.Config) HealthCheck {
	store := history.NewStore()
	if err := openWriteLog(store, cfg.History.Path); err != nil {
		return HealthCheck{Name: "write log", Detail: err.Error()}
	}
	_ = store.Close()
	return HealthCheck{Name: "write log", OK: true, Detail: cfg.History.Path}
}

func countFailed(checks []HealthCheck) int {
	n := 0
	for _, c := range checks {
		if !c.OK {
			n++
		}
	}
	return n
}
