package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/bootstrap"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/config"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/interfaces/http/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (a *app) batchCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "batch", Short: "Inspect and transition payment batches"}

	show := &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show a batch with its guards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("batch", args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
				batch, err := rt.Services.Batches.GetBatch(ctx, id)
				if err != nil {
					return nil, err
				}
				guards, err := rt.Services.Batches.GetGuards(ctx, id)
				if err != nil {
					return nil, err
				}
				return map[string]any{"batch": batch, "guards": guards}, nil
			})
		},
	}

	ledger := &cobra.Command{
		Use:   "allocations <batch-id>",
		Short: "List a batch's allocations and reversals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("batch", args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
				return rt.Services.Batches.ListAllocations(ctx, id)
			})
		},
	}

	cmd.AddCommand(
		show,
		ledger,
		a.batchTransition("approve", "Post a draft batch", func(ctx context.Context, s *appsettlement.BatchLifecycleService, id uuid.UUID, _, actor string) (any, error) {
			return s.Approve(ctx, id, actor)
		}, false),
		a.batchTransition("process", "Finalize a posted batch", func(ctx context.Context, s *appsettlement.BatchLifecycleService, id uuid.UUID, _, actor string) (any, error) {
			return s.ProcessPayments(ctx, id, actor)
		}, false),
		a.batchTransition("void", "Void a draft or posted batch", func(ctx context.Context, s *appsettlement.BatchLifecycleService, id uuid.UUID, reason, actor string) (any, error) {
			return s.Void(ctx, id, reason, actor)
		}, true),
		a.batchTransition("rollback", "Void a batch and reverse its allocations", func(ctx context.Context, s *appsettlement.BatchLifecycleService, id uuid.UUID, reason, actor string) (any, error) {
			return s.Rollback(ctx, id, reason, actor)
		}, true),
		a.batchTransition("delete", "Delete a draft batch", func(ctx context.Context, s *appsettlement.BatchLifecycleService, id uuid.UUID, reason, actor string) (any, error) {
			return s.DeleteDraft(ctx, id, reason, actor)
		}, true),
	)
	return cmd
}

type batchOp func(ctx context.Context, s *appsettlement.BatchLifecycleService, id uuid.UUID, reason, actor string) (any, error)

func (a *app) batchTransition(name, short string, op batchOp, needsReason bool) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   name + " <batch-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("batch", args[0])
			if err != nil {
				return err
			}
			if needsReason {
				if err := requireReason(reason); err != nil {
					return err
				}
			}
			return a.mutate(cmd, func(ctx context.Context, rt *bootstrap.Runtime, actor string) (any, error) {
				return op(ctx, rt.Services.Batches, id, reason, actor)
			})
		},
	}
	if needsReason {
		cmd.Flags().StringVar(&reason, "reason", "", "reason recorded with the change")
	}
	return cmd
}

// distributionFlags collects the selection shared by preview and create
type distributionFlags struct {
	distType   string
	method     string
	batchIDs   []string
	deductions []string
	mode       string
	policy     string
	date       string
}

func (f *distributionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.distType, "type", "BY_GROWER", "BY_GROWER, BY_BATCH or ALL_PENDING")
	cmd.Flags().StringVar(&f.method, "method", "CHEQUE", "CHEQUE or ELECTRONIC")
	cmd.Flags().StringSliceVar(&f.batchIDs, "batch", nil, "batch id to include (repeatable)")
	cmd.Flags().StringArrayVar(&f.deductions, "deduct", nil, "advance deduction as <grower-id>=<amount> (repeatable)")
	cmd.Flags().StringVar(&f.mode, "deduction-mode", "", "MANUAL or FULL_RECOVERY")
	cmd.Flags().StringVar(&f.policy, "over-deduction", "", "REJECT or CAP (default from configuration)")
	cmd.Flags().StringVar(&f.date, "date", "", "distribution date, YYYY-MM-DD (default today)")
}

func (f *distributionFlags) request() (appsettlement.DistributionRequest, error) {
	req := appsettlement.DistributionRequest{
		DistributionType:    strings.ToUpper(f.distType),
		PaymentMethod:       strings.ToUpper(f.method),
		DeductionMode:       strings.ToUpper(f.mode),
		OverDeductionPolicy: strings.ToUpper(f.policy),
	}
	for _, raw := range f.batchIDs {
		id, err := parseID("batch", raw)
		if err != nil {
			return req, err
		}
		req.BatchIDs = append(req.BatchIDs, id)
	}
	for _, raw := range f.deductions {
		growerRaw, amountRaw, ok := strings.Cut(raw, "=")
		if !ok {
			return req, fmt.Errorf("deduction %q must be <grower-id>=<amount>", raw)
		}
		growerID, err := parseID("grower", growerRaw)
		if err != nil {
			return req, err
		}
		amount, err := decimal.NewFromString(amountRaw)
		if err != nil {
			return req, fmt.Errorf("invalid deduction amount %q", amountRaw)
		}
		req.Deductions = append(req.Deductions, appsettlement.GrowerDeductionInput{GrowerID: growerID, Amount: amount})
	}
	if f.date != "" {
		d, err := time.Parse(time.DateOnly, f.date)
		if err != nil {
			return req, fmt.Errorf("invalid date %q, want YYYY-MM-DD", f.date)
		}
		req.DistributionDate = &d
	}
	return req, nil
}

func (a *app) distributionCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "distribution", Short: "Preview, create and void distributions"}

	var previewFlags distributionFlags
	preview := &cobra.Command{
		Use:   "preview",
		Short: "Show what a distribution would pay without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := previewFlags.request()
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
				return rt.Services.Distributions.Preview(ctx, req)
			})
		},
	}
	previewFlags.register(preview)

	var createFlags distributionFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a distribution and generate its payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := createFlags.request()
			if err != nil {
				return err
			}
			return a.mutate(cmd, func(ctx context.Context, rt *bootstrap.Runtime, actor string) (any, error) {
				return rt.Services.Distributions.CreateAndGenerate(ctx, req, actor)
			})
		},
	}
	createFlags.register(create)

	resume := &cobra.Command{
		Use:   "resume <distribution-id>",
		Short: "Generate the payments still pending or failed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("distribution", args[0])
			if err != nil {
				return err
			}
			return a.mutate(cmd, func(ctx context.Context, rt *bootstrap.Runtime, actor string) (any, error) {
				return rt.Services.Distributions.ResumeGeneration(ctx, id, actor)
			})
		},
	}

	var reason string
	void := &cobra.Command{
		Use:   "void <distribution-id>",
		Short: "Void a distribution and release its batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("distribution", args[0])
			if err != nil {
				return err
			}
			if err := requireReason(reason); err != nil {
				return err
			}
			return a.mutate(cmd, func(ctx context.Context, rt *bootstrap.Runtime, actor string) (any, error) {
				return rt.Services.Distributions.VoidDistribution(ctx, id, reason, actor)
			})
		},
	}
	void.Flags().StringVar(&reason, "reason", "", "reason recorded with the void")

	show := &cobra.Command{
		Use:   "show <distribution-id>",
		Short: "Show a distribution with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("distribution", args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
				return rt.Services.Distributions.GetDistribution(ctx, id)
			})
		},
	}

	cmd.AddCommand(preview, create, resume, void, show)
	return cmd
}

func (a *app) chequeCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "cheque", Short: "Void and reissue cheques"}

	var (
		voidReason        string
		reverseAccounting bool
	)
	void := &cobra.Command{
		Use:   "void <cheque-id>",
		Short: "Void a cheque",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("cheque", args[0])
			if err != nil {
				return err
			}
			if err := requireReason(voidReason); err != nil {
				return err
			}
			return a.mutate(cmd, func(ctx context.Context, rt *bootstrap.Runtime, actor string) (any, error) {
				return rt.Services.Cheques.VoidCheque(ctx, id, voidReason, reverseAccounting, actor)
			})
		},
	}
	void.Flags().StringVar(&voidReason, "reason", "", "reason recorded with the void")
	void.Flags().BoolVar(&reverseAccounting, "reverse-accounting", false, "also reverse the allocations and advance deductions behind the cheque")

	var reissueReason string
	reissue := &cobra.Command{
		Use:   "reissue <cheque-id>",
		Short: "Void a cheque and issue a replacement for the same amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("cheque", args[0])
			if err != nil {
				return err
			}
			if err := requireReason(reissueReason); err != nil {
				return err
			}
			return a.mutate(cmd, func(ctx context.Context, rt *bootstrap.Runtime, actor string) (any, error) {
				return rt.Services.Cheques.Reissue(ctx, id, reissueReason, actor)
			})
		},
	}
	reissue.Flags().StringVar(&reissueReason, "reason", "", "reason recorded with the reissue")

	cmd.AddCommand(void, reissue)
	return cmd
}

func (a *app) advanceCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "advance", Short: "Inspect grower advances"}
	cmd.AddCommand(&cobra.Command{
		Use:   "outstanding <grower-id>",
		Short: "List a grower's outstanding advances, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("grower", args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, rt *bootstrap.Runtime) (any, error) {
				return rt.Services.Advances.ListOutstanding(ctx, id)
			})
		},
	})
	return cmd
}

// tokenCommand signs an actor token for the HTTP API with the configured secret
func tokenCommand(out io.Writer) *cobra.Command {
	var (
		name string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token naming a clerk",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cfg.JWT.Secret == "" {
				return fmt.Errorf("jwt.secret is not configured")
			}
			token, err := middleware.SignActorToken([]byte(cfg.JWT.Secret), cfg.JWT.Issuer, name, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "clerk the token identifies")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "token lifetime")
	return cmd
}
