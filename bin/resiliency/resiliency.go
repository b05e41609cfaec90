package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/palantir/stacktrace"
	"github.com/red-hat-storage/ocs-resiliency/experiments/resiliency/experiment"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cerrors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/clients"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/platform"
	"github.com/red-hat-storage/ocs-resiliency/pkg/cloud/providers"
	"github.com/red-hat-storage/ocs-resiliency/pkg/environment"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"github.com/red-hat-storage/ocs-resiliency/pkg/resiliency/config"
	"github.com/red-hat-storage/ocs-resiliency/pkg/resiliency/scenario"
	"github.com/red-hat-storage/ocs-resiliency/pkg/result"
	"github.com/red-hat-storage/ocs-resiliency/pkg/status"
	"github.com/red-hat-storage/ocs-resiliency/pkg/telemetry"
	"github.com/red-hat-storage/ocs-resiliency/pkg/types"
	"github.com/spf13/cobra"
)

func init() {
	log.UseTextFormatter(nil)
}

type runOptions struct {
	scenario      string
	failureMethod string
	all           bool
	configDir     string
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configDir string

	rootCmd := &cobra.Command{
		Use:          "resiliency",
		Short:        "Inject infrastructure failures into a storage cluster and verify it recovers",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", "", "scenario configuration directory, overrides RESILIENCY_CONFIG_DIR")

	rootCmd.AddCommand(newRunCommand(&configDir), newListCommand(&configDir))
	return rootCmd
}

func newRunCommand(configDir *string) *cobra.Command {
	opts := runOptions{}

	run := &cobra.Command{
		Use:   "run [flags]",
		Short: "Run the failure cases of a scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configDir = *configDir
			if opts.scenario == "" && !opts.all {
				return fmt.Errorf("either --scenario or --all is required")
			}
			return runResiliency(cmd.Context(), opts)
		},
	}

	run.Flags().StringVarP(&opts.scenario, "scenario", "s", "", "scenario to run, e.g. NODE_FAILURES")
	run.Flags().StringVarP(&opts.failureMethod, "failure-method", "m", "", "only run the failure cases of this method")
	run.Flags().BoolVar(&opts.all, "all", false, "run the FAILURE_SCENARIOS of resiliency.yaml")
	return run
}

func newListCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the supported platforms, scenarios and configured failure cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			details := types.PlatformDetails{}
			environment.GetENV(&details)
			if *configDir != "" {
				details.ConfigDir = *configDir
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Platforms: %v\n", providers.Registry().Names())
			for _, name := range experiment.SupportedScenarios() {
				fmt.Fprintf(out, "%s:\n", name)
				definition, err := config.LoadScenario(details.ConfigDir, name)
				if err != nil {
					fmt.Fprintf(out, "  not configured in %s\n", details.ConfigDir)
					continue
				}
				for _, failureCase := range definition.Failures {
					fmt.Fprintf(out, "  - %s\n", failureCase)
				}
			}
			return nil
		},
	}
}

func runResiliency(ctx context.Context, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	details := types.PlatformDetails{}
	log.Info("[PreReq]: Getting the ENV for the resiliency run")
	environment.GetENV(&details)
	if opts.configDir != "" {
		details.ConfigDir = opts.configDir
	}
	log.SetLevel(details.LogLevel)

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return err
	}
	shutdown, err := telemetry.InitOTelSDK(ctx, telemetry.Config{Endpoint: details.OTELEndpoint, Metrics: metrics})
	if err != nil {
		return stacktrace.Propagate(err, "failed to initialize the OTel SDK")
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Errorf("Failed to shutdown the OTel SDK, err: %v", err)
		}
		if err := metrics.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Errorf("Failed to shutdown the meter provider, err: %v", err)
		}
	}()
	if ctx, err = telemetry.GetTraceParentContext(ctx); err != nil {
		log.Warnf("Ignoring %v, err: %v", telemetry.TraceParent, err)
	}
	if details.MetricsAddr != "" {
		metrics.Serve(ctx, details.MetricsAddr)
	}

	deps, err := buildDependencies(details, metrics)
	if err != nil {
		log.Errorf("Unable to prepare the resiliency run, err: %v", err)
		return err
	}

	log.InfoWithValues("[Info]: The resiliency run details are as follows", log.Fields{
		"Platform":          deps.Cluster.Name(),
		"Config Dir":        details.ConfigDir,
		"Storage Namespace": details.StorageNamespace,
		"Run Config":        deps.Config,
	})

	if opts.all {
		summaries, err := experiment.RunScenarios(ctx, opts.failureMethod, deps)
		if err != nil {
			return err
		}
		return verdictError(summaries...)
	}

	r, err := experiment.NewResiliency(opts.scenario, opts.failureMethod, deps)
	if err != nil {
		log.Errorf("Unable to prepare scenario %v, err: %v", opts.scenario, err)
		return err
	}
	defer r.Cleanup(context.WithoutCancel(ctx))

	summary, err := r.Start(ctx)
	if err != nil {
		return err
	}
	return verdictError(summary)
}

// verdictError fails the command for every run which did not pass,
// runs that go on past an unhealthy cluster end without an error of their own
func verdictError(summaries ...*result.RunSummary) error {
	var err error
	for _, summary := range summaries {
		if summary == nil || summary.Verdict == types.PassVerdict {
			continue
		}
		err = multierror.Append(err, cerrors.Error{
			ErrorCode: cerrors.ErrorTypeHealthCheckFailed,
			Phase:     string(types.PhaseComplete),
			Reason:    fmt.Sprintf("run ended with verdict %s, %d of %d health checks failed", summary.Verdict, summary.HealthFailures, summary.CasesRun),
			Target:    fmt.Sprintf("{scenario: %s}", summary.Scenario),
		})
	}
	return err
}

// buildDependencies builds every collaborator of the run once, from the environment
func buildDependencies(details types.PlatformDetails, metrics *telemetry.Metrics) (experiment.Dependencies, error) {
	clientSets := clients.ClientSets{}
	if err := clientSets.GenerateClientSetFromKubeConfig(details.KubeConfig); err != nil {
		return experiment.Dependencies{}, stacktrace.Propagate(err, "unable to get the kubeconfig")
	}

	cluster, err := providers.GetClusterPlatform(details, platform.KubeNodeResolver{Clients: clientSets})
	if err != nil {
		return experiment.Dependencies{}, err
	}

	cfg, err := config.LoadResiliencyConfig(details.ConfigDir)
	if err != nil {
		return experiment.Dependencies{}, err
	}

	return experiment.Dependencies{
		Cluster:   cluster,
		Health:    status.CephHealthChecker{Clients: clientSets, Namespace: details.StorageNamespace},
		Config:    cfg,
		ConfigDir: details.ConfigDir,
		Options:   scenario.Options{OutageDuration: time.Duration(details.NetworkOutageDuration) * time.Second},
		Metrics:   metrics,
	}, nil
}
