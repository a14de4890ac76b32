package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/BaSui01/sapaicore/config"
	"github.com/BaSui01/sapaicore/internal/metrics"
	"github.com/BaSui01/sapaicore/internal/telemetry"
	"github.com/BaSui01/sapaicore/llm/providers/sapai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli 保存一次命令执行期间共享的运行时状态
type cli struct {
	out    io.Writer
	errOut io.Writer

	cfgFile       string
	logLevel      string
	logFormat     string
	deploymentID  string
	resourceGroup string

	cfg       *config.Config
	newLogger func(config.LogConfig) *zap.Logger
	logger    *zap.Logger
	telemetry *telemetry.Providers
	registry  *prometheus.Registry
	collector *metrics.Collector
}

func newCLI(out, errOut io.Writer) *cli {
	return &cli{out: out, errOut: errOut, newLogger: initLogger, logger: zap.NewNop()}
}

// execute 运行命令；无论命令是否失败都会执行 close
func execute(ctx context.Context, c *cli, args []string) (err error) {
	root := c.rootCmd()
	root.SetArgs(args)
	defer func() {
		err = errors.Join(err, c.close())
	}()
	return root.ExecuteContext(ctx)
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sapai",
		Short: "SAP AI Core credential resolution and orchestration chat",
		Long: `sapai resolves SAP AI Core credentials (explicit token, service key or
SAP_AI_TOKEN), derives the orchestration completion endpoint and sends chat
requests through it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (YAML)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&c.logFormat, "log-format", "", "log format: console or json")
	flags.StringVar(&c.deploymentID, "deployment", "", "orchestration deployment id")
	flags.StringVar(&c.resourceGroup, "resource-group", "", "AI resource group")

	root.AddCommand(
		newTokenCmd(c),
		newEndpointCmd(c),
		newChatCmd(c),
		newVersionCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	loader := config.NewLoader().WithValidator(func(cfg *config.Config) error {
		return cfg.Validate()
	})
	if c.cfgFile != "" {
		loader = loader.WithConfigPath(c.cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = c.logFormat
	}
	if flags.Changed("deployment") {
		cfg.SAPAI.DeploymentID = c.deploymentID
	}
	if flags.Changed("resource-group") {
		cfg.SAPAI.ResourceGroup = c.resourceGroup
	}
	c.cfg = cfg
	c.logger = c.newLogger(cfg.Log)

	tp, err := telemetry.Init(cmd.Context(), cfg.Telemetry, c.logger)
	if err != nil {
		return err
	}
	c.telemetry = tp

	if cfg.Metrics.Enabled {
		c.registry = prometheus.NewRegistry()
		c.collector = metrics.NewCollector(cfg.Metrics.Namespace, c.registry, c.logger)
	}
	return nil
}

// close 输出本次采集的指标、关闭 telemetry 并刷新日志
func (c *cli) close() error {
	if c.registry != nil {
		if families, err := c.registry.Gather(); err == nil {
			for _, mf := range families {
				c.logger.Info("metric",
					zap.String("name", mf.GetName()),
					zap.Int("series", len(mf.GetMetric())),
				)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.telemetry.Shutdown(ctx)
	_ = c.logger.Sync()
	return err
}

// options 返回配置对应的 sapai.Options，并注入 logger 与指标
func (c *cli) options() (sapai.Options, error) {
	opts, err := c.cfg.SAPAI.Options()
	if err != nil {
		return sapai.Options{}, err
	}
	opts.Logger = c.logger
	if c.collector != nil {
		opts.Metrics = c.collector
	}
	return opts, nil
}
