package cli

import (
	"context"
	"sync/atomic"

	"github.com/spf13/cobra"

	"subscription_console/internal/app"
	"subscription_console/internal/config"
	"subscription_console/internal/logger"
	"subscription_console/internal/notify"
)

// annotationStandalone - команде не нужна собранная консоль (сессия, клиент)
const annotationStandalone = "standalone"

type rootOptions struct {
	configPath string
	apiURL     string
	env        string
}

// runtime - то, что PersistentPreRunE собирает для подкоманд
type runtime struct {
	opts    rootOptions
	cfg     *config.Config
	console *app.Console
	unsub   func()

	// reported: ошибка уже показана уведомлением, повторно не печатаем
	reported atomic.Bool
}

// NewRootCommand собирает дерево команд
func NewRootCommand() *cobra.Command {
	return newRootCommand(&runtime{})
}

func newRootCommand(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "console",
		Short:         "Subscription management console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			rt.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rt.opts.configPath, "config", "", "path to config.yaml (default $CONFIG_PATH or config/config.yaml)")
	flags.StringVar(&rt.opts.apiURL, "api-url", "", "API base url (overrides config)")
	flags.StringVar(&rt.opts.env, "env", "", "log mode: development, quiet or production")

	root.AddCommand(
		newLoginCommand(rt),
		newRegisterCommand(rt),
		newLogoutCommand(rt),
		newWhoamiCommand(rt),
		newPlansCommand(rt),
		newPricingCommand(rt),
		newAdminCommand(rt),
		newDashboardCommand(rt),
		newUsageCommand(rt),
		newRecommendationsCommand(rt),
		newWatchCommand(rt),
		newMockAPICommand(rt),
	)
	return root
}

func (rt *runtime) init(cmd *cobra.Command) error {
	cfg, err := rt.loadConfig()
	if err != nil {
		return err
	}
	rt.cfg = cfg
	logger.InitWithWriter(cfg.Server.Env, cmd.ErrOrStderr())

	if cmd.Annotations[annotationStandalone] == "true" {
		return nil
	}

	console, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	rt.console = console
	out := cmd.ErrOrStderr()
	rt.unsub = console.Notify.Subscribe(func(n notify.Notification) {
		if n.Level != notify.LevelSuccess {
			rt.reported.Store(true)
		}
		printNotification(out, n)
	})
	return nil
}

func (rt *runtime) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if rt.opts.configPath != "" {
		cfg, err = config.Load(rt.opts.configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, err
	}
	if rt.opts.apiURL != "" {
		cfg.API.BaseURL = rt.opts.apiURL
	}
	if rt.opts.env != "" {
		cfg.Server.Env = rt.opts.env
	}
	return cfg, cfg.Validate()
}

// close вызывается и из PostRun, и из Execute (PostRun не срабатывает при ошибке)
func (rt *runtime) close() {
	if rt.unsub != nil {
		rt.unsub()
		rt.unsub = nil
	}
	if rt.console != nil {
		rt.console.Close()
		rt.console = nil
	}
}

// Execute - точка входа cmd/console
func Execute(ctx context.Context) int {
	rt := &runtime{}
	root := newRootCommand(rt)
	defer rt.close()
	if err := root.ExecuteContext(ctx); err != nil {
		if !rt.reported.Load() {
			printError(root.ErrOrStderr(), err)
		}
		return 1
	}
	return 0
}

func standalone(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationStandalone] = "true"
	return cmd
}
