package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/DevRickLin/reject-console/internal/api"
	"github.com/DevRickLin/reject-console/internal/biz/repo"
	"github.com/DevRickLin/reject-console/internal/biz/usecase"
	"github.com/DevRickLin/reject-console/internal/conf"
	"github.com/DevRickLin/reject-console/internal/data"
	"github.com/DevRickLin/reject-console/internal/infra/feishu"
	"github.com/DevRickLin/reject-console/internal/infra/mandrill"
	"github.com/DevRickLin/reject-console/internal/logging"
	"github.com/DevRickLin/reject-console/internal/mcp"
	"github.com/DevRickLin/reject-console/internal/server"
	"github.com/DevRickLin/reject-console/internal/service"
)

// Version is reported by the MCP server
var Version = "v1.0.0"

// BuildContainer creates and configures a dependency injection container.
// Providers run lazily, so a binary only needs the credentials of the
// components it invokes.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []interface{}{
		// Configuration and logger
		conf.LoadFromEnv,
		func(cfg *conf.Config) (*zap.Logger, error) {
			return logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
		},

		// Infra clients
		func(cfg *conf.Config, logger *zap.Logger) (*mandrill.Client, error) {
			if err := cfg.ValidateProvider(); err != nil {
				return nil, err
			}
			return mandrill.NewClient(cfg.Mandrill, logger), nil
		},
		func(cfg *conf.Config, logger *zap.Logger) (*feishu.Client, error) {
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return feishu.NewClient(cfg.Feishu, logger), nil
		},

		// Repositories
		func(client *mandrill.Client) repo.RejectRepo {
			return data.NewMandrillRepo(client)
		},
		func(client *feishu.Client) repo.MessageRepo {
			return data.NewFeishuRepo(client)
		},

		// Usecases
		func(cfg *conf.Config, rejectRepo repo.RejectRepo, logger *zap.Logger) *usecase.RejectUsecase {
			return usecase.NewRejectUsecase(rejectRepo, cfg.HistoryLimit, logger.Named("reject"))
		},
		func(cfg *conf.Config, logger *zap.Logger) *usecase.AccessUsecase {
			return usecase.NewAccessUsecase(cfg.Access.ToAccessPolicy(), logger.Named("access"))
		},

		// Services and servers
		func(cfg *conf.Config, rejectUC *usecase.RejectUsecase, messageRepo repo.MessageRepo, logger *zap.Logger) *service.ConsoleService {
			return service.NewConsoleService(rejectUC, messageRepo, cfg.Messages, logger)
		},
		func(cfg *conf.Config, consoleSvc *service.ConsoleService, logger *zap.Logger) *service.CronRunner {
			return service.NewCronRunner(consoleSvc, cfg.Report.ChatID, cfg.Report.Interval, logger)
		},
		func(
			cfg *conf.Config,
			client *feishu.Client,
			messageRepo repo.MessageRepo,
			consoleSvc *service.ConsoleService,
			accessUC *usecase.AccessUsecase,
			cron *service.CronRunner,
			logger *zap.Logger,
		) *server.FeishuServer {
			return server.NewFeishuServer(client, messageRepo, consoleSvc, accessUC, cron, cfg.Messages.AccessDenied, logger)
		},
		func(cfg *conf.Config, rejectUC *usecase.RejectUsecase, accessUC *usecase.AccessUsecase, logger *zap.Logger) *api.Server {
			return api.NewServer(rejectUC, accessUC, cfg.API.Addr, logger)
		},
		func(rejectUC *usecase.RejectUsecase, logger *zap.Logger) *mcp.RejectMCPServer {
			return mcp.NewServer(rejectUC, Version, logger)
		},
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}
