package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"pennywise/internal/config"
	"pennywise/internal/database"
	"pennywise/internal/logger"
	"pennywise/internal/services"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// openFunc connects to the database described by v.
type openFunc func(v *viper.Viper) (*gorm.DB, func(), error)

// app holds what every subcommand needs once the root has run.
type app struct {
	db     *gorm.DB
	userID string
	groups services.BudgetGroupServicer
	budget services.BudgetServicer
	close  func()
}

func newRootCmd(open openFunc) *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Inspect budgets and budget groups",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./budgetctl.yaml or $HOME/.config/budgetctl/budgetctl.yaml)")
	flags.String("user", "", "email of the user whose data is read")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("db-host", "localhost", "database host")
	flags.String("db-port", "5432", "database port")
	flags.String("db-user", "pennywise", "database user")
	flags.String("db-password", "pennywise", "database password")
	flags.String("db-name", "pennywise", "database name")
	flags.String("db-sslmode", "disable", "database sslmode")
	flags.String("group-threshold", config.DefaultGroupAlertThreshold.String(), "group alert threshold in percent")
	flags.String("budget-threshold", config.DefaultBudgetAlertThreshold.String(), "default budget alert threshold in percent")

	for key, flag := range map[string]string{
		"user":              "user",
		"logging.level":     "log-level",
		"database.host":     "db-host",
		"database.port":     "db-port",
		"database.user":     "db-user",
		"database.password": "db-password",
		"database.name":     "db-name",
		"database.sslmode":  "db-sslmode",
		"alerts.group":      "group-threshold",
		"alerts.budget":     "budget-threshold",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	load := func(cmd *cobra.Command) (*app, error) {
		return loadApp(cmd, v, open)
	}
	cmd.AddCommand(groupsCmd(load))
	cmd.AddCommand(budgetsCmd(load))
	return cmd
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("budgetctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/budgetctl")
		}
	}

	v.SetEnvPrefix("BUDGETCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.Init("cli", v.GetString("logging.level"))
	return nil
}

func openDatabase(v *viper.Viper) (*gorm.DB, func(), error) {
	manager, err := database.NewManager(database.NewConfig(&config.Config{
		DBHost:     v.GetString("database.host"),
		DBPort:     v.GetString("database.port"),
		DBUser:     v.GetString("database.user"),
		DBPassword: v.GetString("database.password"),
		DBName:     v.GetString("database.name"),
		DBSSLMode:  v.GetString("database.sslmode"),
	}))
	if err != nil {
		return nil, nil, err
	}
	return manager.DB(), func() { _ = manager.Close() }, nil
}

func loadApp(cmd *cobra.Command, v *viper.Viper, open openFunc) (*app, error) {
	email := v.GetString("user")
	if email == "" {
		return nil, errors.New("--user (or BUDGETCTL_USER) is required")
	}
	thresholds, err := readThresholds(v)
	if err != nil {
		return nil, err
	}

	db, closeDB, err := open(v)
	if err != nil {
		return nil, err
	}
	user, err := services.NewUserService(db, "").GetUserByEmail(cmd.Context(), email)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("user %s: %w", email, err)
	}

	return &app{
		db:     db,
		userID: user.ID,
		groups: services.NewBudgetGroupService(db, nil, thresholds),
		budget: services.NewBudgetService(db, nil, thresholds),
		close:  closeDB,
	}, nil
}

func readThresholds(v *viper.Viper) (services.Thresholds, error) {
	group, err := decimal.NewFromString(v.GetString("alerts.group"))
	if err != nil {
		return services.Thresholds{}, fmt.Errorf("invalid group threshold: %w", err)
	}
	budget, err := decimal.NewFromString(v.GetString("alerts.budget"))
	if err != nil {
		return services.Thresholds{}, fmt.Errorf("invalid budget threshold: %w", err)
	}
	return services.Thresholds{Group: group, Budget: budget}, nil
}

// asOfFlag parses the --as-of flag; empty means today.
func asOfFlag(cmd *cobra.Command) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString("as-of")
	if raw == "" {
		return nil, nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --as-of %q, want YYYY-MM-DD", raw)
	}
	return &day, nil
}
