// Package dig_container wires the API dependencies with dig.
package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/ustawi/apps/api/echo"
	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/appointment"
	"github.com/trezcool/ustawi/core/assignment"
	"github.com/trezcool/ustawi/core/assistant"
	"github.com/trezcool/ustawi/core/journal"
	"github.com/trezcool/ustawi/core/mood"
	"github.com/trezcool/ustawi/core/resource"
	"github.com/trezcool/ustawi/core/sentiment"
	"github.com/trezcool/ustawi/core/study"
	"github.com/trezcool/ustawi/core/task"
	"github.com/trezcool/ustawi/core/user"
	emailsvc "github.com/trezcool/ustawi/services/email"
	logsvc "github.com/trezcool/ustawi/services/logger"
	"github.com/trezcool/ustawi/storage/database"
	inmemdb "github.com/trezcool/ustawi/storage/database/inmem"
	sqlxrepos "github.com/trezcool/ustawi/storage/database/sqlx"
)

const engineMemory = "memory"

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Repositories are backed by Postgres, or by memory when database.engine is "memory".
	Repositories struct {
		dig.Out
		Users        user.Repository
		Journal      journal.Repository
		Moods        mood.Repository
		Tasks        task.Repository
		Study        study.Repository
		Assignments  assignment.Repository
		Resources    resource.Repository
		Appointments appointment.Repository
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

// newDB returns nil with the memory engine.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Database.Engine == engineMemory {
		loggerParam.Logger.Warn("using the in-memory database: data will not survive a restart")
		return nil
	}

	setUp := func() (*sqlx.DB, error) {
		ctx := context.Background()
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}

		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newRepositories(db *sqlx.DB) Repositories {
	if db == nil {
		mem := inmemdb.Open()
		return Repositories{
			Users:        inmemdb.NewUserRepository(mem),
			Journal:      inmemdb.NewJournalRepository(mem),
			Moods:        inmemdb.NewMoodRepository(mem),
			Tasks:        inmemdb.NewTaskRepository(mem),
			Study:        inmemdb.NewStudyRepository(mem),
			Assignments:  inmemdb.NewAssignmentRepository(mem),
			Resources:    inmemdb.NewResourceRepository(mem),
			Appointments: inmemdb.NewAppointmentRepository(mem),
		}
	}
	return Repositories{
		Users:        sqlxrepos.NewUserRepository(db),
		Journal:      sqlxrepos.NewJournalRepository(db),
		Moods:        sqlxrepos.NewMoodRepository(db),
		Tasks:        sqlxrepos.NewTaskRepository(db),
		Study:        sqlxrepos.NewStudyRepository(db),
		Assignments:  sqlxrepos.NewAssignmentRepository(db),
		Resources:    sqlxrepos.NewResourceRepository(db),
		Appointments: sqlxrepos.NewAppointmentRepository(db),
	}
}

// newUserDirectory lets appointments look up students and counselors.
func newUserDirectory(repo user.Repository) appointment.Directory {
	return repo
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(log.New(os.Stdout, "MAIL : ", log.LstdFlags), conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// newAnalyzer falls back to the rule-based scorer only when no API token is configured.
func newAnalyzer(conf *core.Config, logger core.Logger) sentiment.Analyzer {
	if conf.Sentiment.APIToken == "" {
		logger.Info("sentiment: no API token, using the rule-based scorer")
		return sentiment.NewHybrid(nil, logger)
	}
	return sentiment.NewHybrid(sentiment.NewRemoteClassifier(conf.Sentiment), logger)
}

// newAssistant only answers with canned advice when no API token is configured.
func newAssistant(conf *core.Config, logger core.Logger) *assistant.Assistant {
	if conf.Assistant.APIToken == "" {
		logger.Info("assistant: no API token, using canned replies")
		return assistant.New(nil, logger)
	}
	return assistant.New(assistant.NewRemoteCompleter(conf.Assistant), logger)
}

func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	sentiment.RegisterMetrics(reg)
	journal.RegisterMetrics(reg)
	appointment.RegisterMetrics(reg)
	assistant.RegisterMetrics(reg)
	echoapi.RegisterMetrics(reg)
	return reg
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newClock))
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(newValidator))
	must(c.Provide(newAnalyzer))
	must(c.Provide(newAssistant, dig.As(new(assistant.ServiceInterface), new(assignment.Helper))))
	must(c.Provide(newUserDirectory))
	must(c.Provide(newMetricsRegistry))
	must(c.Provide(user.NewService, dig.As(new(user.ServiceInterface))))
	must(c.Provide(journal.NewService, dig.As(new(journal.ServiceInterface))))
	must(c.Provide(mood.NewService, dig.As(new(mood.ServiceInterface))))
	must(c.Provide(task.NewService, dig.As(new(task.ServiceInterface), new(study.TaskFinder))))
	must(c.Provide(study.NewService, dig.As(new(study.ServiceInterface))))
	must(c.Provide(assignment.NewService, dig.As(new(assignment.ServiceInterface))))
	must(c.Provide(resource.NewService, dig.As(new(resource.ServiceInterface))))
	must(c.Provide(appointment.NewService, dig.As(new(appointment.ServiceInterface))))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
