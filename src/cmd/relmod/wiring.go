package main

import (
	"fmt"

	"relmod-agent/src/buildtool"
	"relmod-agent/src/cienv"
	"relmod-agent/src/journal"
	"relmod-agent/src/logger"
	"relmod-agent/src/notify"
	"relmod-agent/src/project"
	"relmod-agent/src/registry"
	"relmod-agent/src/release"
)

// buildRunner assembles the collaborators one release invocation needs. The
// returned cleanup closes broker and journal connections.
func buildRunner(env *cienv.Config, proj *project.Project, log logger.Logger) (*release.Runner, func(), error) {
	var broker notify.Broker
	if len(env.Brokers) > 0 {
		kafkaBroker, err := notify.NewKafkaBroker(env.Brokers)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect notification broker: %w", err)
		}
		broker = kafkaBroker
	} else {
		broker = notify.NewInMemoryBroker()
	}

	var jrnl journal.Journal
	if env.JournalDSN != "" {
		pgJournal, err := journal.NewPostgresJournal(env.JournalDSN)
		if err != nil {
			broker.Close()
			return nil, nil, fmt.Errorf("failed to open release journal: %w", err)
		}
		jrnl = pgJournal
	}

	runner := &release.Runner{
		Env:      env,
		Project:  proj,
		Registry: registry.NewHTTPClient(proj.RegistryURL, env.Credentials.RegistryToken),
		Tool:     buildtool.NewExecTool(proj, env.Credentials, log),
		Notifier: notify.NewPublisher(broker, proj.NotificationTopic),
		Hooks:    release.NopHooks(),
		Journal:  jrnl,
		Log:      log,
	}

	cleanup := func() {
		broker.Close()
		if jrnl != nil {
			jrnl.Close()
		}
	}
	return runner, cleanup, nil
}
