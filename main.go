package main

import (
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"

	"alertexecutor/src/connectors"
	"alertexecutor/src/controller"
	"alertexecutor/src/handler"
	"alertexecutor/src/server"
)

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()

	serverConfig := server.GetConfig()
	client := connectors.NewClient(connectors.GetConfig())
	executor := controller.NewOrderExecutor(client)

	// Check account balance before accepting webhooks.
	if err := executor.CheckAccountBalance(); err != nil {
		logger.WithError(err).Error("startup balance check failed")
		os.Exit(1)
	}

	server.StartServer(serverConfig.Port, handler.WebhookHandler(executor))
}
