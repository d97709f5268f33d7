package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"alertexecutor/src/connectors"
	"alertexecutor/src/controller"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "AlertExecutor CMD"
	app.Usage = "The AlertExecutor command line interface"

	app.Commands = []cli.Command{
		balanceCMD,
		orderTestCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	balanceCMD = cli.Command{
		Name:        "balance",
		Usage:       "print the available USDT balance",
		Action:      balanceAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Fetch the USDT perpetual account balance from BingX`,
	}
	orderTestCMD = cli.Command{
		Name:        "ordertest",
		Usage:       "submit a probe order to the order-test endpoint",
		Action:      orderTestAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Send the fixed BTC-USDT probe payload; nothing executes on the exchange`,
	}
)

func newExecutor() *controller.OrderExecutor {
	client := connectors.NewClient(connectors.GetConfig())
	return controller.NewOrderExecutor(client)
}

func balanceAction(_ *cli.Context) error {
	logrus.Info("Fetching USDT balance")

	balance, err := newExecutor().AccountBalance()
	if err != nil {
		logrus.WithError(err).Error("balance fetch failed")
		return err
	}

	fmt.Println(balance.String())
	return nil
}

func orderTestAction(_ *cli.Context) error {
	logrus.Info("Submitting order test probe")

	resp, err := newExecutor().SubmitTestOrder()
	if err != nil {
		logrus.WithError(err).Error("order test failed")
		return err
	}

	if !resp.Success {
		return fmt.Errorf("order test rejected: code=%d msg=%s", resp.Code, resp.Msg)
	}

	logrus.Info("Order test successful")
	return nil
}
