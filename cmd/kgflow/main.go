package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v2"
	"github.com/viant/kgflow"
	"github.com/viant/kgflow/model/state"
	"github.com/viant/kgflow/service/verification"
)

func main() {
	app := &cli.App{
		Name:  "kgflow",
		Usage: "Execute and inspect customer service solution graphs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration URL",
				EnvVars: []string{"KGFLOW_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "definitions",
				Usage: "Graph definition file or folder URL, overrides graph.definitions",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Dotenv file loaded before configuration",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "problems",
				Usage:  "List problems and their steps",
				Action: listProblems,
			},
			{
				Name:   "verify",
				Usage:  "Verify solution graph structure",
				Action: verifyGraph,
			},
			{
				Name:      "run",
				Usage:     "Run a problem solution graph",
				ArgsUsage: "<problemID>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "input",
						Usage: "Initial context as JSON object",
						Value: "{}",
					},
				},
				Action: runProblem,
			},
			{
				Name:      "ask",
				Usage:     "Handle a natural language customer query",
				ArgsUsage: "<userID> <query>",
				Action:    ask,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService(c *cli.Context) (*kgflow.Service, error) {
	if envFile := c.String("env"); envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err = godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load %v: %w", envFile, err)
			}
		}
	}
	config := kgflow.DefaultConfig()
	if URL := c.String("config"); URL != "" {
		var err error
		if config, err = kgflow.LoadConfig(c.Context, URL); err != nil {
			return nil, err
		}
	}
	if definitions := c.String("definitions"); definitions != "" {
		config.Graph.Definitions = definitions
	}
	return kgflow.New(c.Context, config)
}

func listProblems(c *cli.Context) error {
	srv, err := newService(c)
	if err != nil {
		return err
	}
	defer srv.Close(context.Background())
	problems, err := srv.Problems(c.Context)
	if err != nil {
		return err
	}
	for _, problem := range problems {
		steps, err := srv.Steps(c.Context, problem.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%v\t%v\tactive=%v\tsteps=%d\n", problem.ID, problem.Type, problem.Active, len(steps))
	}
	return nil
}

func verifyGraph(c *cli.Context) error {
	srv, err := newService(c)
	if err != nil {
		return err
	}
	defer srv.Close(context.Background())
	reports, err := srv.Verify(c.Context)
	if err != nil {
		return err
	}
	if err = printJSON(reports); err != nil {
		return err
	}
	if !verification.Valid(reports) {
		return cli.Exit("solution graph is invalid", 2)
	}
	return nil
}

func runProblem(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("please provide a problem id")
	}
	input := c.String("input")
	if !gjson.Valid(input) || !gjson.Parse(input).IsObject() {
		return fmt.Errorf("input is not a JSON object: %v", input)
	}
	values := state.Context{}
	gjson.Parse(input).ForEach(func(key, value gjson.Result) bool {
		values.Set(key.String(), state.Of(value.Value()))
		return true
	})
	srv, err := newService(c)
	if err != nil {
		return err
	}
	defer srv.Close(context.Background())
	return printJSON(srv.Run(c.Context, c.Args().Get(0), values))
}

func ask(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("please provide a user id and a query")
	}
	srv, err := newService(c)
	if err != nil {
		return err
	}
	defer srv.Close(context.Background())
	response, err := srv.Ask(c.Context, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	return printJSON(response)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
