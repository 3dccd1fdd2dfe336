package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ZanzyTHEbar/time-roi-meter/internal/encoding"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/scoring"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var (
	name    = "roi"
	version = "v0.1.0-default"
	commit  = ""
)

// SetVersion overrides the build metadata, set via ldflags at release time.
func SetVersion(v, c string) {
	if v != "" {
		version = v
	}
	commit = c
}

// NewApp builds the command-line application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    name,
		Version: fmt.Sprintf("%s - (commit: %s)", version, commit),
		Usage:   "Score how well time was spent",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json or yaml",
				Value:   "json",
			},
		},
		Commands: []*cli.Command{
			scoreCmd,
			interpretCmd,
			demoCmd,
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			return nil
		},
	}
}

var scoreCmd = &cli.Command{
	Name:  "score",
	Usage: "Compute the time ROI score for an activity",
	Flags: []cli.Flag{
		&cli.Float64Flag{
			Name:     "time",
			Aliases:  []string{"t"},
			Usage:    "Time spent in hours (must be > 0)",
			Required: true,
		},
		&cli.Float64Flag{
			Name:     "effort",
			Aliases:  []string{"e"},
			Usage:    "Effort rating, 0-10",
			Required: true,
		},
		&cli.Float64Flag{
			Name:     "skill",
			Aliases:  []string{"s"},
			Usage:    "Skill growth rating, 0-10",
			Required: true,
		},
		&cli.Float64Flag{
			Name:     "value",
			Aliases:  []string{"v"},
			Usage:    "Perceived value rating, 0-10",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "equal",
			Usage: "Weigh all three ratings equally",
		},
		&cli.Float64Flag{
			Name:  "w-effort",
			Usage: "Custom effort weight (requires the other two weight flags)",
		},
		&cli.Float64Flag{
			Name:  "w-skill",
			Usage: "Custom skill growth weight",
		},
		&cli.Float64Flag{
			Name:  "w-value",
			Usage: "Custom perceived value weight",
		},
	},
	Action: runScore,
}

func runScore(c *cli.Context) error {
	in := scoring.Input{
		TimeSpent:      c.Float64("time"),
		Effort:         c.Float64("effort"),
		SkillGrowth:    c.Float64("skill"),
		PerceivedValue: c.Float64("value"),
	}

	var (
		eval scoring.Evaluation
		err  error
	)

	if c.Bool("equal") {
		eval, err = scoring.EvaluateEqual(in)
	} else {
		weights, werr := weightsFromFlags(c)
		if werr != nil {
			return cli.Exit(werr.Error(), 1)
		}
		eval, err = scoring.Evaluate(in, weights)
	}

	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	return writeResult(c.App.Writer, c.String("format"), eval)
}

// weightsFromFlags resolves custom weights: either all three weight
// flags are set, or none and the defaults apply.
func weightsFromFlags(c *cli.Context) (scoring.Weights, error) {
	set := 0
	for _, flag := range []string{"w-effort", "w-skill", "w-value"} {
		if c.IsSet(flag) {
			set++
		}
	}

	switch set {
	case 0:
		return scoring.DefaultWeights(), nil
	case 3:
		return scoring.Weights{
			Effort:         c.Float64("w-effort"),
			SkillGrowth:    c.Float64("w-skill"),
			PerceivedValue: c.Float64("w-value"),
		}, nil
	default:
		return scoring.Weights{}, fmt.Errorf("custom weights require all of --w-effort, --w-skill and --w-value")
	}
}

var interpretCmd = &cli.Command{
	Name:  "interpret",
	Usage: "Map a score to its category and description",
	Flags: []cli.Flag{
		&cli.Float64Flag{
			Name:     "score",
			Aliases:  []string{"s"},
			Usage:    "The score to interpret",
			Required: true,
		},
	},
	Action: func(c *cli.Context) error {
		score := c.Float64("score")

		result := struct {
			Score float64 `json:"score" yaml:"score"`
			scoring.Interpretation
		}{Score: score, Interpretation: scoring.Interpret(score)}

		return writeResult(c.App.Writer, c.String("format"), result)
	},
}

var demoCmd = &cli.Command{
	Name:  "demo",
	Usage: "Score a sample activity several ways",
	Action: func(c *cli.Context) error {
		in := scoring.Input{TimeSpent: 10, Effort: 7, SkillGrowth: 8, PerceivedValue: 9}

		weighted, err := scoring.Evaluate(in, scoring.DefaultWeights())
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		equal, err := scoring.EvaluateEqual(in)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		custom, err := scoring.Evaluate(in, scoring.Weights{Effort: 0.1, SkillGrowth: 0.3, PerceivedValue: 0.6})
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		// Deliberately invalid, to show what a rejection looks like
		_, invalidErr := scoring.Evaluate(scoring.Input{TimeSpent: 0, Effort: 7, SkillGrowth: 8, PerceivedValue: 9}, scoring.DefaultWeights())

		result := map[string]interface{}{
			"input":    in,
			"weighted": weighted,
			"equal":    equal,
			"custom":   custom,
			"invalid":  map[string]string{"error": invalidErr.Error()},
		}

		return writeResult(c.App.Writer, c.String("format"), result)
	},
}

// writeResult renders v to the given writer as JSON or YAML.
func writeResult(w io.Writer, format string, v interface{}) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to encode yaml: %v", err), 1)
		}
		_, err = w.Write(data)
		return err
	case "json", "":
		data, err := encoding.MarshalJSON(v)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to encode json: %v", err), 1)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return cli.Exit(fmt.Sprintf("unknown format: %s (expected json or yaml)", format), 1)
	}
}
