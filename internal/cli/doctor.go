package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"kanbanflow/internal/store"
)

var errDoctorIssues = errors.New("doctor found problems")

type doctorIssue struct {
	Level   string `json:"level"` // error|warn
	Check   string `json:"check"`
	Message string `json:"message"`
}

type doctorReport struct {
	ConfigFile   string        `json:"configFile,omitempty"`
	Seed         string        `json:"seed"`
	Actor        string        `json:"actor"`
	AIConfigured bool          `json:"aiConfigured"`
	AIModel      string        `json:"aiModel"`
	ServerAddr   string        `json:"serverAddr"`
	ServerAuth   bool          `json:"serverAuth"`
	Lists        int           `json:"lists"`
	Cards        int           `json:"cards"`
	Issues       []doctorIssue `json:"issues"`
}

func (r doctorReport) hasErrors() bool {
	for _, is := range r.Issues {
		if is.Level == "error" {
			return true
		}
	}
	return false
}

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the resolved configuration and the seed board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := app.doctor()
			if err := writeOut(cmd, app, map[string]any{
				"data":   report,
				"meta":   map[string]any{"issues": len(report.Issues), "hasErrors": report.hasErrors()},
				"_hints": []string{"kanbanflow docs config --raw"},
			}); err != nil {
				return err
			}
			if fail && report.hasErrors() {
				return errDoctorIssues
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	return cmd
}

func (app *App) doctor() doctorReport {
	r := doctorReport{
		ConfigFile:   app.v.ConfigFileUsed(),
		Seed:         app.cfg.Seed,
		Actor:        app.cfg.Actor,
		AIConfigured: app.cfg.AI.APIKey != "",
		AIModel:      app.cfg.AI.Model,
		ServerAddr:   app.cfg.Server.Addr,
		ServerAuth:   app.cfg.Server.Token != "",
		Issues:       []doctorIssue{},
	}
	if r.Seed == "" {
		r.Seed = "(built-in demo board)"
	}
	if !r.AIConfigured {
		r.Issues = append(r.Issues, doctorIssue{Level: "warn", Check: "ai", Message: "no API key: AI actions return fallback text"})
	}

	seed, err := store.LoadSeed(app.cfg.Seed)
	if err != nil {
		r.Issues = append(r.Issues, doctorIssue{Level: "error", Check: "seed", Message: err.Error()})
		return r
	}
	r.Lists, r.Cards = len(seed.ListOrder), len(seed.Cards)

	if _, ok := seed.FindUser(app.cfg.Actor); !ok && len(seed.Members) > 0 {
		r.Issues = append(r.Issues, doctorIssue{Level: "error", Check: "actor", Message: "actor " + app.cfg.Actor + " is not a board member"})
	}
	return r
}
