package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/healthbot/pkg/cli"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func run(args ...string) error {
	return cli.Run(context.Background(), append([]string{"healthbot", "--log-output", "stderr"}, args...), "test")
}

func TestRun_ValidateCommand(t *testing.T) {
	t.Run("defaults only", func(t *testing.T) {
		gt.NoError(t, run("validate"))
	})

	t.Run("valid files", func(t *testing.T) {
		lexicon := writeFile(t, "lexicon.toml", `treatment = ["medication", "refill"]`)
		patient := writeFile(t, "patient.toml", `
first_name = "John"
last_name = "Doe"
birth_date = 1980-05-17
`)
		gt.NoError(t, run("validate", "--lexicon-file", lexicon, "--patient-file", patient))
	})

	t.Run("invalid lexicon", func(t *testing.T) {
		lexicon := writeFile(t, "lexicon.toml", `health = ["HEALTH"]`)
		gt.Value(t, run("validate", "--lexicon-file", lexicon)).NotNil()
	})

	t.Run("invalid patient", func(t *testing.T) {
		patient := writeFile(t, "patient.toml", `first_name = "John"`)
		gt.Value(t, run("validate", "--patient-file", patient)).NotNil()
	})

	t.Run("missing file", func(t *testing.T) {
		gt.Value(t, run("validate", "--lexicon-file", filepath.Join(t.TempDir(), "none.toml"))).NotNil()
	})
}

func TestRun_ClassifyCommand(t *testing.T) {
	t.Run("appointment with fixed clock", func(t *testing.T) {
		gt.NoError(t, run("classify", "--json", "--now", "2024-10-19T10:00:00Z",
			"reschedule my appointment to next monday at 3pm"))
	})

	t.Run("refused message", func(t *testing.T) {
		gt.NoError(t, run("classify", "what about politics"))
	})

	t.Run("missing message", func(t *testing.T) {
		gt.Value(t, run("classify")).NotNil()
	})

	t.Run("invalid clock", func(t *testing.T) {
		gt.Value(t, run("classify", "--now", "yesterday", "my medication")).NotNil()
	})

	t.Run("llm extractor without provider", func(t *testing.T) {
		gt.Value(t, run("classify", "--extractor", "llm", "my medication")).NotNil()
	})
}

func TestRun_MigrateCommand(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "healthbot.db")
		gt.NoError(t, run("migrate", "--repository-backend", "sqlite", "--sqlite-path", path))

		_, err := os.Stat(path)
		gt.NoError(t, err)
	})

	t.Run("sqlite dry run", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "healthbot.db")
		gt.NoError(t, run("migrate", "--dry-run", "--repository-backend", "sqlite", "--sqlite-path", path))

		_, err := os.Stat(path)
		gt.Bool(t, os.IsNotExist(err)).True()
	})

	t.Run("memory", func(t *testing.T) {
		gt.NoError(t, run("migrate", "--repository-backend", "memory"))
	})

	t.Run("unknown backend", func(t *testing.T) {
		gt.Value(t, run("migrate", "--repository-backend", "mysql")).NotNil()
	})
}
