package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"moviedb/cmd/commands"
	"moviedb/internal/config"
	"moviedb/internal/database"
	"moviedb/internal/database/dbtest"
	"moviedb/internal/models"
	"moviedb/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t    *testing.T
	path string
}

func newCLI(t *testing.T) *cli {
	return &cli{t: t, path: filepath.Join(t.TempDir(), "movies.db")}
}

// run executes one invocation against the test database and returns stdout.
func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()

	cfg := &config.Config{Database: dbtest.Config(c.t), Log: config.LogConfig{Level: "warn", Format: "json"}}
	root := commands.NewRootCmd(cfg, dbtest.Logger())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--driver", "sqlite", "--sqlite-path", c.path}, args...))

	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func TestMigrateThenVerify(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("migrate")
	assert.Contains(t, out, "Schema ready on sqlite (6 junction tables)")

	var reports []database.TableReport
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("verify", "--json")), &reports))
	require.Len(t, reports, 6)
	for _, r := range reports {
		assert.True(t, r.OK(), r.Table)
	}
}

func TestVerifyFailsOnEmptyDatabase(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("verify")
	require.ErrorIs(t, err, database.ErrSchemaMismatch)
	assert.Contains(t, out, "movie_people: table does not exist")
}

func TestAttachDescribeDelete(t *testing.T) {
	c := newCLI(t)
	c.mustRun("migrate")

	out := c.mustRun("movie", "add", "--id", "949", "--title", "Heat", "--year", "1995", "--rating", "7.9")
	assert.Contains(t, out, "Added movie 949: Heat")

	file := filepath.Join(t.TempDir(), "heat.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"credits": [
			{"name": "Al Pacino", "role": "actor", "importance": 1},
			{"name": "Michael Mann", "role": "director"}
		],
		"genres": ["Crime", "Thriller"],
		"languages": ["English"]
	}`), 0o644))

	var linked map[string]int64
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("attach", "949", "--file", file, "--json")), &linked))
	assert.Equal(t, int64(2), linked["movie_people"])
	assert.Equal(t, int64(2), linked["movie_genres"])
	assert.Equal(t, int64(1), linked["movie_languages"])

	out = c.mustRun("describe", "949")
	assert.Contains(t, out, "Heat (1995)")
	assert.Contains(t, out, "Al Pacino")
	assert.Contains(t, out, "Crime, Thriller")

	var deleted struct {
		Kind     string           `json:"kind"`
		Cascaded map[string]int64 `json:"cascaded"`
	}
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("delete", "genre", "1", "--json")), &deleted))
	assert.Equal(t, "genre", deleted.Kind)
	assert.Equal(t, int64(1), deleted.Cascaded["movie_genres"])

	require.NoError(t, json.Unmarshal([]byte(c.mustRun("delete", "movie", "949", "--json")), &deleted))
	assert.Equal(t, int64(2), deleted.Cascaded["movie_people"])
	assert.Equal(t, int64(1), deleted.Cascaded["movie_genres"])
	assert.Equal(t, int64(1), deleted.Cascaded["movie_languages"])

	var counts []database.TableCount
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("stats", "--json")), &counts))
	for _, tc := range counts {
		switch tc.Table {
		case "people":
			assert.Equal(t, int64(2), tc.Rows)
		case "genres":
			assert.Equal(t, int64(1), tc.Rows)
		default:
			if tc.Table != "languages" {
				assert.Zero(t, tc.Rows, tc.Table)
			}
		}
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	c := newCLI(t)
	c.mustRun("migrate")

	_, err := c.run("reset")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out := c.mustRun("reset", "--yes")
	assert.Contains(t, out, "Cleared 13 tables")
}

func TestDeleteRejectsBadArguments(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("delete", "studio", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity kind")

	_, err = c.run("delete", "movie", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
}

func TestUnknownDriver(t *testing.T) {
	cfg := &config.Config{Database: dbtest.Config(t)}
	root := commands.NewRootCmd(cfg, dbtest.Logger())
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--driver", "oracle", "stats"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

func TestMovieAddAndList(t *testing.T) {
	c := newCLI(t)
	c.mustRun("migrate")

	var movie models.Movie
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("movie", "add", "--title", "Ronin", "--language", "en", "--json")), &movie))
	assert.NotZero(t, movie.ID)
	assert.Equal(t, "en", movie.OriginalLanguage)
	assert.Nil(t, movie.ReleaseYear)

	c.mustRun("movie", "add", "--id", "949", "--title", "Heat", "--year", "1995")

	_, err := c.run("movie", "add", "--id", "949", "--title", "Heat again")
	require.ErrorIs(t, err, database.ErrDuplicateKey)

	_, err = c.run("movie", "add", "--title", "  ")
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = c.run("movie", "add", "--id", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")

	var listed struct {
		Movies []models.Movie `json:"movies"`
		Total  int64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("movie", "list", "--json")), &listed))
	assert.Equal(t, int64(2), listed.Total)

	out := c.mustRun("movie", "list", "--search", "hea")
	assert.Contains(t, out, "Heat")
	assert.Contains(t, out, "1995")
	assert.NotContains(t, out, "Ronin")
}

func TestQueryCommands(t *testing.T) {
	c := newCLI(t)
	c.mustRun("migrate")
	c.mustRun("movie", "add", "--id", "1", "--title", "Heat", "--year", "1995", "--rating", "7.9", "--language", "en")
	c.mustRun("movie", "add", "--id", "2", "--title", "Ronin", "--year", "1998", "--rating", "6.9", "--language", "en")

	attach := func(id, body string) {
		file := filepath.Join(t.TempDir(), id+".json")
		require.NoError(t, os.WriteFile(file, []byte(body), 0o644))
		c.mustRun("attach", id, "--file", file)
	}
	attach("1", `{
		"credits": [{"name": "Robert De Niro", "role": "actor", "importance": 1}],
		"genres": ["Crime", "Thriller"],
		"countries": ["United States of America"],
		"keywords": ["heist"]
	}`)
	attach("2", `{
		"credits": [{"name": "Robert De Niro", "role": "actor", "importance": 1}],
		"genres": ["Thriller"],
		"countries": ["France"]
	}`)

	movieTitles := func(args ...string) []string {
		var movies []models.Movie
		require.NoError(t, json.Unmarshal([]byte(c.mustRun(append(append([]string{"query"}, args...), "--json")...)), &movies))
		out := make([]string, 0, len(movies))
		for _, m := range movies {
			out = append(out, m.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Heat", "Ronin"}, movieTitles("genre", "thriller"))
	assert.Equal(t, []string{"Ronin"}, movieTitles("genre", "thriller", "--year", "1998"))
	assert.Equal(t, []string{"Heat"}, movieTitles("person", "de niro", "--genre", "crime"))
	assert.Equal(t, []string{"Heat"}, movieTitles("year", "1995"))
	assert.Equal(t, []string{"Heat"}, movieTitles("top-rated", "thriller", "--limit", "1"))
	assert.Equal(t, []string{"Heat"}, movieTitles("linked", "keyword", "heist"))
	assert.Equal(t, []string{"Heat"}, movieTitles("genres", "Crime", "Thriller"))
	assert.Equal(t, []string{"Ronin"}, movieTitles("origin", "--country", "france", "--language", "en"))
	assert.Empty(t, movieTitles("genre", "western"))

	var n map[string]int64
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("query", "count", "person", "de niro", "--json")), &n))
	assert.Equal(t, int64(2), n["movies"])
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("query", "count", "genre", "thriller", "--min-rating", "7", "--json")), &n))
	assert.Equal(t, int64(1), n["movies"])

	var actors []repository.ActorCount
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("query", "top-actors", "--min-movies", "2", "--json")), &actors))
	require.Len(t, actors, 1)
	assert.Equal(t, "Robert De Niro", actors[0].Name)

	out := c.mustRun("query", "per-year")
	assert.Contains(t, out, "1998")
	assert.Contains(t, out, "1995")

	out = c.mustRun("query", "genre-ratings")
	assert.Contains(t, out, "Crime")
	assert.Contains(t, out, "7.90")

	out = c.mustRun("query", "trends", "--from-year", "1996")
	assert.Contains(t, out, "1998")
	assert.NotContains(t, out, "1995")

	out = c.mustRun("query", "combinations", "--min-movies", "1")
	assert.Contains(t, out, "Crime, Thriller")

	out = c.mustRun("query", "genre", "western")
	assert.Contains(t, out, "No results")

	_, err := c.run("query", "person", "de niro", "--role", "gaffer")
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = c.run("query", "count", "studio", "warner")
	require.Error(t, err)
}

func TestRunIDStampedOncePerInvocation(t *testing.T) {
	cfg := &config.Config{Database: dbtest.Config(t)}
	path := filepath.Join(t.TempDir(), "movies.db")

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	root := commands.NewRootCmd(cfg, log)
	hook := test.NewLocal(log)

	for i := 0; i < 2; i++ {
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"--driver", "sqlite", "--sqlite-path", path, "migrate"})
		require.NoError(t, root.Execute())
	}

	assert.Len(t, log.Hooks[logrus.InfoLevel], 2)

	runIDs := map[interface{}]bool{}
	for _, entry := range hook.AllEntries() {
		require.Contains(t, entry.Data, "run_id")
		runIDs[entry.Data["run_id"]] = true
	}
	assert.Len(t, runIDs, 2)
}
