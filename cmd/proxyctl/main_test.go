package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxydeck/internal/platform/mtgapi"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func fakeAPI(t *testing.T) string {
	t.Helper()
	db := map[string][]int{"Ponder": {139512, 244313}, "Swamp": {574}, "Art Series": {}}

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := strings.CutPrefix(r.URL.Path, "/img/"); ok {
			_, _ = io.WriteString(w, "png:"+id)
			return
		}
		name := strings.Trim(r.URL.Query().Get("name"), `"`)
		cards := []mtgapi.Card{}
		for _, id := range db[name] {
			cards = append(cards, mtgapi.Card{
				Name:         name,
				Set:          "M10",
				SetName:      "Magic 2010",
				MultiverseID: mtgapi.MultiverseID(id),
				ImageURL:     fmt.Sprintf("%s/img/%d", srv.URL, id),
			})
		}
		_ = json.NewEncoder(w).Encode(mtgapi.CardsResponse{Cards: cards})
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDeck(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "tempo.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeDeck(t, dir, "4x Ponder\nbanana\n10, Swamp\n")

	stdout, stderr, err := execute(t, "parse", path)
	require.NoError(t, err)
	assert.Equal(t, "4 Ponder\n10 Swamp\n", stdout)
	assert.Contains(t, stderr, "2 distinct cards, 14 copies")
}

func TestParse_NoCards(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, _, err := execute(t, "parse", writeDeck(t, dir, "banana\n"))
	assert.Error(t, err)
}

func TestBuildAndRun(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	api := fakeAPI(t)
	out := filepath.Join(dir, "out")

	stdout, _, err := execute(t, "--api", api, "build", "--out", out, writeDeck(t, dir, "4 Ponder\n10 Swamp\n"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "All 2 cards fetched")
	assert.Contains(t, stdout, "244313.png")

	id := regexp.MustCompile(`Upload ([0-9a-f-]{36})`).FindStringSubmatch(stdout)
	require.Len(t, id, 2)

	data, err := os.ReadFile(filepath.Join(out, id[1], "244313.png"))
	require.NoError(t, err)
	assert.Equal(t, "png:244313", string(data))

	stdout, _, err = execute(t, "run", "--out", out, id[1])
	require.NoError(t, err)
	assert.Contains(t, stdout, "COMPLETED")
	assert.Contains(t, stdout, "2 total, 2 resolved, 2 images")
}

func TestBuild_IncompleteDeckFails(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	api := fakeAPI(t)

	stdout, _, err := execute(t, "--api", api, "build", "--out", filepath.Join(dir, "out"), "--policy", "oldest",
		writeDeck(t, dir, "4 Ponder\n1 Art Series\n"))
	require.ErrorIs(t, err, errIncomplete)
	assert.Contains(t, stdout, "+ 4 Ponder")
	assert.Contains(t, stdout, "139512.png")
	assert.Contains(t, stdout, "x 1 Art Series (not_found")
}

func TestBuild_BadPolicy(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, _, err := execute(t, "build", "--policy", "shiniest", writeDeck(t, dir, "4 Ponder\n"))
	assert.Error(t, err)
}

func TestCard(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	api := fakeAPI(t)

	stdout, _, err := execute(t, "--api", api, "card", "Ponder")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ID:   244313")
	assert.Contains(t, stdout, "Set:  Magic 2010 (M10)")

	stdout, _, err = execute(t, "--api", api, "card", "--oldest", "Ponder")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ID:   139512")

	stdout, _, err = execute(t, "--api", api, "card", "--all", "Ponder")
	require.NoError(t, err)
	assert.Less(t, strings.Index(stdout, "244313"), strings.Index(stdout, "139512"))

	_, _, err = execute(t, "--api", api, "card", "Art Series")
	assert.Error(t, err)
}
