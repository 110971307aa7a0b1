package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mineYAML = `
trucks: 4
full_slowdown: 1.2
crushers:
  - servers: 2
    empty_time_mean: 5
    empty_time_stdev: 1
shovels:
  - fill_time_mean: 10
    fill_time_stdev: 2
roads:
  - travel_time_mean: [8, 8]
    travel_time_stdev: [1, 1]
  - travel_time_mean: [4, 4]
    travel_time_stdev: [1, 1]
    one_lane: true
routes:
  - roads: [0, 1]
    directions: [0, 0]
    crusher: 0
    shovel: 0
`

func writeMineFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMineFile_Valid_BuildsLayout(t *testing.T) {
	// GIVEN a mine layout file
	path := writeMineFile(t, mineYAML)

	// WHEN loading and building it
	f, err := LoadMineFile(path)
	require.NoError(t, err)
	layout, err := f.Build()
	require.NoError(t, err)

	// THEN the layout matches the file
	assert.Equal(t, 4, layout.NumTrucks)
	assert.Equal(t, 1.2, layout.FullSlowdown)
	assert.Equal(t, 2, layout.Crushers[0].Servers)
	assert.Equal(t, 10.0, layout.Shovels[0].FillTimeMean)
	assert.True(t, layout.Roads[1].OneLane)
	assert.Equal(t, 1, layout.NumLights())
	assert.Equal(t, [2]float64{8, 8}, layout.Roads[0].TravelTimeMean)
}

func TestLoadMineFile_MissingFile_Errors(t *testing.T) {
	_, err := LoadMineFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMineFile_MalformedYAML_Errors(t *testing.T) {
	path := writeMineFile(t, "trucks: [not a number")
	_, err := LoadMineFile(path)
	assert.Error(t, err)
}

func TestMineFile_Build_AppliesDefaults(t *testing.T) {
	// GIVEN a file omitting slowdown, servers and directions
	path := writeMineFile(t, `
trucks: 2
crushers:
  - empty_time_mean: 5
    empty_time_stdev: 1
shovels:
  - fill_time_mean: 10
    fill_time_stdev: 2
roads:
  - travel_time_mean: [8, 8]
    travel_time_stdev: [1, 1]
routes:
  - roads: [0]
    crusher: 0
    shovel: 0
`)
	f, err := LoadMineFile(path)
	require.NoError(t, err)

	// WHEN building
	layout, err := f.Build()
	require.NoError(t, err)

	// THEN slowdown defaults to 1, servers to 1 and directions to zero
	assert.Equal(t, 1.0, layout.FullSlowdown)
	assert.Equal(t, 1, layout.Crushers[0].Servers)
	assert.Equal(t, []int{0}, layout.Routes[0].Directions)
}

func TestMineFile_Build_RejectsBadRoadShape(t *testing.T) {
	// GIVEN a road with a single travel time entry
	path := writeMineFile(t, `
trucks: 2
crushers:
  - empty_time_mean: 5
    empty_time_stdev: 1
shovels:
  - fill_time_mean: 10
    fill_time_stdev: 2
roads:
  - travel_time_mean: [8]
    travel_time_stdev: [1, 1]
routes:
  - roads: [0]
    crusher: 0
    shovel: 0
`)
	f, err := LoadMineFile(path)
	require.NoError(t, err)

	// WHEN building THEN the shape error is reported
	_, err = f.Build()
	assert.Error(t, err)
}
